package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DonationStatus represents how much of a donation has been allocated
type DonationStatus string

const (
	DonationStatusUnallocated        DonationStatus = "unallocated"
	DonationStatusPartiallyAllocated DonationStatus = "partially_allocated"
	DonationStatusFullyAllocated     DonationStatus = "fully_allocated"
)

// Donation represents a recorded contribution awaiting or undergoing allocation
type Donation struct {
	ID        int64           `db:"id"`
	DonorRef  string          `db:"donor_ref"`
	Amount    decimal.Decimal `db:"amount"`
	Status    DonationStatus  `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// DeriveDonationStatus computes the status of a donation from its ledger total
func DeriveDonationStatus(amount, allocated decimal.Decimal) DonationStatus {
	switch {
	case allocated.Sign() <= 0:
		return DonationStatusUnallocated
	case allocated.GreaterThanOrEqual(amount):
		return DonationStatusFullyAllocated
	default:
		return DonationStatusPartiallyAllocated
	}
}

// Headroom returns how much of the donation is still unallocated given the ledger total
func (d *Donation) Headroom(allocated decimal.Decimal) decimal.Decimal {
	remaining := d.Amount.Sub(allocated)
	if remaining.Sign() < 0 {
		return ZeroMoney
	}
	return remaining
}
