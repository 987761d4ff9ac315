package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TargetType identifies what an allocation was made to
type TargetType string

const (
	TargetTypeNeed        TargetType = "need"
	TargetTypeBeneficiary TargetType = "beneficiary"
)

// Allocation is an immutable ledger entry moving money from a donation to a target
type Allocation struct {
	ID            int64           `db:"id"`
	DonationID    int64           `db:"donation_id"`
	NeedID        *int64          `db:"need_id"`
	BeneficiaryID *int64          `db:"beneficiary_id"`
	Amount        decimal.Decimal `db:"amount"`
	AllocatedBy   *string         `db:"allocated_by"`
	CreatedAt     time.Time       `db:"created_at"`
}

// TargetType reports whether the allocation went to a need or a beneficiary.
// It returns an empty string when the target is not set exactly once.
func (a *Allocation) TargetType() TargetType {
	switch {
	case a.NeedID != nil && a.BeneficiaryID == nil:
		return TargetTypeNeed
	case a.BeneficiaryID != nil && a.NeedID == nil:
		return TargetTypeBeneficiary
	default:
		return ""
	}
}

// TargetID returns the id of whichever target is set
func (a *Allocation) TargetID() int64 {
	if a.NeedID != nil {
		return *a.NeedID
	}
	if a.BeneficiaryID != nil {
		return *a.BeneficiaryID
	}
	return 0
}

// AllocationResult is the outcome of allocating a single donation
type AllocationResult struct {
	Donation       *Donation
	Allocations    []*Allocation
	PreviousStatus DonationStatus
	Unallocated    decimal.Decimal
}

// TotalAllocated sums the allocations created by this run
func (r *AllocationResult) TotalAllocated() decimal.Decimal {
	total := ZeroMoney
	for _, a := range r.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}
