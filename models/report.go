package models

import (
	"github.com/shopspring/decimal"
)

// TargetTotal is the ledger total allocated to one need or beneficiary
type TargetTotal struct {
	ID              int64           `db:"id"`
	Name            string          `db:"name"`
	Total           decimal.Decimal `db:"total"`
	AllocationCount int             `db:"allocation_count"`
}

// DonorTotal is the ledger total allocated from one donor's donations
type DonorTotal struct {
	DonorRef        string          `db:"donor_ref"`
	Donated         decimal.Decimal `db:"donated"`
	Allocated       decimal.Decimal `db:"allocated"`
	AllocationCount int             `db:"allocation_count"`
}

// Available returns what the donor has given that is not allocated yet
func (d *DonorTotal) Available() decimal.Decimal {
	return d.Donated.Sub(d.Allocated)
}

// FundsSummary is the dashboard view over all donations and the ledger
type FundsSummary struct {
	TotalDonated        decimal.Decimal `db:"total_donated"`
	TotalAllocated      decimal.Decimal `db:"total_allocated"`
	DonationCount       int             `db:"donation_count"`
	DonorCount          int             `db:"donor_count"`
	AllocationCount     int             `db:"allocation_count"`
	UnallocatedCount    int             `db:"unallocated_count"`
	PartiallyCount      int             `db:"partially_count"`
	FullyAllocatedCount int             `db:"fully_allocated_count"`
}

// AvailableFunds returns donated money not yet allocated
func (s *FundsSummary) AvailableFunds() decimal.Decimal {
	return s.TotalDonated.Sub(s.TotalAllocated)
}
