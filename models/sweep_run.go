package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SweepRun is the persisted summary of one sweep over unallocated donations
type SweepRun struct {
	ID                 int64           `db:"id"`
	RunID              uuid.UUID       `db:"run_id"`
	StartedAt          time.Time       `db:"started_at"`
	FinishedAt         time.Time       `db:"finished_at"`
	DonationsProcessed int             `db:"donations_processed"`
	DonationsFailed    int             `db:"donations_failed"`
	TotalAllocated     decimal.Decimal `db:"total_allocated"`
	TriggeredBy        *string         `db:"triggered_by"`
	ExecutionSummary   map[string]any  `db:"execution_summary"`
	CreatedAt          time.Time       `db:"created_at"`
}

// DonationOutcome is the per-donation result inside a sweep
type DonationOutcome struct {
	DonationID int64
	Result     *AllocationResult
	Err        error
}

// SweepResult is the outcome of a sweep returned to the caller
type SweepResult struct {
	Run      *SweepRun
	Outcomes []*DonationOutcome
}

// Failed returns the outcomes that ended in an error
func (r *SweepResult) Failed() []*DonationOutcome {
	var failed []*DonationOutcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Allocations flattens every allocation made during the sweep in order
func (r *SweepResult) Allocations() []*Allocation {
	var all []*Allocation
	for _, o := range r.Outcomes {
		if o.Result != nil {
			all = append(all, o.Result.Allocations...)
		}
	}
	return all
}
