package api

import (
	"time"

	"charityfund/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(models.MoneyScale)
}

type donationView struct {
	ID        int64                 `json:"id"`
	DonorRef  string                `json:"donor_ref"`
	Amount    string                `json:"amount"`
	Status    models.DonationStatus `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
}

func newDonationView(d *models.Donation) donationView {
	return donationView{
		ID:        d.ID,
		DonorRef:  d.DonorRef,
		Amount:    money(d.Amount),
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
	}
}

type allocationView struct {
	ID            int64             `json:"id"`
	DonationID    int64             `json:"donation_id"`
	TargetType    models.TargetType `json:"target_type"`
	NeedID        *int64            `json:"need_id,omitempty"`
	BeneficiaryID *int64            `json:"beneficiary_id,omitempty"`
	Amount        string            `json:"amount"`
	AllocatedBy   *string           `json:"allocated_by,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func newAllocationView(a *models.Allocation) allocationView {
	return allocationView{
		ID:            a.ID,
		DonationID:    a.DonationID,
		TargetType:    a.TargetType(),
		NeedID:        a.NeedID,
		BeneficiaryID: a.BeneficiaryID,
		Amount:        money(a.Amount),
		AllocatedBy:   a.AllocatedBy,
		CreatedAt:     a.CreatedAt,
	}
}

func newAllocationViews(allocations []*models.Allocation) []allocationView {
	views := make([]allocationView, 0, len(allocations))
	for _, a := range allocations {
		views = append(views, newAllocationView(a))
	}
	return views
}

type allocationResultView struct {
	Donation       donationView          `json:"donation"`
	PreviousStatus models.DonationStatus `json:"previous_status"`
	Allocations    []allocationView      `json:"allocations"`
	Allocated      string                `json:"allocated"`
	Unallocated    string                `json:"unallocated"`
}

func newAllocationResultView(r *models.AllocationResult) allocationResultView {
	return allocationResultView{
		Donation:       newDonationView(r.Donation),
		PreviousStatus: r.PreviousStatus,
		Allocations:    newAllocationViews(r.Allocations),
		Allocated:      money(r.TotalAllocated()),
		Unallocated:    money(r.Unallocated),
	}
}

type needView struct {
	ID             int64              `json:"id"`
	InstitutionRef string             `json:"institution_ref"`
	Title          string             `json:"title"`
	Section        models.NeedSection `json:"section"`
	Category       string             `json:"category"`
	AmountNeeded   string             `json:"amount_needed"`
	AmountRaised   string             `json:"amount_raised"`
	Remaining      string             `json:"remaining"`
	Fulfilled      bool               `json:"fulfilled"`
}

func newNeedView(n *models.Need) needView {
	return needView{
		ID:             n.ID,
		InstitutionRef: n.InstitutionRef,
		Title:          n.Title,
		Section:        n.Section,
		Category:       n.Category,
		AmountNeeded:   money(n.AmountNeeded),
		AmountRaised:   money(n.AmountRaised),
		Remaining:      money(n.Remaining()),
		Fulfilled:      n.Fulfilled,
	}
}

type outcomeView struct {
	DonationID  int64                 `json:"donation_id"`
	Status      models.DonationStatus `json:"status,omitempty"`
	Allocations []allocationView      `json:"allocations,omitempty"`
	Error       string                `json:"error,omitempty"`
}

type sweepRunView struct {
	RunID              uuid.UUID      `json:"run_id"`
	StartedAt          time.Time      `json:"started_at"`
	FinishedAt         time.Time      `json:"finished_at"`
	DonationsProcessed int            `json:"donations_processed"`
	DonationsFailed    int            `json:"donations_failed"`
	TotalAllocated     string         `json:"total_allocated"`
	TriggeredBy        *string        `json:"triggered_by,omitempty"`
	Summary            map[string]any `json:"summary,omitempty"`
}

func newSweepRunView(run *models.SweepRun) sweepRunView {
	return sweepRunView{
		RunID:              run.RunID,
		StartedAt:          run.StartedAt,
		FinishedAt:         run.FinishedAt,
		DonationsProcessed: run.DonationsProcessed,
		DonationsFailed:    run.DonationsFailed,
		TotalAllocated:     money(run.TotalAllocated),
		TriggeredBy:        run.TriggeredBy,
		Summary:            run.ExecutionSummary,
	}
}

type sweepResultView struct {
	Run      *sweepRunView `json:"run,omitempty"`
	Outcomes []outcomeView `json:"outcomes"`
}

func newSweepResultView(result *models.SweepResult) sweepResultView {
	view := sweepResultView{Outcomes: make([]outcomeView, 0, len(result.Outcomes))}
	if result.Run != nil {
		run := newSweepRunView(result.Run)
		view.Run = &run
	}
	for _, o := range result.Outcomes {
		ov := outcomeView{DonationID: o.DonationID}
		if o.Err != nil {
			ov.Error = o.Err.Error()
		} else if o.Result != nil {
			ov.Status = o.Result.Donation.Status
			ov.Allocations = newAllocationViews(o.Result.Allocations)
		}
		view.Outcomes = append(view.Outcomes, ov)
	}
	return view
}

type targetTotalView struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Total           string `json:"total"`
	AllocationCount int    `json:"allocation_count"`
}

func newTargetTotalViews(totals []*models.TargetTotal) []targetTotalView {
	views := make([]targetTotalView, 0, len(totals))
	for _, t := range totals {
		views = append(views, targetTotalView{ID: t.ID, Name: t.Name, Total: money(t.Total), AllocationCount: t.AllocationCount})
	}
	return views
}

type donorTotalView struct {
	DonorRef        string `json:"donor_ref"`
	Donated         string `json:"donated"`
	Allocated       string `json:"allocated"`
	Available       string `json:"available"`
	AllocationCount int    `json:"allocation_count"`
}

type fundsSummaryView struct {
	TotalDonated        string `json:"total_donated"`
	TotalAllocated      string `json:"total_allocated"`
	AvailableFunds      string `json:"available_funds"`
	DonationCount       int    `json:"donation_count"`
	DonorCount          int    `json:"donor_count"`
	AllocationCount     int    `json:"allocation_count"`
	UnallocatedCount    int    `json:"unallocated_count"`
	PartiallyCount      int    `json:"partially_allocated_count"`
	FullyAllocatedCount int    `json:"fully_allocated_count"`
}
