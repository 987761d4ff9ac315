package api

import (
	"net/http"

	"charityfund/models"

	"github.com/shopspring/decimal"
)

type recordDonationRequest struct {
	DonorRef string          `json:"donor_ref"`
	Amount   decimal.Decimal `json:"amount"`
}

// RecordDonation stores a new donation
func (a *App) RecordDonation(w http.ResponseWriter, r *http.Request) {
	var req recordDonationRequest
	if !a.decode(w, r, &req) {
		return
	}

	donation, err := a.Registry.RecordDonation(r.Context(), req.DonorRef, req.Amount)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, newDonationView(donation))
}

// GetDonation returns a donation with its ledger entries
func (a *App) GetDonation(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	donation, allocations, err := a.Reports.DonationAllocations(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"donation":    newDonationView(donation),
		"allocations": newAllocationViews(allocations),
	})
}

// AllocateDonation runs the allocation engine for one donation
func (a *App) AllocateDonation(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	result, err := a.Allocations.AllocateDonation(r.Context(), id, actor(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newAllocationResultView(result))
}

type directedAllocationRequest struct {
	BeneficiaryID int64           `json:"beneficiary_id"`
	NeedID        int64           `json:"need_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// AllocateDirected allocates an explicit amount of a donation to one chosen need or beneficiary
func (a *App) AllocateDirected(w http.ResponseWriter, r *http.Request) {
	id, ok := a.pathID(w, r)
	if !ok {
		return
	}

	var req directedAllocationRequest
	if !a.decode(w, r, &req) {
		return
	}

	var (
		allocation *models.Allocation
		err        error
	)
	switch {
	case req.NeedID > 0 && req.BeneficiaryID > 0:
		a.error(w, http.StatusBadRequest, "bad_request", "set either need_id or beneficiary_id, not both")
		return
	case req.NeedID > 0:
		allocation, err = a.Allocations.AllocateToNeed(r.Context(), id, req.NeedID, req.Amount, actor(r))
	case req.BeneficiaryID > 0:
		allocation, err = a.Allocations.AllocateToBeneficiary(r.Context(), id, req.BeneficiaryID, req.Amount, actor(r))
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "need_id or beneficiary_id is required")
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, newAllocationView(allocation))
}

type declareNeedRequest struct {
	InstitutionRef string             `json:"institution_ref"`
	Title          string             `json:"title"`
	Section        models.NeedSection `json:"section"`
	Category       string             `json:"category"`
	AmountNeeded   decimal.Decimal    `json:"amount_needed"`
}

// DeclareNeed stores a new need
func (a *App) DeclareNeed(w http.ResponseWriter, r *http.Request) {
	var req declareNeedRequest
	if !a.decode(w, r, &req) {
		return
	}

	need, err := a.Registry.DeclareNeed(r.Context(), &models.Need{
		InstitutionRef: req.InstitutionRef,
		Title:          req.Title,
		Section:        req.Section,
		Category:       req.Category,
		AmountNeeded:   req.AmountNeeded,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, newNeedView(need))
}

// ListNeeds returns every need
func (a *App) ListNeeds(w http.ResponseWriter, r *http.Request) {
	needs, err := a.Registry.ListNeeds(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}

	items := make([]needView, 0, len(needs))
	for _, n := range needs {
		items = append(items, newNeedView(n))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

type registerBeneficiaryRequest struct {
	Name          string `json:"name"`
	Priority      int    `json:"priority"`
	NeedFulfilled bool   `json:"need_fulfilled"`
}

// RegisterBeneficiary stores a new beneficiary
func (a *App) RegisterBeneficiary(w http.ResponseWriter, r *http.Request) {
	var req registerBeneficiaryRequest
	if !a.decode(w, r, &req) {
		return
	}

	beneficiary, err := a.Registry.RegisterBeneficiary(r.Context(), &models.Beneficiary{
		Name:          req.Name,
		Priority:      req.Priority,
		NeedFulfilled: req.NeedFulfilled,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"id":             beneficiary.ID,
		"name":           beneficiary.Name,
		"priority":       beneficiary.Priority,
		"need_fulfilled": beneficiary.NeedFulfilled,
	})
}

// Sweep allocates every donation that is not fully allocated
func (a *App) Sweep(w http.ResponseWriter, r *http.Request) {
	result, err := a.Allocations.SweepAll(r.Context(), actor(r))
	if err != nil && result == nil {
		a.fail(w, r, err)
		return
	}

	view := newSweepResultView(result)
	if err != nil {
		// Donations were allocated but the run record was not stored
		a.json(w, http.StatusInternalServerError, map[string]any{
			"error":    "internal",
			"message":  "sweep finished but its run record could not be saved",
			"outcomes": view.Outcomes,
		})
		return
	}
	a.json(w, http.StatusOK, view)
}

// LatestSweep returns the most recent sweep run
func (a *App) LatestSweep(w http.ResponseWriter, r *http.Request) {
	run, err := a.Reports.LatestSweep(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if run == nil {
		a.error(w, http.StatusNotFound, "not_found", "no sweep has run yet")
		return
	}
	a.json(w, http.StatusOK, newSweepRunView(run))
}

// TotalsByNeed reports the allocated total per need
func (a *App) TotalsByNeed(w http.ResponseWriter, r *http.Request) {
	totals, err := a.Reports.TotalsByNeed(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": newTargetTotalViews(totals)})
}

// TotalsByBeneficiary reports the allocated total per beneficiary
func (a *App) TotalsByBeneficiary(w http.ResponseWriter, r *http.Request) {
	totals, err := a.Reports.TotalsByBeneficiary(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": newTargetTotalViews(totals)})
}

// TotalsByDonor reports donated and allocated totals per donor
func (a *App) TotalsByDonor(w http.ResponseWriter, r *http.Request) {
	totals, err := a.Reports.TotalsByDonor(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}

	items := make([]donorTotalView, 0, len(totals))
	for _, t := range totals {
		items = append(items, donorTotalView{
			DonorRef:        t.DonorRef,
			Donated:         money(t.Donated),
			Allocated:       money(t.Allocated),
			Available:       money(t.Available()),
			AllocationCount: t.AllocationCount,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// FundsSummary reports overall donation and ledger totals
func (a *App) FundsSummary(w http.ResponseWriter, r *http.Request) {
	s, err := a.Reports.FundsSummary(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, fundsSummaryView{
		TotalDonated:        money(s.TotalDonated),
		TotalAllocated:      money(s.TotalAllocated),
		AvailableFunds:      money(s.AvailableFunds()),
		DonationCount:       s.DonationCount,
		DonorCount:          s.DonorCount,
		AllocationCount:     s.AllocationCount,
		UnallocatedCount:    s.UnallocatedCount,
		PartiallyCount:      s.PartiallyCount,
		FullyAllocatedCount: s.FullyAllocatedCount,
	})
}
