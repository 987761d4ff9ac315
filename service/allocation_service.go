package service

import (
	"context"
	"fmt"
	"time"

	"charityfund/events"
	"charityfund/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// AllocationConfig tunes the allocation engine
type AllocationConfig struct {
	// MaxAttempts bounds how often one donation is tried when it keeps conflicting
	MaxAttempts int
	// RetryInterval is the first backoff delay between attempts
	RetryInterval time.Duration
	// BeneficiaryPolicy selects which beneficiaries share leftover money
	BeneficiaryPolicy models.BeneficiaryPolicy
}

// DefaultAllocationConfig returns the engine defaults
func DefaultAllocationConfig() AllocationConfig {
	return AllocationConfig{
		MaxAttempts:       5,
		RetryInterval:     50 * time.Millisecond,
		BeneficiaryPolicy: models.BeneficiaryPolicyAll,
	}
}

type allocationService struct {
	uowFactory UnitOfWorkFactory
	config     AllocationConfig
	now        func() time.Time
}

// NewAllocationService creates a new allocation engine
func NewAllocationService(uowFactory UnitOfWorkFactory, config AllocationConfig) AllocationService {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultAllocationConfig().RetryInterval
	}
	if config.BeneficiaryPolicy == "" {
		config.BeneficiaryPolicy = models.BeneficiaryPolicyAll
	}

	return &allocationService{
		uowFactory: uowFactory,
		config:     config,
		now:        time.Now,
	}
}

// AllocateDonation allocates one donation, needs with the largest gap first
func (s *allocationService) AllocateDonation(ctx context.Context, donationID int64, actor *string) (*models.AllocationResult, error) {
	return s.allocateWithRetry(ctx, donationID, actor, models.NeedOrderLargestRemaining)
}

func (s *allocationService) allocateWithRetry(ctx context.Context, donationID int64, actor *string, ordering models.NeedOrdering) (*models.AllocationResult, error) {
	fields := log.Fields{"donationID": donationID, "ordering": ordering}

	result, err := retryOnConflict(ctx, s.config.MaxAttempts, s.config.RetryInterval, fields, func() (*models.AllocationResult, error) {
		return s.allocateOnce(ctx, donationID, actor, ordering)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to allocate donation %d: %w", donationID, err)
	}

	return result, nil
}

// allocateOnce runs one attempt at allocating a donation inside its own transaction.
// Nothing is written unless the whole plan is recorded.
func (s *allocationService) allocateOnce(ctx context.Context, donationID int64, actor *string, ordering models.NeedOrdering) (*models.AllocationResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donation, err := uow.DonationRepository().GetForUpdate(ctx, donationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	if donation == nil {
		return nil, fmt.Errorf("donation %d: %w", donationID, ErrNotFound)
	}
	if donation.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("donation %d has amount %s: %w", donation.ID, donation.Amount.StringFixed(models.MoneyScale), ErrInvalidDonation)
	}

	allocated, err := uow.AllocationRepository().SumByDonation(ctx, donation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum allocations for donation %d: %w", donation.ID, err)
	}

	result := &models.AllocationResult{
		Donation:       donation,
		PreviousStatus: donation.Status,
	}

	headroom := donation.Headroom(allocated)
	unplaced := headroom
	if headroom.Sign() > 0 {
		needs, err := uow.NeedRepository().ListOpen(ctx, ordering)
		if err != nil {
			return nil, fmt.Errorf("failed to list open needs: %w", err)
		}

		beneficiaries, err := uow.BeneficiaryRepository().ListEligible(ctx, s.config.BeneficiaryPolicy)
		if err != nil {
			return nil, fmt.Errorf("failed to list beneficiaries: %w", err)
		}

		var plan []plannedAllocation
		plan, unplaced = planDistribution(headroom, needs, beneficiaries)
		for _, step := range plan {
			allocation := &models.Allocation{
				DonationID:  donation.ID,
				Amount:      step.amount,
				AllocatedBy: actor,
			}
			if step.need != nil {
				allocation.NeedID = &step.need.ID
			} else {
				allocation.BeneficiaryID = &step.beneficiary.ID
			}

			if err := RecordAllocation(ctx, uow, allocation, step.need); err != nil {
				return nil, err
			}
			result.Allocations = append(result.Allocations, allocation)
		}
	}

	// Status is always re-derived from the ledger, which also repairs a stale status
	allocated, err = syncDonationStatus(ctx, uow, donation)
	if err != nil {
		return nil, err
	}
	result.Unallocated = donation.Headroom(allocated)
	if !result.Unallocated.Equal(unplaced) {
		return nil, fmt.Errorf("donation %d ledger leaves %s unallocated but the plan left %s: %w",
			donation.ID, result.Unallocated.StringFixed(models.MoneyScale), unplaced.StringFixed(models.MoneyScale), ErrInvalidAllocation)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit allocation: %w", err)
	}

	log.WithFields(log.Fields{
		"donationID":     donation.ID,
		"allocations":    len(result.Allocations),
		"allocated":      result.TotalAllocated().StringFixed(models.MoneyScale),
		"unallocated":    result.Unallocated.StringFixed(models.MoneyScale),
		"previousStatus": result.PreviousStatus,
		"status":         donation.Status,
	}).Info("Donation allocated")

	return result, nil
}

// AllocateToBeneficiary allocates an explicit amount of a donation to one beneficiary
func (s *allocationService) AllocateToBeneficiary(ctx context.Context, donationID, beneficiaryID int64, amount decimal.Decimal, actor *string) (*models.Allocation, error) {
	if err := validateDirectedAmount(amount); err != nil {
		return nil, err
	}

	fields := log.Fields{"donationID": donationID, "beneficiaryID": beneficiaryID}
	allocation, err := retryOnConflict(ctx, s.config.MaxAttempts, s.config.RetryInterval, fields, func() (*models.Allocation, error) {
		return s.allocateToBeneficiaryOnce(ctx, donationID, beneficiaryID, models.NormalizeMoney(amount), actor)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to allocate donation %d to beneficiary %d: %w", donationID, beneficiaryID, err)
	}

	return allocation, nil
}

func (s *allocationService) allocateToBeneficiaryOnce(ctx context.Context, donationID, beneficiaryID int64, amount decimal.Decimal, actor *string) (*models.Allocation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donation, headroom, err := lockDonation(ctx, uow, donationID)
	if err != nil {
		return nil, err
	}

	beneficiary, err := uow.BeneficiaryRepository().GetByID(ctx, beneficiaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get beneficiary: %w", err)
	}
	if beneficiary == nil {
		return nil, fmt.Errorf("beneficiary %d: %w", beneficiaryID, ErrNotFound)
	}

	if amount.GreaterThan(headroom) {
		return nil, fmt.Errorf("donation %d has %s unallocated, cannot allocate %s: %w",
			donation.ID, headroom.StringFixed(models.MoneyScale), amount.StringFixed(models.MoneyScale), ErrOverAllocation)
	}

	allocation := &models.Allocation{
		DonationID:    donation.ID,
		BeneficiaryID: &beneficiary.ID,
		Amount:        amount,
		AllocatedBy:   actor,
	}
	if err := RecordAllocation(ctx, uow, allocation, nil); err != nil {
		return nil, err
	}

	if _, err := syncDonationStatus(ctx, uow, donation); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit allocation: %w", err)
	}

	log.WithFields(log.Fields{
		"donationID":    donation.ID,
		"beneficiaryID": beneficiary.ID,
		"amount":        amount.StringFixed(models.MoneyScale),
		"status":        donation.Status,
	}).Info("Donation allocated to beneficiary")

	return allocation, nil
}

// AllocateToNeed allocates an explicit amount of a donation to one chosen need
func (s *allocationService) AllocateToNeed(ctx context.Context, donationID, needID int64, amount decimal.Decimal, actor *string) (*models.Allocation, error) {
	if err := validateDirectedAmount(amount); err != nil {
		return nil, err
	}

	fields := log.Fields{"donationID": donationID, "needID": needID}
	allocation, err := retryOnConflict(ctx, s.config.MaxAttempts, s.config.RetryInterval, fields, func() (*models.Allocation, error) {
		return s.allocateToNeedOnce(ctx, donationID, needID, models.NormalizeMoney(amount), actor)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to allocate donation %d to need %d: %w", donationID, needID, err)
	}

	return allocation, nil
}

func (s *allocationService) allocateToNeedOnce(ctx context.Context, donationID, needID int64, amount decimal.Decimal, actor *string) (*models.Allocation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donation, headroom, err := lockDonation(ctx, uow, donationID)
	if err != nil {
		return nil, err
	}

	need, err := uow.NeedRepository().GetByID(ctx, needID)
	if err != nil {
		return nil, fmt.Errorf("failed to get need: %w", err)
	}
	if need == nil {
		return nil, fmt.Errorf("need %d: %w", needID, ErrNotFound)
	}

	limit := decimal.Min(need.Remaining(), headroom)
	if amount.GreaterThan(limit) {
		return nil, fmt.Errorf("need %d lacks %s and donation %d has %s unallocated, cannot allocate %s: %w",
			need.ID, need.Remaining().StringFixed(models.MoneyScale), donation.ID,
			headroom.StringFixed(models.MoneyScale), amount.StringFixed(models.MoneyScale), ErrOverAllocation)
	}

	allocation := &models.Allocation{
		DonationID:  donation.ID,
		NeedID:      &need.ID,
		Amount:      amount,
		AllocatedBy: actor,
	}
	if err := RecordAllocation(ctx, uow, allocation, need); err != nil {
		return nil, err
	}

	if _, err := syncDonationStatus(ctx, uow, donation); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit allocation: %w", err)
	}

	log.WithFields(log.Fields{
		"donationID": donation.ID,
		"needID":     need.ID,
		"amount":     amount.StringFixed(models.MoneyScale),
		"fulfilled":  need.Fulfilled,
		"status":     donation.Status,
	}).Info("Donation allocated to need")

	return allocation, nil
}

func validateDirectedAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("allocation amount must be positive: %w", ErrInvalidAllocation)
	}
	if !amount.Equal(models.NormalizeMoney(amount)) {
		return fmt.Errorf("allocation amount %s has more than %d decimals: %w", amount.String(), models.MoneyScale, ErrInvalidAllocation)
	}
	return nil
}

// lockDonation reads and row-locks a donation and returns its ledger headroom
func lockDonation(ctx context.Context, uow UnitOfWork, donationID int64) (*models.Donation, decimal.Decimal, error) {
	donation, err := uow.DonationRepository().GetForUpdate(ctx, donationID)
	if err != nil {
		return nil, decimal.Decimal{}, fmt.Errorf("failed to get donation: %w", err)
	}
	if donation == nil {
		return nil, decimal.Decimal{}, fmt.Errorf("donation %d: %w", donationID, ErrNotFound)
	}
	if donation.Amount.Sign() <= 0 {
		return nil, decimal.Decimal{}, fmt.Errorf("donation %d has amount %s: %w", donation.ID, donation.Amount.StringFixed(models.MoneyScale), ErrInvalidDonation)
	}

	allocated, err := uow.AllocationRepository().SumByDonation(ctx, donation.ID)
	if err != nil {
		return nil, decimal.Decimal{}, fmt.Errorf("failed to sum allocations for donation %d: %w", donation.ID, err)
	}

	return donation, donation.Headroom(allocated), nil
}

// SweepAll allocates every donation that is not fully allocated, oldest first.
// Each donation runs in its own transaction; a failing donation is reported in
// the result and does not stop the sweep. The returned result is non-nil whenever
// the donation list could be read, even if persisting the run record failed.
func (s *allocationService) SweepAll(ctx context.Context, actor *string) (*models.SweepResult, error) {
	startedAt := s.now()
	runID := uuid.New()

	donations, err := s.listUnallocated(ctx)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"runID":     runID,
		"donations": len(donations),
	}).Info("Starting allocation sweep")

	result := &models.SweepResult{}
	total := models.ZeroMoney
	failed := 0
	summary := make([]map[string]any, 0, len(donations))

	for _, donation := range donations {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("sweep %s interrupted: %w", runID, err)
		}

		outcome := &models.DonationOutcome{DonationID: donation.ID}
		outcome.Result, outcome.Err = s.allocateWithRetry(ctx, donation.ID, actor, models.NeedOrderSmallestRemaining)
		result.Outcomes = append(result.Outcomes, outcome)

		entry := map[string]any{"donation_id": donation.ID}
		if outcome.Err != nil {
			failed++
			entry["error"] = outcome.Err.Error()
			log.WithFields(log.Fields{
				"runID":      runID,
				"donationID": donation.ID,
				"error":      outcome.Err,
			}).Error("Failed to allocate donation during sweep")
		} else {
			allocated := outcome.Result.TotalAllocated()
			total = total.Add(allocated)
			entry["allocated"] = allocated.StringFixed(models.MoneyScale)
			entry["allocations"] = len(outcome.Result.Allocations)
			entry["status"] = string(outcome.Result.Donation.Status)
		}
		summary = append(summary, entry)
	}

	result.Run = &models.SweepRun{
		RunID:              runID,
		StartedAt:          startedAt,
		FinishedAt:         s.now(),
		DonationsProcessed: len(donations),
		DonationsFailed:    failed,
		TotalAllocated:     total,
		TriggeredBy:        actor,
		ExecutionSummary: map[string]any{
			"donations":          summary,
			"need_ordering":      string(models.NeedOrderSmallestRemaining),
			"beneficiary_policy": string(s.config.BeneficiaryPolicy),
		},
	}

	if err := s.persistRun(ctx, result.Run); err != nil {
		return result, err
	}

	log.WithFields(log.Fields{
		"runID":     runID,
		"processed": len(donations),
		"failed":    failed,
		"allocated": total.StringFixed(models.MoneyScale),
		"duration":  result.Run.FinishedAt.Sub(startedAt),
	}).Info("Allocation sweep completed")

	return result, nil
}

func (s *allocationService) listUnallocated(ctx context.Context) ([]*models.Donation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donations, err := uow.DonationRepository().ListUnallocated(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unallocated donations: %w", err)
	}

	return donations, nil
}

func (s *allocationService) persistRun(ctx context.Context, run *models.SweepRun) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.SweepRunRepository().Create(ctx, run); err != nil {
		return fmt.Errorf("failed to record sweep run: %w", err)
	}

	uow.EventBus().Publish(events.SweepCompletedEvent{
		RunID:              run.RunID,
		DonationsProcessed: run.DonationsProcessed,
		DonationsFailed:    run.DonationsFailed,
		TotalAllocated:     run.TotalAllocated,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit sweep run: %w", err)
	}

	return nil
}
