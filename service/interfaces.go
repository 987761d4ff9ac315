package service

import (
	"context"

	"charityfund/events"
	"charityfund/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NeedRepository defines the interface for the need registry
type NeedRepository interface {
	// Create creates a new need
	Create(ctx context.Context, need *models.Need) error

	// GetByID retrieves a need by its ID
	GetByID(ctx context.Context, id int64) (*models.Need, error)

	// GetAll returns every need ordered by ID
	GetAll(ctx context.Context) ([]*models.Need, error)

	// ListOpen returns a snapshot of unfulfilled needs in the requested order
	ListOpen(ctx context.Context, ordering models.NeedOrdering) ([]*models.Need, error)

	// ApplyRaise adds amount to a need's raised total as a compare-and-swap on the
	// raised value held by need, recomputing fulfilled in the same write
	ApplyRaise(ctx context.Context, need *models.Need, amount decimal.Decimal) error
}

// BeneficiaryRepository defines the interface for the beneficiary pool
type BeneficiaryRepository interface {
	// Create creates a new beneficiary
	Create(ctx context.Context, beneficiary *models.Beneficiary) error

	// GetByID retrieves a beneficiary by its ID
	GetByID(ctx context.Context, id int64) (*models.Beneficiary, error)

	// ListEligible returns the beneficiaries that share general fund money under policy,
	// highest priority first with ties by ID. The first one takes any rounding remainder.
	ListEligible(ctx context.Context, policy models.BeneficiaryPolicy) ([]*models.Beneficiary, error)
}

// DonationRepository defines the interface for the donation source
type DonationRepository interface {
	// Create records a new unallocated donation
	Create(ctx context.Context, donation *models.Donation) error

	// GetByID retrieves a donation by its ID
	GetByID(ctx context.Context, id int64) (*models.Donation, error)

	// GetForUpdate retrieves a donation and locks it for the rest of the transaction
	GetForUpdate(ctx context.Context, id int64) (*models.Donation, error)

	// ListUnallocated returns donations that are not fully allocated, oldest first
	ListUnallocated(ctx context.Context) ([]*models.Donation, error)

	// UpdateStatus stores a status derived from the ledger
	UpdateStatus(ctx context.Context, id int64, status models.DonationStatus) error
}

// AllocationRepository defines the interface for the append-only allocation ledger
type AllocationRepository interface {
	// Record appends an allocation, enforcing amount > 0, a single target and the
	// per-donation conservation invariant
	Record(ctx context.Context, allocation *models.Allocation) error

	// SumByDonation returns the total allocated from a donation
	SumByDonation(ctx context.Context, donationID int64) (decimal.Decimal, error)

	// SumByNeed returns the total allocated to a need
	SumByNeed(ctx context.Context, needID int64) (decimal.Decimal, error)

	// ListByDonation returns a donation's allocations in ledger order
	ListByDonation(ctx context.Context, donationID int64) ([]*models.Allocation, error)
}

// SweepRunRepository defines the interface for sweep run bookkeeping
type SweepRunRepository interface {
	// Create persists a finished sweep run
	Create(ctx context.Context, run *models.SweepRun) error

	// GetByRunID retrieves a sweep run by its run ID
	GetByRunID(ctx context.Context, runID uuid.UUID) (*models.SweepRun, error)

	// GetLatest returns the most recent sweep run
	GetLatest(ctx context.Context) (*models.SweepRun, error)
}

// ReportRepository defines read-only aggregations over the ledger
type ReportRepository interface {
	// TotalsByNeed returns the allocated total per need
	TotalsByNeed(ctx context.Context) ([]*models.TargetTotal, error)

	// TotalsByBeneficiary returns the allocated total per beneficiary
	TotalsByBeneficiary(ctx context.Context) ([]*models.TargetTotal, error)

	// TotalsByDonor returns donated and allocated totals per donor
	TotalsByDonor(ctx context.Context) ([]*models.DonorTotal, error)

	// FundsSummary returns overall donation and ledger totals
	FundsSummary(ctx context.Context) (*models.FundsSummary, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// AllocationService defines the interface for the allocation engine
type AllocationService interface {
	// AllocateDonation distributes the unallocated part of one donation across open
	// needs, largest remaining first, then across eligible beneficiaries
	AllocateDonation(ctx context.Context, donationID int64, actor *string) (*models.AllocationResult, error)

	// AllocateToBeneficiary allocates an explicit amount of a donation to one beneficiary
	AllocateToBeneficiary(ctx context.Context, donationID, beneficiaryID int64, amount decimal.Decimal, actor *string) (*models.Allocation, error)

	// AllocateToNeed allocates an explicit amount of a donation to one need, bounded
	// by both the need's remaining gap and the donation's unallocated amount
	AllocateToNeed(ctx context.Context, donationID, needID int64, amount decimal.Decimal, actor *string) (*models.Allocation, error)

	// SweepAll allocates every donation that is not fully allocated, oldest first,
	// against needs ordered smallest remaining first
	SweepAll(ctx context.Context, actor *string) (*models.SweepResult, error)
}

// ReportService defines the interface for ledger reporting
type ReportService interface {
	// TotalsByNeed returns the allocated total per need
	TotalsByNeed(ctx context.Context) ([]*models.TargetTotal, error)

	// TotalsByBeneficiary returns the allocated total per beneficiary
	TotalsByBeneficiary(ctx context.Context) ([]*models.TargetTotal, error)

	// TotalsByDonor returns donated and allocated totals per donor
	TotalsByDonor(ctx context.Context) ([]*models.DonorTotal, error)

	// FundsSummary returns overall donation and ledger totals
	FundsSummary(ctx context.Context) (*models.FundsSummary, error)

	// DonationAllocations returns a donation with its ledger entries
	DonationAllocations(ctx context.Context, donationID int64) (*models.Donation, []*models.Allocation, error)

	// LatestSweep returns the most recent sweep run, or nil when none ran yet
	LatestSweep(ctx context.Context) (*models.SweepRun, error)
}

// RegistryService defines administrative record keeping that feeds the engine
type RegistryService interface {
	// RecordDonation stores a new unallocated donation
	RecordDonation(ctx context.Context, donorRef string, amount decimal.Decimal) (*models.Donation, error)

	// DeclareNeed stores a new open need
	DeclareNeed(ctx context.Context, need *models.Need) (*models.Need, error)

	// RegisterBeneficiary stores a new beneficiary
	RegisterBeneficiary(ctx context.Context, beneficiary *models.Beneficiary) (*models.Beneficiary, error)

	// ListNeeds returns every need
	ListNeeds(ctx context.Context) ([]*models.Need, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	NeedRepository() NeedRepository
	BeneficiaryRepository() BeneficiaryRepository
	DonationRepository() DonationRepository
	AllocationRepository() AllocationRepository
	SweepRunRepository() SweepRunRepository
	ReportRepository() ReportRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
