package service

import (
	"context"

	"charityfund/events"
	"charityfund/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockNeedRepository is a mock implementation of NeedRepository
type MockNeedRepository struct {
	mock.Mock
}

func (m *MockNeedRepository) Create(ctx context.Context, need *models.Need) error {
	args := m.Called(ctx, need)
	return args.Error(0)
}

func (m *MockNeedRepository) GetByID(ctx context.Context, id int64) (*models.Need, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Need), args.Error(1)
}

func (m *MockNeedRepository) GetAll(ctx context.Context) ([]*models.Need, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Need), args.Error(1)
}

func (m *MockNeedRepository) ListOpen(ctx context.Context, ordering models.NeedOrdering) ([]*models.Need, error) {
	args := m.Called(ctx, ordering)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Need), args.Error(1)
}

func (m *MockNeedRepository) ApplyRaise(ctx context.Context, need *models.Need, amount decimal.Decimal) error {
	args := m.Called(ctx, need, amount)
	return args.Error(0)
}

// MockBeneficiaryRepository is a mock implementation of BeneficiaryRepository
type MockBeneficiaryRepository struct {
	mock.Mock
}

func (m *MockBeneficiaryRepository) Create(ctx context.Context, beneficiary *models.Beneficiary) error {
	args := m.Called(ctx, beneficiary)
	return args.Error(0)
}

func (m *MockBeneficiaryRepository) GetByID(ctx context.Context, id int64) (*models.Beneficiary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Beneficiary), args.Error(1)
}

func (m *MockBeneficiaryRepository) ListEligible(ctx context.Context, policy models.BeneficiaryPolicy) ([]*models.Beneficiary, error) {
	args := m.Called(ctx, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Beneficiary), args.Error(1)
}

// MockDonationRepository is a mock implementation of DonationRepository
type MockDonationRepository struct {
	mock.Mock
}

func (m *MockDonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

func (m *MockDonationRepository) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) GetForUpdate(ctx context.Context, id int64) (*models.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) ListUnallocated(ctx context.Context) ([]*models.Donation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) UpdateStatus(ctx context.Context, id int64, status models.DonationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockAllocationRepository is a mock implementation of AllocationRepository
type MockAllocationRepository struct {
	mock.Mock
}

func (m *MockAllocationRepository) Record(ctx context.Context, allocation *models.Allocation) error {
	args := m.Called(ctx, allocation)
	return args.Error(0)
}

func (m *MockAllocationRepository) SumByDonation(ctx context.Context, donationID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, donationID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAllocationRepository) SumByNeed(ctx context.Context, needID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, needID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAllocationRepository) ListByDonation(ctx context.Context, donationID int64) ([]*models.Allocation, error) {
	args := m.Called(ctx, donationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Allocation), args.Error(1)
}

// MockSweepRunRepository is a mock implementation of SweepRunRepository
type MockSweepRunRepository struct {
	mock.Mock
}

func (m *MockSweepRunRepository) Create(ctx context.Context, run *models.SweepRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockSweepRunRepository) GetByRunID(ctx context.Context, runID uuid.UUID) (*models.SweepRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SweepRun), args.Error(1)
}

func (m *MockSweepRunRepository) GetLatest(ctx context.Context) (*models.SweepRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SweepRun), args.Error(1)
}

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) TotalsByNeed(ctx context.Context) ([]*models.TargetTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TargetTotal), args.Error(1)
}

func (m *MockReportRepository) TotalsByBeneficiary(ctx context.Context) ([]*models.TargetTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TargetTotal), args.Error(1)
}

func (m *MockReportRepository) TotalsByDonor(ctx context.Context) ([]*models.DonorTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DonorTotal), args.Error(1)
}

func (m *MockReportRepository) FundsSummary(ctx context.Context) (*models.FundsSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FundsSummary), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Transaction control goes
// through testify; repository getters return whatever SetRepositories installed.
type MockUnitOfWork struct {
	mock.Mock
	needRepo        NeedRepository
	beneficiaryRepo BeneficiaryRepository
	donationRepo    DonationRepository
	allocationRepo  AllocationRepository
	sweepRunRepo    SweepRunRepository
	reportRepo      ReportRepository
	eventBus        EventPublisher
}

// MockRepositories groups the repositories a MockUnitOfWork hands out
type MockRepositories struct {
	Needs         NeedRepository
	Beneficiaries BeneficiaryRepository
	Donations     DonationRepository
	Allocations   AllocationRepository
	SweepRuns     SweepRunRepository
	Reports       ReportRepository
	Events        EventPublisher
}

// SetRepositories installs the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(repos MockRepositories) {
	m.needRepo = repos.Needs
	m.beneficiaryRepo = repos.Beneficiaries
	m.donationRepo = repos.Donations
	m.allocationRepo = repos.Allocations
	m.sweepRunRepo = repos.SweepRuns
	m.reportRepo = repos.Reports
	m.eventBus = repos.Events
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) NeedRepository() NeedRepository               { return m.needRepo }
func (m *MockUnitOfWork) BeneficiaryRepository() BeneficiaryRepository { return m.beneficiaryRepo }
func (m *MockUnitOfWork) DonationRepository() DonationRepository       { return m.donationRepo }
func (m *MockUnitOfWork) AllocationRepository() AllocationRepository   { return m.allocationRepo }
func (m *MockUnitOfWork) SweepRunRepository() SweepRunRepository       { return m.sweepRunRepo }
func (m *MockUnitOfWork) ReportRepository() ReportRepository           { return m.reportRepo }
func (m *MockUnitOfWork) EventBus() EventPublisher                     { return m.eventBus }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockAllocationService is a mock implementation of AllocationService
type MockAllocationService struct {
	mock.Mock
}

func (m *MockAllocationService) AllocateDonation(ctx context.Context, donationID int64, actor *string) (*models.AllocationResult, error) {
	args := m.Called(ctx, donationID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AllocationResult), args.Error(1)
}

func (m *MockAllocationService) AllocateToBeneficiary(ctx context.Context, donationID, beneficiaryID int64, amount decimal.Decimal, actor *string) (*models.Allocation, error) {
	args := m.Called(ctx, donationID, beneficiaryID, amount, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Allocation), args.Error(1)
}

func (m *MockAllocationService) AllocateToNeed(ctx context.Context, donationID, needID int64, amount decimal.Decimal, actor *string) (*models.Allocation, error) {
	args := m.Called(ctx, donationID, needID, amount, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Allocation), args.Error(1)
}

func (m *MockAllocationService) SweepAll(ctx context.Context, actor *string) (*models.SweepResult, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SweepResult), args.Error(1)
}

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) TotalsByNeed(ctx context.Context) ([]*models.TargetTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TargetTotal), args.Error(1)
}

func (m *MockReportService) TotalsByBeneficiary(ctx context.Context) ([]*models.TargetTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TargetTotal), args.Error(1)
}

func (m *MockReportService) TotalsByDonor(ctx context.Context) ([]*models.DonorTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DonorTotal), args.Error(1)
}

func (m *MockReportService) FundsSummary(ctx context.Context) (*models.FundsSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FundsSummary), args.Error(1)
}

func (m *MockReportService) DonationAllocations(ctx context.Context, donationID int64) (*models.Donation, []*models.Allocation, error) {
	args := m.Called(ctx, donationID)
	var donation *models.Donation
	var allocations []*models.Allocation
	if args.Get(0) != nil {
		donation = args.Get(0).(*models.Donation)
	}
	if args.Get(1) != nil {
		allocations = args.Get(1).([]*models.Allocation)
	}
	return donation, allocations, args.Error(2)
}

func (m *MockReportService) LatestSweep(ctx context.Context) (*models.SweepRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SweepRun), args.Error(1)
}

// MockRegistryService is a mock implementation of RegistryService
type MockRegistryService struct {
	mock.Mock
}

func (m *MockRegistryService) RecordDonation(ctx context.Context, donorRef string, amount decimal.Decimal) (*models.Donation, error) {
	args := m.Called(ctx, donorRef, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockRegistryService) DeclareNeed(ctx context.Context, need *models.Need) (*models.Need, error) {
	args := m.Called(ctx, need)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Need), args.Error(1)
}

func (m *MockRegistryService) RegisterBeneficiary(ctx context.Context, beneficiary *models.Beneficiary) (*models.Beneficiary, error) {
	args := m.Called(ctx, beneficiary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Beneficiary), args.Error(1)
}

func (m *MockRegistryService) ListNeeds(ctx context.Context) ([]*models.Need, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Need), args.Error(1)
}
