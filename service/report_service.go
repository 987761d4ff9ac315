package service

import (
	"context"
	"fmt"

	"charityfund/models"
)

// reportService implements the ReportService interface
type reportService struct {
	uowFactory UnitOfWorkFactory
}

// NewReportService creates a new report service
func NewReportService(uowFactory UnitOfWorkFactory) ReportService {
	return &reportService{
		uowFactory: uowFactory,
	}
}

// readOnly runs fn in a unit of work that is always rolled back
func (s *reportService) readOnly(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return fn(uow)
}

// TotalsByNeed returns the allocated total per need
func (s *reportService) TotalsByNeed(ctx context.Context) ([]*models.TargetTotal, error) {
	var totals []*models.TargetTotal
	err := s.readOnly(ctx, func(uow UnitOfWork) error {
		var err error
		totals, err = uow.ReportRepository().TotalsByNeed(ctx)
		if err != nil {
			return fmt.Errorf("failed to get totals by need: %w", err)
		}
		return nil
	})
	return totals, err
}

// TotalsByBeneficiary returns the allocated total per beneficiary
func (s *reportService) TotalsByBeneficiary(ctx context.Context) ([]*models.TargetTotal, error) {
	var totals []*models.TargetTotal
	err := s.readOnly(ctx, func(uow UnitOfWork) error {
		var err error
		totals, err = uow.ReportRepository().TotalsByBeneficiary(ctx)
		if err != nil {
			return fmt.Errorf("failed to get totals by beneficiary: %w", err)
		}
		return nil
	})
	return totals, err
}

// TotalsByDonor returns donated and allocated totals per donor
func (s *reportService) TotalsByDonor(ctx context.Context) ([]*models.DonorTotal, error) {
	var totals []*models.DonorTotal
	err := s.readOnly(ctx, func(uow UnitOfWork) error {
		var err error
		totals, err = uow.ReportRepository().TotalsByDonor(ctx)
		if err != nil {
			return fmt.Errorf("failed to get totals by donor: %w", err)
		}
		return nil
	})
	return totals, err
}

// FundsSummary returns overall donation and ledger totals
func (s *reportService) FundsSummary(ctx context.Context) (*models.FundsSummary, error) {
	var summary *models.FundsSummary
	err := s.readOnly(ctx, func(uow UnitOfWork) error {
		var err error
		summary, err = uow.ReportRepository().FundsSummary(ctx)
		if err != nil {
			return fmt.Errorf("failed to get funds summary: %w", err)
		}
		return nil
	})
	return summary, err
}

// DonationAllocations returns a donation with its ledger entries
func (s *reportService) DonationAllocations(ctx context.Context, donationID int64) (*models.Donation, []*models.Allocation, error) {
	var donation *models.Donation
	var allocations []*models.Allocation

	err := s.readOnly(ctx, func(uow UnitOfWork) error {
		var err error
		donation, err = uow.DonationRepository().GetByID(ctx, donationID)
		if err != nil {
			return fmt.Errorf("failed to get donation: %w", err)
		}
		if donation == nil {
			return fmt.Errorf("donation %d: %w", donationID, ErrNotFound)
		}

		allocations, err = uow.AllocationRepository().ListByDonation(ctx, donationID)
		if err != nil {
			return fmt.Errorf("failed to list allocations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return donation, allocations, nil
}

// LatestSweep returns the most recent sweep run, or nil when none ran yet
func (s *reportService) LatestSweep(ctx context.Context) (*models.SweepRun, error) {
	var run *models.SweepRun
	err := s.readOnly(ctx, func(uow UnitOfWork) error {
		var err error
		run, err = uow.SweepRunRepository().GetLatest(ctx)
		if err != nil {
			return fmt.Errorf("failed to get latest sweep run: %w", err)
		}
		return nil
	})
	return run, err
}
