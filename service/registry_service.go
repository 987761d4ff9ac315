package service

import (
	"context"
	"fmt"
	"strings"

	"charityfund/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// registryService implements the RegistryService interface
type registryService struct {
	uowFactory UnitOfWorkFactory
}

// NewRegistryService creates a new registry service
func NewRegistryService(uowFactory UnitOfWorkFactory) RegistryService {
	return &registryService{
		uowFactory: uowFactory,
	}
}

// RecordDonation stores a new unallocated donation
func (s *registryService) RecordDonation(ctx context.Context, donorRef string, amount decimal.Decimal) (*models.Donation, error) {
	donorRef = strings.TrimSpace(donorRef)
	if donorRef == "" {
		return nil, fmt.Errorf("donor reference is required: %w", ErrInvalidDonation)
	}
	if amount.Sign() <= 0 || !amount.Equal(models.NormalizeMoney(amount)) {
		return nil, fmt.Errorf("donation amount %s must be positive with at most %d decimals: %w", amount.String(), models.MoneyScale, ErrInvalidDonation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	donation := &models.Donation{
		DonorRef: donorRef,
		Amount:   models.NormalizeMoney(amount),
		Status:   models.DonationStatusUnallocated,
	}
	if err := uow.DonationRepository().Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"donationID": donation.ID,
		"donorRef":   donation.DonorRef,
		"amount":     donation.Amount.StringFixed(models.MoneyScale),
	}).Info("Donation recorded")

	return donation, nil
}

// DeclareNeed stores a new open need
func (s *registryService) DeclareNeed(ctx context.Context, need *models.Need) (*models.Need, error) {
	if strings.TrimSpace(need.Title) == "" {
		return nil, fmt.Errorf("need title is required: %w", ErrInvalidInput)
	}
	if need.AmountNeeded.Sign() <= 0 {
		return nil, fmt.Errorf("need target must be positive, got %s: %w", need.AmountNeeded.String(), ErrInvalidInput)
	}
	// Raised totals only move through ledger entries
	if !need.AmountRaised.IsZero() {
		return nil, fmt.Errorf("need raised amount must start at zero, got %s: %w", need.AmountRaised.String(), ErrInvalidInput)
	}
	if need.Section == "" {
		need.Section = models.NeedSectionOther
	}
	need.AmountNeeded = models.NormalizeMoney(need.AmountNeeded)
	need.AmountRaised = models.ZeroMoney
	need.Fulfilled = false

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.NeedRepository().Create(ctx, need); err != nil {
		return nil, fmt.Errorf("failed to create need: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"needID":  need.ID,
		"title":   need.Title,
		"section": need.Section,
		"target":  need.AmountNeeded.StringFixed(models.MoneyScale),
	}).Info("Need declared")

	return need, nil
}

// RegisterBeneficiary stores a new beneficiary
func (s *registryService) RegisterBeneficiary(ctx context.Context, beneficiary *models.Beneficiary) (*models.Beneficiary, error) {
	if strings.TrimSpace(beneficiary.Name) == "" {
		return nil, fmt.Errorf("beneficiary name is required: %w", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.BeneficiaryRepository().Create(ctx, beneficiary); err != nil {
		return nil, fmt.Errorf("failed to create beneficiary: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return beneficiary, nil
}

// ListNeeds returns every need
func (s *registryService) ListNeeds(ctx context.Context) ([]*models.Need, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	needs, err := uow.NeedRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get needs: %w", err)
	}

	return needs, nil
}
