package service

import (
	"context"
	"errors"
	"testing"

	"charityfund/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegistryService_RecordDonation(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockDonationRepo := new(MockDonationRepository)
	mockUoW.SetRepositories(MockRepositories{Donations: mockDonationRepo})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockDonationRepo.On("Create", ctx, mock.MatchedBy(func(d *models.Donation) bool {
		return d.DonorRef == "donor-7" &&
			d.Amount.StringFixed(2) == "25.50" &&
			d.Status == models.DonationStatusUnallocated
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Donation).ID = 11
	}).Return(nil)

	donation, err := NewRegistryService(mockFactory).RecordDonation(ctx, "  donor-7 ", decimal.RequireFromString("25.5"))

	require.NoError(t, err)
	assert.Equal(t, int64(11), donation.ID)
	mockUoW.AssertExpectations(t)
	mockDonationRepo.AssertExpectations(t)
}

func TestRegistryService_RecordDonation_Invalid(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)
	svc := NewRegistryService(mockFactory)

	tests := []struct {
		name     string
		donorRef string
		amount   string
	}{
		{"zero amount", "donor", "0"},
		{"negative amount", "donor", "-1"},
		{"fraction of a cent", "donor", "1.001"},
		{"missing donor", " ", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordDonation(ctx, tt.donorRef, decimal.RequireFromString(tt.amount))
			assert.ErrorIs(t, err, ErrInvalidDonation)
		})
	}
	mockFactory.AssertNotCalled(t, "Create")
}

func TestRegistryService_DeclareNeed(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockNeedRepo := new(MockNeedRepository)
	mockUoW.SetRepositories(MockRepositories{Needs: mockNeedRepo})

	need := &models.Need{
		Title:        "Exercise books",
		AmountNeeded: decimal.RequireFromString("120"),
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockNeedRepo.On("Create", ctx, need).Return(nil)

	created, err := NewRegistryService(mockFactory).DeclareNeed(ctx, need)

	require.NoError(t, err)
	assert.Equal(t, models.NeedSectionOther, created.Section)
	assert.Equal(t, "0.00", created.AmountRaised.StringFixed(2))
	mockNeedRepo.AssertExpectations(t)
}

func TestRegistryService_DeclareNeed_RejectsRaisedAmount(t *testing.T) {
	store := newMemoryStore()
	svc := NewRegistryService(store)
	ctx := context.Background()

	_, err := svc.DeclareNeed(ctx, &models.Need{
		Title:        "Food",
		AmountNeeded: decimal.RequireFromString("500"),
		AmountRaised: decimal.RequireFromString("500"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, store.allNeeds())

	need, err := svc.DeclareNeed(ctx, &models.Need{
		Title:        "Food",
		AmountNeeded: decimal.RequireFromString("500"),
		Fulfilled:    true,
	})
	require.NoError(t, err)
	assert.False(t, need.Fulfilled)

	uow := store.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()
	ledgerSum, err := uow.AllocationRepository().SumByNeed(ctx, need.ID)
	require.NoError(t, err)
	assert.True(t, need.AmountRaised.Equal(ledgerSum), "raised %s, ledger %s", need.AmountRaised, ledgerSum)
}

func TestRegistryService_DeclareNeed_RepositoryError(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockNeedRepo := new(MockNeedRepository)
	mockUoW.SetRepositories(MockRepositories{Needs: mockNeedRepo})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockNeedRepo.On("Create", ctx, mock.Anything).Return(errors.New("unique violation"))

	_, err := NewRegistryService(mockFactory).DeclareNeed(ctx, &models.Need{
		Title:        "Beds",
		AmountNeeded: decimal.RequireFromString("900"),
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create need")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestRegistryService_DeclareNeed_Invalid(t *testing.T) {
	svc := NewRegistryService(new(MockUnitOfWorkFactory))

	_, err := svc.DeclareNeed(context.Background(), &models.Need{Title: "", AmountNeeded: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.DeclareNeed(context.Background(), &models.Need{Title: "Beds", AmountNeeded: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
