package repository

import (
	"context"
	"testing"

	"charityfund/models"
	"charityfund/repository/testutil"
	"charityfund/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationRepository_Record(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	donations := NewDonationRepository(testDB.DB)
	needs := NewNeedRepository(testDB.DB)
	beneficiaries := NewBeneficiaryRepository(testDB.DB)
	ledger := NewAllocationRepository(testDB.DB)

	donation := testutil.NewTestDonation("donor-1", "100")
	require.NoError(t, donations.Create(ctx, donation))
	need := testutil.NewTestNeed("Books", "500")
	require.NoError(t, needs.Create(ctx, need))
	child := testutil.NewTestBeneficiary("Amina")
	require.NoError(t, beneficiaries.Create(ctx, child))

	actor := "admin"

	t.Run("records within headroom", func(t *testing.T) {
		a := &models.Allocation{DonationID: donation.ID, NeedID: &need.ID, Amount: decimal.RequireFromString("60"), AllocatedBy: &actor}
		require.NoError(t, ledger.Record(ctx, a))
		assert.NotZero(t, a.ID)
		assert.False(t, a.CreatedAt.IsZero())

		b := &models.Allocation{DonationID: donation.ID, BeneficiaryID: &child.ID, Amount: decimal.RequireFromString("40")}
		require.NoError(t, ledger.Record(ctx, b))
	})

	t.Run("rejects exceeding the donation", func(t *testing.T) {
		a := &models.Allocation{DonationID: donation.ID, BeneficiaryID: &child.ID, Amount: decimal.RequireFromString("0.01")}
		assert.ErrorIs(t, ledger.Record(ctx, a), service.ErrInvalidAllocation)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		a := &models.Allocation{DonationID: donation.ID, BeneficiaryID: &child.ID, Amount: decimal.Zero}
		assert.ErrorIs(t, ledger.Record(ctx, a), service.ErrInvalidAllocation)
	})

	t.Run("rejects missing or double targets", func(t *testing.T) {
		none := &models.Allocation{DonationID: donation.ID, Amount: decimal.NewFromInt(1)}
		assert.ErrorIs(t, ledger.Record(ctx, none), service.ErrInvalidAllocation)

		both := &models.Allocation{DonationID: donation.ID, NeedID: &need.ID, BeneficiaryID: &child.ID, Amount: decimal.NewFromInt(1)}
		assert.ErrorIs(t, ledger.Record(ctx, both), service.ErrInvalidAllocation)
	})

	t.Run("rejects unknown donation", func(t *testing.T) {
		a := &models.Allocation{DonationID: 424242, NeedID: &need.ID, Amount: decimal.NewFromInt(1)}
		assert.ErrorIs(t, ledger.Record(ctx, a), service.ErrInvalidAllocation)
	})

	t.Run("sums and lists the ledger", func(t *testing.T) {
		total, err := ledger.SumByDonation(ctx, donation.ID)
		require.NoError(t, err)
		assert.Equal(t, "100.00", total.StringFixed(2))

		needTotal, err := ledger.SumByNeed(ctx, need.ID)
		require.NoError(t, err)
		assert.Equal(t, "60.00", needTotal.StringFixed(2))

		entries, err := ledger.ListByDonation(ctx, donation.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, models.TargetTypeNeed, entries[0].TargetType())
		assert.Equal(t, actor, *entries[0].AllocatedBy)
		assert.Equal(t, models.TargetTypeBeneficiary, entries[1].TargetType())
		assert.Nil(t, entries[1].AllocatedBy)
	})
}

func TestDonationRepository_ListUnallocated(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	repo := NewDonationRepository(testDB.DB)

	newest := testutil.InsertDonationAt(t, testDB.DB, "donor-c", "10", 10)
	oldest := testutil.InsertDonationAt(t, testDB.DB, "donor-a", "10", 300)
	settled := testutil.InsertDonationAt(t, testDB.DB, "donor-b", "10", 200)
	require.NoError(t, repo.UpdateStatus(ctx, settled, models.DonationStatusFullyAllocated))

	pending, err := repo.ListUnallocated(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, oldest, pending[0].ID)
	assert.Equal(t, newest, pending[1].ID)

	missing, err := repo.GetForUpdate(ctx, 987654)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
