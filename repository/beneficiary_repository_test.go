package repository

import (
	"context"
	"testing"

	"charityfund/models"
	"charityfund/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeneficiaryRepository_ListEligible(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBeneficiaryRepository(testDB.DB)
	ctx := context.Background()

	amina := testutil.NewTestBeneficiary("Amina")
	brian := testutil.NewTestBeneficiary("Brian")
	brian.NeedFulfilled = true
	chidi := testutil.NewTestBeneficiary("Chidi")
	chidi.Priority = 5
	for _, b := range []*models.Beneficiary{amina, brian, chidi} {
		require.NoError(t, repo.Create(ctx, b))
	}

	t.Run("all orders by priority then id", func(t *testing.T) {
		eligible, err := repo.ListEligible(ctx, models.BeneficiaryPolicyAll)
		require.NoError(t, err)
		assert.Equal(t, []int64{chidi.ID, amina.ID, brian.ID}, beneficiaryIDs(eligible))
	})

	t.Run("unfulfilled skips flagged beneficiaries", func(t *testing.T) {
		eligible, err := repo.ListEligible(ctx, models.BeneficiaryPolicyUnfulfilled)
		require.NoError(t, err)
		assert.Equal(t, []int64{chidi.ID, amina.ID}, beneficiaryIDs(eligible))
	})

	t.Run("unknown policy", func(t *testing.T) {
		_, err := repo.ListEligible(ctx, models.BeneficiaryPolicy("lottery"))
		assert.Error(t, err)
	})
}

func beneficiaryIDs(beneficiaries []*models.Beneficiary) []int64 {
	ids := make([]int64, len(beneficiaries))
	for i, b := range beneficiaries {
		ids[i] = b.ID
	}
	return ids
}
