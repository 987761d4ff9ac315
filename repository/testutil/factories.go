package testutil

import (
	"context"
	"testing"

	"charityfund/database"
	"charityfund/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// NewTestNeed builds an open need with the given target
func NewTestNeed(title string, needed string) *models.Need {
	return &models.Need{
		InstitutionRef: "home-1",
		Title:          title,
		Section:        models.NeedSectionEducation,
		Category:       "school",
		AmountNeeded:   decimal.RequireFromString(needed),
		AmountRaised:   models.ZeroMoney,
	}
}

// NewTestDonation builds an unallocated donation
func NewTestDonation(donorRef string, amount string) *models.Donation {
	return &models.Donation{
		DonorRef: donorRef,
		Amount:   decimal.RequireFromString(amount),
		Status:   models.DonationStatusUnallocated,
	}
}

// NewTestBeneficiary builds a beneficiary with default priority
func NewTestBeneficiary(name string) *models.Beneficiary {
	return &models.Beneficiary{
		Name:     name,
		Priority: 1,
	}
}

// InsertDonationAt inserts a donation with an explicit creation time offset in
// seconds from now, for tests that depend on oldest-first ordering
func InsertDonationAt(t *testing.T, db *database.DB, donorRef, amount string, ageSeconds int) int64 {
	t.Helper()

	var id int64
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		return tx.QueryRow(context.Background(), `
			INSERT INTO donations (donor_ref, amount, status, created_at, updated_at)
			VALUES ($1, $2::numeric, 'unallocated', NOW() - $3::int * INTERVAL '1 second', NOW())
			RETURNING id
		`, donorRef, amount, ageSeconds).Scan(&id)
	})
	require.NoError(t, err)
	return id
}
