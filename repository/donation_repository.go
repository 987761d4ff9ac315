package repository

import (
	"context"
	"fmt"

	"charityfund/database"
	"charityfund/models"
	"github.com/jackc/pgx/v5"
)

// DonationRepository implements the DonationRepository interface
type DonationRepository struct {
	q queryable
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *database.DB) *DonationRepository {
	return &DonationRepository{q: db.Pool}
}

// newDonationRepositoryWithTx creates a new donation repository with a transaction
func newDonationRepositoryWithTx(tx queryable) *DonationRepository {
	return &DonationRepository{q: tx}
}

const donationColumns = `id, donor_ref, amount, status, created_at, updated_at`

func scanDonation(row pgx.Row) (*models.Donation, error) {
	var d models.Donation
	if err := row.Scan(&d.ID, &d.DonorRef, &d.Amount, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create records a new unallocated donation
func (r *DonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	query := `
		INSERT INTO donations (donor_ref, amount, status)
		VALUES ($1, $2::numeric, $3)
		RETURNING ` + donationColumns

	created, err := scanDonation(r.q.QueryRow(ctx, query,
		donation.DonorRef,
		moneyArg(donation.Amount),
		models.DonationStatusUnallocated,
	))
	if err != nil {
		return fmt.Errorf("failed to create donation for %q: %w", donation.DonorRef, translateError(err))
	}

	*donation = *created
	return nil
}

// GetByID retrieves a donation by its ID
func (r *DonationRepository) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	return r.get(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1`, id)
}

// GetForUpdate retrieves a donation and locks its row until the transaction ends,
// so concurrent allocation runs for the same donation are serialized
func (r *DonationRepository) GetForUpdate(ctx context.Context, id int64) (*models.Donation, error) {
	return r.get(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1 FOR UPDATE`, id)
}

func (r *DonationRepository) get(ctx context.Context, query string, id int64) (*models.Donation, error) {
	donation, err := scanDonation(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donation %d: %w", id, translateError(err))
	}
	return donation, nil
}

// ListUnallocated returns donations that are not fully allocated, oldest first
func (r *DonationRepository) ListUnallocated(ctx context.Context) ([]*models.Donation, error) {
	query := `
		SELECT ` + donationColumns + `
		FROM donations
		WHERE status <> $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, models.DonationStatusFullyAllocated)
	if err != nil {
		return nil, fmt.Errorf("failed to list unallocated donations: %w", translateError(err))
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		donation, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, donation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate donations: %w", translateError(err))
	}

	return donations, nil
}

// UpdateStatus stores a status derived from the ledger
func (r *DonationRepository) UpdateStatus(ctx context.Context, id int64, status models.DonationStatus) error {
	query := `
		UPDATE donations
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of donation %d: %w", id, translateError(err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("donation %d not found", id)
	}

	return nil
}
