package repository

import (
	"context"
	"fmt"

	"charityfund/database"
	"charityfund/models"
	"charityfund/service"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AllocationRepository implements the append-only allocation ledger
type AllocationRepository struct {
	q queryable
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(db *database.DB) *AllocationRepository {
	return &AllocationRepository{q: db.Pool}
}

// newAllocationRepositoryWithTx creates a new allocation repository with a transaction
func newAllocationRepositoryWithTx(tx queryable) *AllocationRepository {
	return &AllocationRepository{q: tx}
}

// Record appends an allocation. The donation row is locked first and the insert only
// happens when the donation still has enough headroom, so the ledger itself enforces
// conservation whatever the caller did. Inside a transaction the lock is held until
// commit; each statement sees allocations committed before the lock was granted.
func (r *AllocationRepository) Record(ctx context.Context, allocation *models.Allocation) error {
	if allocation.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %s", service.ErrInvalidAllocation, allocation.Amount)
	}
	if !allocation.Amount.Equal(models.NormalizeMoney(allocation.Amount)) {
		return fmt.Errorf("%w: amount %s has more than %d fractional digits",
			service.ErrInvalidAllocation, allocation.Amount, models.MoneyScale)
	}
	if allocation.TargetType() == "" {
		return fmt.Errorf("%w: exactly one of need or beneficiary must be set", service.ErrInvalidAllocation)
	}

	var locked int64
	err := r.q.QueryRow(ctx, `SELECT id FROM donations WHERE id = $1 FOR UPDATE`, allocation.DonationID).Scan(&locked)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("%w: donation %d does not exist", service.ErrInvalidAllocation, allocation.DonationID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock donation %d: %w", allocation.DonationID, translateError(err))
	}

	query := `
		INSERT INTO allocations (donation_id, need_id, beneficiary_id, amount, allocated_by)
		SELECT d.id, $2::bigint, $3::bigint, $4::numeric, $5::text
		FROM donations d
		WHERE d.id = $1
		  AND d.amount - COALESCE(
			  (SELECT SUM(a.amount) FROM allocations a WHERE a.donation_id = d.id),
			  0
		  ) >= $4::numeric
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		allocation.DonationID,
		allocation.NeedID,
		allocation.BeneficiaryID,
		moneyArg(allocation.Amount),
		allocation.AllocatedBy,
	).Scan(&allocation.ID, &allocation.CreatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("%w: allocating %s would exceed the amount of donation %d",
			service.ErrInvalidAllocation, allocation.Amount, allocation.DonationID)
	}
	if err != nil {
		return fmt.Errorf("failed to record allocation for donation %d: %w", allocation.DonationID, translateError(err))
	}

	return nil
}

// SumByDonation returns the total allocated from a donation
func (r *AllocationRepository) SumByDonation(ctx context.Context, donationID int64) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(amount), 0) FROM allocations WHERE donation_id = $1`, donationID)
}

// SumByNeed returns the total allocated to a need
func (r *AllocationRepository) SumByNeed(ctx context.Context, needID int64) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(amount), 0) FROM allocations WHERE need_id = $1`, needID)
}

func (r *AllocationRepository) sum(ctx context.Context, query string, id int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, id).Scan(&total); err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to sum allocations for %d: %w", id, translateError(err))
	}
	return total, nil
}

// ListByDonation returns a donation's allocations in ledger order
func (r *AllocationRepository) ListByDonation(ctx context.Context, donationID int64) ([]*models.Allocation, error) {
	query := `
		SELECT id, donation_id, need_id, beneficiary_id, amount, allocated_by, created_at
		FROM allocations
		WHERE donation_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, donationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations of donation %d: %w", donationID, translateError(err))
	}
	defer rows.Close()

	var allocations []*models.Allocation
	for rows.Next() {
		var a models.Allocation
		err := rows.Scan(
			&a.ID,
			&a.DonationID,
			&a.NeedID,
			&a.BeneficiaryID,
			&a.Amount,
			&a.AllocatedBy,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocations = append(allocations, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocations: %w", translateError(err))
	}

	return allocations, nil
}
