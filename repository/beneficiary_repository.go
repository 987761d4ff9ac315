package repository

import (
	"context"
	"fmt"

	"charityfund/database"
	"charityfund/models"
	"github.com/jackc/pgx/v5"
)

// BeneficiaryRepository implements the BeneficiaryRepository interface
type BeneficiaryRepository struct {
	q queryable
}

// NewBeneficiaryRepository creates a new beneficiary repository
func NewBeneficiaryRepository(db *database.DB) *BeneficiaryRepository {
	return &BeneficiaryRepository{q: db.Pool}
}

// newBeneficiaryRepositoryWithTx creates a new beneficiary repository with a transaction
func newBeneficiaryRepositoryWithTx(tx queryable) *BeneficiaryRepository {
	return &BeneficiaryRepository{q: tx}
}

// Create creates a new beneficiary
func (r *BeneficiaryRepository) Create(ctx context.Context, beneficiary *models.Beneficiary) error {
	if beneficiary.Name == "" {
		return fmt.Errorf("beneficiary name cannot be empty")
	}
	if beneficiary.Priority == 0 {
		beneficiary.Priority = 1
	}

	query := `
		INSERT INTO beneficiaries (name, priority, need_fulfilled)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		beneficiary.Name,
		beneficiary.Priority,
		beneficiary.NeedFulfilled,
	).Scan(&beneficiary.ID, &beneficiary.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create beneficiary %q: %w", beneficiary.Name, translateError(err))
	}

	return nil
}

// GetByID retrieves a beneficiary by its ID
func (r *BeneficiaryRepository) GetByID(ctx context.Context, id int64) (*models.Beneficiary, error) {
	query := `
		SELECT id, name, priority, need_fulfilled, created_at
		FROM beneficiaries
		WHERE id = $1
	`

	var b models.Beneficiary
	err := r.q.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Priority, &b.NeedFulfilled, &b.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get beneficiary %d: %w", id, translateError(err))
	}

	return &b, nil
}

// ListEligible returns the beneficiaries that share general fund money under policy, ordered by ID
func (r *BeneficiaryRepository) ListEligible(ctx context.Context, policy models.BeneficiaryPolicy) ([]*models.Beneficiary, error) {
	var filter string
	switch policy {
	case models.BeneficiaryPolicyAll, "":
		filter = "TRUE"
	case models.BeneficiaryPolicyUnfulfilled:
		filter = "need_fulfilled = FALSE"
	default:
		return nil, fmt.Errorf("unknown beneficiary policy %q", policy)
	}

	query := `
		SELECT id, name, priority, need_fulfilled, created_at
		FROM beneficiaries
		WHERE ` + filter + `
		ORDER BY priority DESC, id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible beneficiaries: %w", translateError(err))
	}
	defer rows.Close()

	var beneficiaries []*models.Beneficiary
	for rows.Next() {
		var b models.Beneficiary
		if err := rows.Scan(&b.ID, &b.Name, &b.Priority, &b.NeedFulfilled, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan beneficiary: %w", err)
		}
		beneficiaries = append(beneficiaries, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate beneficiaries: %w", translateError(err))
	}

	return beneficiaries, nil
}
