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

// NeedRepository implements the NeedRepository interface
type NeedRepository struct {
	q queryable
}

// NewNeedRepository creates a new need repository
func NewNeedRepository(db *database.DB) *NeedRepository {
	return &NeedRepository{q: db.Pool}
}

// newNeedRepositoryWithTx creates a new need repository with a transaction
func newNeedRepositoryWithTx(tx queryable) *NeedRepository {
	return &NeedRepository{q: tx}
}

const needColumns = `id, institution_ref, title, section, category, amount_needed, amount_raised, fulfilled, created_at, updated_at`

func scanNeed(row pgx.Row) (*models.Need, error) {
	var need models.Need
	err := row.Scan(
		&need.ID,
		&need.InstitutionRef,
		&need.Title,
		&need.Section,
		&need.Category,
		&need.AmountNeeded,
		&need.AmountRaised,
		&need.Fulfilled,
		&need.CreatedAt,
		&need.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &need, nil
}

// Create creates a new open need. AmountRaised starts at zero; it only grows
// through ApplyRaise alongside a ledger entry.
func (r *NeedRepository) Create(ctx context.Context, need *models.Need) error {
	if need.AmountNeeded.Sign() <= 0 {
		return fmt.Errorf("amount needed must be positive")
	}
	if need.Section == "" {
		need.Section = models.NeedSectionOther
	}

	query := `
		INSERT INTO needs (institution_ref, title, section, category, amount_needed, amount_raised, fulfilled)
		VALUES ($1, $2, $3, $4, $5::numeric, 0, FALSE)
		RETURNING ` + needColumns

	created, err := scanNeed(r.q.QueryRow(ctx, query,
		need.InstitutionRef,
		need.Title,
		need.Section,
		need.Category,
		moneyArg(need.AmountNeeded),
	))
	if err != nil {
		return fmt.Errorf("failed to create need %q: %w", need.Title, translateError(err))
	}

	*need = *created
	return nil
}

// GetByID retrieves a need by its ID
func (r *NeedRepository) GetByID(ctx context.Context, id int64) (*models.Need, error) {
	query := `SELECT ` + needColumns + ` FROM needs WHERE id = $1`

	need, err := scanNeed(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get need %d: %w", id, translateError(err))
	}
	return need, nil
}

// GetAll returns every need ordered by ID
func (r *NeedRepository) GetAll(ctx context.Context) ([]*models.Need, error) {
	query := `SELECT ` + needColumns + ` FROM needs ORDER BY id`
	return r.list(ctx, query)
}

// ListOpen returns a snapshot of unfulfilled needs in the requested order.
// Ties on the remaining gap are broken by ID so the order is deterministic.
func (r *NeedRepository) ListOpen(ctx context.Context, ordering models.NeedOrdering) ([]*models.Need, error) {
	var direction string
	switch ordering {
	case models.NeedOrderLargestRemaining:
		direction = "DESC"
	case models.NeedOrderSmallestRemaining:
		direction = "ASC"
	default:
		return nil, fmt.Errorf("unknown need ordering %q", ordering)
	}

	query := `
		SELECT ` + needColumns + `
		FROM needs
		WHERE fulfilled = FALSE
		ORDER BY (amount_needed - amount_raised) ` + direction + `, id ASC
	`
	return r.list(ctx, query)
}

func (r *NeedRepository) list(ctx context.Context, query string, args ...any) ([]*models.Need, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list needs: %w", translateError(err))
	}
	defer rows.Close()

	var needs []*models.Need
	for rows.Next() {
		need, err := scanNeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan need: %w", err)
		}
		needs = append(needs, need)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate needs: %w", translateError(err))
	}

	return needs, nil
}

// ApplyRaise adds amount to a need's raised total. The update only matches when
// amount_raised still holds the value the caller read, so two writers that saw the
// same gap cannot both succeed.
func (r *NeedRepository) ApplyRaise(ctx context.Context, need *models.Need, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: raise amount must be positive, got %s", service.ErrOverAllocation, amount)
	}
	if amount.GreaterThan(need.Remaining()) {
		return fmt.Errorf("%w: raise of %s exceeds remaining %s on need %d",
			service.ErrOverAllocation, amount, need.Remaining(), need.ID)
	}

	query := `
		UPDATE needs
		SET amount_raised = amount_raised + $1::numeric,
		    fulfilled = (amount_raised + $1::numeric >= amount_needed),
		    updated_at = NOW()
		WHERE id = $2
		  AND amount_raised = $3::numeric
		  AND amount_needed - amount_raised >= $1::numeric
		RETURNING amount_raised, fulfilled, updated_at
	`

	err := r.q.QueryRow(ctx, query, moneyArg(amount), need.ID, moneyArg(need.AmountRaised)).Scan(
		&need.AmountRaised,
		&need.Fulfilled,
		&need.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		current, getErr := r.GetByID(ctx, need.ID)
		if getErr != nil {
			return getErr
		}
		if current == nil {
			return fmt.Errorf("%w: need %d", service.ErrNotFound, need.ID)
		}
		return fmt.Errorf("%w: need %d raised total moved from %s to %s",
			service.ErrConcurrencyConflict, need.ID, need.AmountRaised, current.AmountRaised)
	}
	if err != nil {
		return fmt.Errorf("failed to raise need %d by %s: %w", need.ID, amount, translateError(err))
	}

	return nil
}
