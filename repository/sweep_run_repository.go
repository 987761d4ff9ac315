package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"charityfund/database"
	"charityfund/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SweepRunRepository implements the SweepRunRepository interface
type SweepRunRepository struct {
	q queryable
}

// NewSweepRunRepository creates a new sweep run repository
func NewSweepRunRepository(db *database.DB) *SweepRunRepository {
	return &SweepRunRepository{q: db.Pool}
}

// newSweepRunRepositoryWithTx creates a new sweep run repository with a transaction
func newSweepRunRepositoryWithTx(tx queryable) *SweepRunRepository {
	return &SweepRunRepository{q: tx}
}

const sweepRunColumns = `id, run_id, started_at, finished_at, donations_processed, donations_failed,
		       total_allocated, triggered_by, execution_summary, created_at`

func scanSweepRun(row pgx.Row) (*models.SweepRun, error) {
	var run models.SweepRun
	var summaryJSON []byte

	err := row.Scan(
		&run.ID,
		&run.RunID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.DonationsProcessed,
		&run.DonationsFailed,
		&run.TotalAllocated,
		&run.TriggeredBy,
		&summaryJSON,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Unmarshal execution summary
	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution summary: %w", err)
		}
	}

	return &run, nil
}

// Create persists a finished sweep run
func (r *SweepRunRepository) Create(ctx context.Context, run *models.SweepRun) error {
	if run.RunID == uuid.Nil {
		run.RunID = uuid.New()
	}

	// Convert summary to JSON
	summaryJSON, err := json.Marshal(run.ExecutionSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	query := `
		INSERT INTO sweep_runs
		(run_id, started_at, finished_at, donations_processed, donations_failed, total_allocated, triggered_by, execution_summary)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		run.RunID,
		run.StartedAt,
		run.FinishedAt,
		run.DonationsProcessed,
		run.DonationsFailed,
		moneyArg(run.TotalAllocated),
		run.TriggeredBy,
		summaryJSON,
	).Scan(&run.ID, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create sweep run %s: %w", run.RunID, translateError(err))
	}

	return nil
}

// GetByRunID retrieves a sweep run by its run ID
func (r *SweepRunRepository) GetByRunID(ctx context.Context, runID uuid.UUID) (*models.SweepRun, error) {
	query := `SELECT ` + sweepRunColumns + ` FROM sweep_runs WHERE run_id = $1`

	run, err := scanSweepRun(r.q.QueryRow(ctx, query, runID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sweep run %s: %w", runID, translateError(err))
	}
	return run, nil
}

// GetLatest returns the most recent sweep run
func (r *SweepRunRepository) GetLatest(ctx context.Context) (*models.SweepRun, error) {
	query := `SELECT ` + sweepRunColumns + ` FROM sweep_runs ORDER BY started_at DESC, id DESC LIMIT 1`

	run, err := scanSweepRun(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sweep run: %w", translateError(err))
	}
	return run, nil
}
