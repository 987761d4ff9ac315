package repository

import (
	"context"
	"fmt"

	"charityfund/database"
	"charityfund/models"
)

// ReportRepository implements read-only aggregations over the ledger
type ReportRepository struct {
	q queryable
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{q: db.Pool}
}

// newReportRepositoryWithTx creates a new report repository with a transaction
func newReportRepositoryWithTx(tx queryable) *ReportRepository {
	return &ReportRepository{q: tx}
}

// TotalsByNeed returns the allocated total per need, including needs with nothing allocated
func (r *ReportRepository) TotalsByNeed(ctx context.Context) ([]*models.TargetTotal, error) {
	query := `
		SELECT n.id, n.title, COALESCE(SUM(a.amount), 0), COUNT(a.id)
		FROM needs n
		LEFT JOIN allocations a ON a.need_id = n.id
		GROUP BY n.id, n.title
		ORDER BY n.title, n.id
	`
	return r.targetTotals(ctx, query, "need")
}

// TotalsByBeneficiary returns the allocated total per beneficiary
func (r *ReportRepository) TotalsByBeneficiary(ctx context.Context) ([]*models.TargetTotal, error) {
	query := `
		SELECT b.id, b.name, COALESCE(SUM(a.amount), 0), COUNT(a.id)
		FROM beneficiaries b
		LEFT JOIN allocations a ON a.beneficiary_id = b.id
		GROUP BY b.id, b.name
		ORDER BY b.name, b.id
	`
	return r.targetTotals(ctx, query, "beneficiary")
}

func (r *ReportRepository) targetTotals(ctx context.Context, query, kind string) ([]*models.TargetTotal, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals by %s: %w", kind, translateError(err))
	}
	defer rows.Close()

	var totals []*models.TargetTotal
	for rows.Next() {
		var t models.TargetTotal
		if err := rows.Scan(&t.ID, &t.Name, &t.Total, &t.AllocationCount); err != nil {
			return nil, fmt.Errorf("failed to scan %s total: %w", kind, err)
		}
		totals = append(totals, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s totals: %w", kind, translateError(err))
	}

	return totals, nil
}

// TotalsByDonor returns donated and allocated totals per donor
func (r *ReportRepository) TotalsByDonor(ctx context.Context) ([]*models.DonorTotal, error) {
	query := `
		SELECT d.donor_ref,
		       SUM(d.amount),
		       COALESCE(SUM(alloc.total), 0),
		       COALESCE(SUM(alloc.entries), 0)::bigint
		FROM donations d
		LEFT JOIN (
			SELECT donation_id, SUM(amount) AS total, COUNT(*) AS entries
			FROM allocations
			GROUP BY donation_id
		) alloc ON alloc.donation_id = d.id
		GROUP BY d.donor_ref
		ORDER BY d.donor_ref
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals by donor: %w", translateError(err))
	}
	defer rows.Close()

	var totals []*models.DonorTotal
	for rows.Next() {
		var t models.DonorTotal
		if err := rows.Scan(&t.DonorRef, &t.Donated, &t.Allocated, &t.AllocationCount); err != nil {
			return nil, fmt.Errorf("failed to scan donor total: %w", err)
		}
		totals = append(totals, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate donor totals: %w", translateError(err))
	}

	return totals, nil
}

// FundsSummary returns overall donation and ledger totals
func (r *ReportRepository) FundsSummary(ctx context.Context) (*models.FundsSummary, error) {
	query := `
		SELECT
			COALESCE((SELECT SUM(amount) FROM donations), 0),
			COALESCE((SELECT SUM(amount) FROM allocations), 0),
			(SELECT COUNT(*) FROM donations),
			(SELECT COUNT(DISTINCT donor_ref) FROM donations),
			(SELECT COUNT(*) FROM allocations),
			(SELECT COUNT(*) FROM donations WHERE status = 'unallocated'),
			(SELECT COUNT(*) FROM donations WHERE status = 'partially_allocated'),
			(SELECT COUNT(*) FROM donations WHERE status = 'fully_allocated')
	`

	var s models.FundsSummary
	err := r.q.QueryRow(ctx, query).Scan(
		&s.TotalDonated,
		&s.TotalAllocated,
		&s.DonationCount,
		&s.DonorCount,
		&s.AllocationCount,
		&s.UnallocatedCount,
		&s.PartiallyCount,
		&s.FullyAllocatedCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get funds summary: %w", translateError(err))
	}

	return &s, nil
}
