package repository

import (
	"context"
	"errors"
	"fmt"

	"charityfund/models"
	"charityfund/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// queryable is satisfied by both the pool and a transaction
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgCheckViolation       = "23514"
	pgForeignKeyViolation  = "23503"
)

// translateError maps PostgreSQL failures onto the service error taxonomy
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %s", service.ErrConcurrencyConflict, pgErr.Message)
		case pgCheckViolation, pgForeignKeyViolation:
			return fmt.Errorf("%w: %s violated", service.ErrInvalidAllocation, pgErr.ConstraintName)
		}
	}
	return err
}

// moneyArg renders an amount as a fixed scale literal. Strings are always sent in
// text format, which PostgreSQL parses into NUMERIC without loss.
func moneyArg(d decimal.Decimal) string {
	return d.StringFixed(models.MoneyScale)
}
