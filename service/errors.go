package service

import "errors"

var (
	// ErrInvalidDonation marks a non-positive or malformed donation amount
	ErrInvalidDonation = errors.New("invalid donation")

	// ErrOverAllocation marks a raise or allocation exceeding a need's gap or a donation's headroom
	ErrOverAllocation = errors.New("over allocation")

	// ErrInvalidAllocation marks a ledger entry that would break conservation or targeting rules
	ErrInvalidAllocation = errors.New("invalid allocation")

	// ErrConcurrencyConflict marks a transaction that lost a race with a concurrent writer
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrNotFound marks a missing donation, need or beneficiary
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks a malformed need or beneficiary record
	ErrInvalidInput = errors.New("invalid input")
)

// IsTransient reports whether an error may succeed when retried with fresh reads
func IsTransient(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
