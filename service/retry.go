package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// retryOnConflict runs op until it succeeds, fails with a non-transient error, or
// maxAttempts attempts have conflicted. Only ErrConcurrencyConflict is retried; each
// attempt must start a fresh transaction so it reads fresh state.
func retryOnConflict[T any](ctx context.Context, maxAttempts int, initialInterval time.Duration, fields log.Fields, op func() (T, error)) (T, error) {
	var result T
	attempt := 0

	operation := func() error {
		attempt++
		r, err := op()
		if err == nil {
			result = r
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}

		log.WithFields(fields).WithFields(log.Fields{
			"attempt":     attempt,
			"maxAttempts": maxAttempts,
			"error":       err,
		}).Warn("Allocation conflicted with a concurrent writer")
		return err
	}

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxInterval = 20 * initialInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxAttempts-1)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		var zero T
		if IsTransient(err) {
			return zero, fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}
		return zero, err
	}

	return result, nil
}
