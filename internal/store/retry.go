package store

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// withBusyRetry retries op against transient SQLite lock-contention errors
// (SQLITE_BUSY and friends) with a bounded exponential backoff: at least 5
// attempts, capped at 100ms total elapsed time, per spec.md §4.1's failure
// semantics. Any error surviving the budget is the caller's to wrap as
// ErrStorageError.
func withBusyRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 2 * time.Millisecond
	eb.MaxInterval = 20 * time.Millisecond
	eb.Multiplier = 2
	eb.RandomizationFactor = 0.1

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil {
			return v, err
		}
		return v, nil
	}, backoff.WithBackOff(eb), backoff.WithMaxTries(5), backoff.WithMaxElapsedTime(100*time.Millisecond))
}
