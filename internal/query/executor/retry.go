package executor

import (
	"context"
	"time"

	"github.com/mirrosha26/CoreBackend/internal/store/postgres"
)

// withRetry runs fn and retries it once after a fixed backoff if the
// failure is transient. Domain errors and context cancellation are
// never retried.
func (e *Executor) withRetry(ctx context.Context, fn func() error) error {
	err := mapStoreErr(ctx, fn())
	if err == nil || !postgres.IsTransient(err) {
		return err
	}

	e.log.Warn("transient store error, retrying", "error", err)

	timer := time.NewTimer(e.backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	return mapStoreErr(ctx, fn())
}

// mapStoreErr classifies pool-exhaustion failures as backpressure. The
// mapping only applies while the request context is still live: a
// deadline blown by the request itself is a cancellation, not overload.
func mapStoreErr(ctx context.Context, err error) error {
	if err != nil && ctx.Err() == nil {
		return postgres.MapAcquireErr(err)
	}
	return err
}
