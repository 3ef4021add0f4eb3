package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// RetryPolicy bounds provider calls.
type RetryPolicy struct {
	Attempts int           `yaml:"attempts"`
	Timeout  time.Duration `yaml:"timeout"`
	Backoff  time.Duration `yaml:"backoff"`
}

// DefaultRetryPolicy allows three attempts of 20s each.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Timeout: 20 * time.Second, Backoff: time.Second}
}

// Retry calls fn until it succeeds, returns ErrUnavailable, or the
// attempts run out. Each attempt gets its own timeout; the wait between
// attempts doubles from p.Backoff. onRetry, if set, is called before
// every retry.
func Retry[T any](ctx context.Context, p RetryPolicy, what string, onRetry func(), fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * p.Backoff
			log.Printf("[WARN] %s failed (attempt %d/%d): %v, retrying in %v", what, i, attempts, lastErr, backoff)
			if onRetry != nil {
				onRetry()
			}
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}

		attemptCtx := ctx
		cancel := func() {}
		if p.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		v, err := fn(attemptCtx)
		cancel()
		if err == nil {
			return v, nil
		}
		if errors.Is(err, ErrUnavailable) {
			return zero, err
		}
		lastErr = err
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}
	return zero, fmt.Errorf("%s: all %d attempts failed: %w", what, attempts, lastErr)
}
