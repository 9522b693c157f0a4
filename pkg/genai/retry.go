package genai

import (
	"context"
	"fmt"
	"time"
)

// Standard retry policy for external generator calls.
const (
	DefaultRetryAttempts = 5
	DefaultRetryBase     = time.Second
)

// Retry runs fn up to attempts times with exponential backoff (base, 2*base,
// 4*base, ...) between failures. It returns the first successful result, or
// the last error once attempts are exhausted. Context cancellation aborts the
// backoff wait immediately.
func Retry[T any](ctx context.Context, attempts int, base time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			delay := base << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}

	return zero, fmt.Errorf("retry exhausted after %d attempts: %w", attempts, lastErr)
}
