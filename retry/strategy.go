// Package retry provides backoff strategies and a circuit breaker for
// resilient RPC transports.
package retry

import (
	"context"
	"errors"
	"time"
)

// Strategy defines a retry policy.
type Strategy interface {
	// Next returns the delay before retry attempt number attempt (1-based).
	// Returns false if no more retries should be attempted.
	Next(attempt int) (delay time.Duration, ok bool)
}

// Permanent marks err as non-retryable. Do stops immediately and returns the
// underlying error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Do executes fn, retrying according to the given strategy on non-nil errors.
// Errors wrapped with Permanent end the loop at once. Do respects context
// cancellation while waiting between attempts.
func Do(ctx context.Context, s Strategy, fn func(ctx context.Context) error) error {
	var attempt int
	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		attempt++
		delay, ok := s.Next(attempt)
		if !ok {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
