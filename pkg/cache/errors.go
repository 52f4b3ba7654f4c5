package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a remote cache or store cannot be
// reached.
var ErrUnavailable = errors.New("backend unavailable")

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff controls [Retry].
type Backoff struct {
	Attempts int
	Delay    time.Duration
	// Factor multiplies the delay after each attempt; 1 keeps it fixed.
	Factor float64
}

// DefaultBackoff is three attempts starting one second apart, doubling.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, Factor: 2}

// RetryWithBackoff retries fn with [DefaultBackoff].
// Only errors wrapped with Retryable will trigger retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultBackoff, fn)
}

// Retry calls fn until it succeeds, returns an error not wrapped with
// Retryable, or b.Attempts is exhausted.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	delay := b.Delay
	var lastErr error

	for i := 0; i < b.Attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < b.Attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				if b.Factor > 0 {
					delay = time.Duration(float64(delay) * b.Factor)
				}
			}
		}
	}
	return lastErr
}
