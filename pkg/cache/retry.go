package cache

import (
	"context"
	"errors"
	"time"
)

// retryAttempts is the number of calls RetryWithBackoff makes at most.
const retryAttempts = 3

// ErrNetwork marks a backend failure that may succeed on a second try.
var ErrNetwork = errors.New("network error")

// RetryableError marks Err as transient.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff calls fn until it succeeds, returns an error that is not
// retryable, or has been called retryAttempts times. The wait before the
// n-th retry is base<<(n-1).
func RetryWithBackoff(ctx context.Context, base time.Duration, fn func() error) error {
	err := fn()
	for attempt := 1; attempt < retryAttempts && IsRetryable(err); attempt++ {
		t := time.NewTimer(base << (attempt - 1))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		err = fn()
	}
	return err
}
