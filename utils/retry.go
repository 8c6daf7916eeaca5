package utils

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// IsOverloadError reports whether err looks like an upstream overload signal.
// Only these are retried.
func IsOverloadError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "503") ||
		strings.Contains(msg, "UNAVAILABLE") ||
		strings.Contains(strings.ToLower(msg), "overloaded")
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryPolicy retries a remote call with exponential backoff.
//
// MaxRetries is the total number of attempts, the first one included. The
// wait before retry i (0-based) is InitialDelay * 2^i.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	IsRetryable  func(error) bool
	Sleep        SleepFunc
	Logger       *zap.Logger
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		IsRetryable:  IsOverloadError,
		Sleep:        sleepContext,
	}
}

// MaxRetryDelay bounds the doubling of a single backoff. An InitialDelay
// above it is used as is.
const MaxRetryDelay = 2 * time.Minute

// Delay returns the backoff before retry attempt (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.InitialDelay
	if d <= 0 {
		return 0
	}
	for i := 0; i < attempt && d < MaxRetryDelay; i++ {
		d *= 2
	}
	if d > MaxRetryDelay && d > p.InitialDelay {
		return MaxRetryDelay
	}
	return d
}

// Retry runs op under policy. The last error is returned unchanged once
// attempts run out or the error is not retryable.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	maxAttempts := p.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryable := p.IsRetryable
	if retryable == nil {
		retryable = IsOverloadError
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !retryable(err) || attempt == maxAttempts-1 {
			break
		}

		delay := p.Delay(attempt)
		logger.Warn("retrying after transient failure",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if serr := sleep(ctx, delay); serr != nil {
			return zero, serr
		}
	}
	return zero, lastErr
}
