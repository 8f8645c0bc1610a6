package common

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/finsight/internal/service"
)

// Retry defaults applied to zero fields of service.RetryOptions.
const (
	defaultAttempts     = 3
	defaultInitialDelay = 100 * time.Millisecond
	defaultMaxDelay     = 30 * time.Second
	defaultMultiplier   = 2.0
)

// backoff hands out the wait before each new attempt of one WithRetry call.
type backoff struct {
	opts service.RetryOptions
	wait time.Duration
}

func newBackoff(opts service.RetryOptions) *backoff {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaultInitialDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultMaxDelay
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = defaultMultiplier
	}
	return &backoff{opts: opts, wait: min(opts.InitialDelay, opts.MaxDelay)}
}

// next returns the wait after a failure. A throttled call jumps straight to
// MaxDelay and stays there.
func (b *backoff) next(err error) time.Duration {
	if IsRateLimited(err) {
		b.wait = b.opts.MaxDelay
		return b.wait
	}
	wait := b.wait
	b.wait = min(time.Duration(float64(b.wait)*b.opts.Multiplier), b.opts.MaxDelay)
	return wait
}

// WithRetry runs operation until it succeeds, returns an error IsRetryable
// rejects, or uses up opts.MaxAttempts. Exhaustion wraps both ErrMaxRetries
// and the last failure.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	b := newBackoff(opts)
	logger := Component("retry")

	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= b.opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		wait := b.next(err)
		logger.Warn("Remote call failed, retrying",
			"attempt", attempt,
			"max_attempts", b.opts.MaxAttempts,
			"delay", wait,
			"rate_limited", IsRateLimited(err),
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
