package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutConfig configures the per-fetch deadline.
type TimeoutConfig struct {
	// Timeout bounds one delegated fetch, including the time spent reading
	// the payload body.
	// Default: 30 seconds
	Timeout time.Duration
}

// Timeout bounds a single delegated video fetch.
//
// Execute runs the fetch on the caller's goroutine. The fetch must honor
// ctx: a video service that ignores cancellation is not interrupted, and
// Execute returns only when it does. Nothing is left running after Execute
// returns.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a per-fetch deadline.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Timeout{config: config}
}

// Execute runs op under a deadline of the configured length.
//
// A failure is reported as ErrTimeout only when this deadline fired; the
// fetch's own error stays in the chain. A parent cancellation or a shorter
// parent deadline is returned as is, so callers can tell their own
// give-up apart from a slow upstream. A fetch that completes successfully
// after the deadline still succeeds.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeoutCause(ctx, t.config.Timeout, ErrTimeout)
	defer cancel()

	err := op(ctx)
	if err != nil && errors.Is(context.Cause(ctx), ErrTimeout) {
		return fmt.Errorf("%w after %s: %w", ErrTimeout, t.config.Timeout, err)
	}
	return err
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}
