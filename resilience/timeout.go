package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout is the maximum duration for the operation.
	// Default: 30 seconds
	Timeout time.Duration
}

// Timeout wraps operations with a timeout.
//
// The operation runs on its own goroutine. When the deadline passes or the
// parent context is cancelled the caller returns immediately and the
// operation is abandoned; its eventual result is discarded.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout wrapper.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Timeout{config: config}
}

// Execute runs the operation with a timeout.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	err, callErr := Call(ctx, t, op)
	if callErr != nil {
		return callErr
	}
	return err
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// Call runs op under t and returns the value it produced. The error is
// ErrTimeout (wrapped with the limit) when the deadline passed first, or the
// parent context's error when it was cancelled first.
func Call[T any](ctx context.Context, t *Timeout, op func(context.Context) T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	tctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	done := make(chan T, 1)
	go func() {
		done <- op(tctx)
	}()

	select {
	case v := <-done:
		// An op that returned because its context expired still timed out.
		if tctx.Err() == nil {
			return v, nil
		}
		return zero, t.contextErr(ctx, tctx)
	case <-tctx.Done():
		return zero, t.contextErr(ctx, tctx)
	}
}

func (t *Timeout) contextErr(parent, tctx context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	if errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, t.config.Timeout)
	}
	return tctx.Err()
}

// ExecuteWithTimeout is a convenience function to run an operation with timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	t := NewTimeout(TimeoutConfig{Timeout: timeout})
	return t.Execute(ctx, op)
}
