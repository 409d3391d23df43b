package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kmd/mea/resilience"
)

// ObserveFunc wraps a single check execution. It must call next exactly once
// and return its result, possibly annotated.
type ObserveFunc func(ctx context.Context, entry Entry, next func(context.Context) Result) Result

// ExecutorConfig configures the check executor.
type ExecutorConfig struct {
	// DefaultTimeout bounds checks that do not set their own timeout.
	// Default: 10 seconds
	DefaultTimeout time.Duration

	// Parallel runs health checks concurrently when true.
	// Default: true
	Parallel bool

	// MaxConcurrency caps concurrently running checks when Parallel is set.
	// Zero means no cap.
	MaxConcurrency int

	// Observe, when set, wraps every check execution.
	Observe ObserveFunc
}

// Executor runs the checks of a Registry and aggregates them into a Report.
type Executor struct {
	registry *Registry
	config   ExecutorConfig
}

// NewExecutor creates an executor reading checks from registry.
func NewExecutor(registry *Registry, config ...ExecutorConfig) *Executor {
	cfg := ExecutorConfig{
		DefaultTimeout: 10 * time.Second,
		Parallel:       true,
	}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.DefaultTimeout <= 0 {
			cfg.DefaultTimeout = 10 * time.Second
		}
		if cfg.MaxConcurrency < 0 {
			cfg.MaxConcurrency = 0
		}
	}

	return &Executor{
		registry: registry,
		config:   cfg,
	}
}

// Config returns the executor configuration.
func (e *Executor) Config() ExecutorConfig {
	return e.config
}

// Execute runs every entry tagged with tag (all entries when tag is empty)
// and waits for all of them before building the report. Check failures,
// panics, timeouts and cancellation are all folded into unhealthy results;
// Execute itself never fails.
func (e *Executor) Execute(ctx context.Context, tag string) *Report {
	start := time.Now()
	entries := e.registry.Entries(tag)
	results := make([]Result, len(entries))

	if e.config.Parallel && len(entries) > 1 {
		var g errgroup.Group
		if e.config.MaxConcurrency > 0 {
			g.SetLimit(e.config.MaxConcurrency)
		}
		for i, entry := range entries {
			g.Go(func() error {
				results[i] = e.run(ctx, entry)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, entry := range entries {
			results[i] = e.run(ctx, entry)
		}
	}

	return NewReport(entries, results, time.Since(start))
}

func (e *Executor) run(ctx context.Context, entry Entry) Result {
	start := time.Now()

	limit := entry.Timeout
	if limit <= 0 {
		limit = e.config.DefaultTimeout
	}
	timeout := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: limit})

	result, err := resilience.Call(ctx, timeout, func(ctx context.Context) Result {
		return e.invoke(ctx, entry)
	})
	switch {
	case err == nil:
	case errors.Is(err, resilience.ErrTimeout):
		result = Unhealthy(
			fmt.Sprintf("check timed out after %s", limit),
			fmt.Errorf("%w: %q after %s", ErrCheckTimeout, entry.Name, limit),
		)
	default:
		result = Unhealthy("check cancelled", err)
	}

	result.Duration = time.Since(start)
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}
	result.Tags = entry.Tags
	return result
}

func (e *Executor) invoke(ctx context.Context, entry Entry) Result {
	next := func(ctx context.Context) Result {
		return safeCheck(ctx, entry.Checker)
	}
	if e.config.Observe != nil {
		return e.config.Observe(ctx, entry, next)
	}
	return next(ctx)
}

// safeCheck runs checker, converting a panic or a reported error into an
// unhealthy result.
func safeCheck(ctx context.Context, checker Checker) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Unhealthy(
				fmt.Sprintf("check panicked: %v", r),
				fmt.Errorf("%w: panic: %v", ErrCheckFailed, r),
			)
		}
	}()

	result = checker.Check(ctx)
	if result.Status < StatusHealthy || result.Status > StatusUnhealthy {
		result.Error = fmt.Errorf("%w: invalid status %d", ErrCheckFailed, int(result.Status))
		result.Status = StatusUnhealthy
	}
	if result.Error != nil {
		result.Status = StatusUnhealthy
	}
	if result.Error != nil && result.Description == "" {
		result.Description = result.Error.Error()
	}
	return result
}
