package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kmd/mea/checks"
	"github.com/kmd/mea/config"
	"github.com/kmd/mea/health"
	"github.com/kmd/mea/observe"
	"github.com/kmd/mea/secret"
)

// BasicReadinessCheck is always registered and always healthy, so a process
// that can answer HTTP reports ready even with no dependency checks.
const BasicReadinessCheck = "basic_readiness_check"

// app holds the wired components shared by serve and check.
type app struct {
	cfg      *config.Config
	observer observe.Observer
	logger   observe.Logger
	registry *health.Registry
	executor *health.Executor

	closeChecks func()
	resolver    *secret.Resolver
}

// newApp wires Observer, Registry and Executor. The registry is frozen before
// newApp returns.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig(Version))
	if err != nil {
		return nil, fmt.Errorf("setting up telemetry: %w", err)
	}
	a := &app{
		cfg:         cfg,
		observer:    obs,
		logger:      obs.Logger(),
		registry:    health.NewRegistry(),
		closeChecks: func() {},
		resolver:    secret.DefaultResolver(),
	}

	if err := a.registry.Register(BasicReadinessCheck,
		health.Static(health.StatusHealthy, ""),
		health.WithTags(health.TagReady),
	); err != nil {
		_ = a.close(ctx)
		return nil, err
	}

	closeChecks, err := checks.RegisterAll(ctx, a.registry, cfg.Checks, a.resolver)
	if err != nil {
		_ = a.close(ctx)
		return nil, fmt.Errorf("registering checks: %w", err)
	}
	a.closeChecks = closeChecks
	a.registry.Freeze()

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = a.close(ctx)
		return nil, fmt.Errorf("setting up check instrumentation: %w", err)
	}
	a.executor = health.NewExecutor(a.registry, health.ExecutorConfig{
		DefaultTimeout: cfg.Executor.DefaultTimeout.Duration,
		Parallel:       cfg.Executor.Parallel,
		MaxConcurrency: cfg.Executor.MaxConcurrency,
		Observe:        mw.Observe,
	})

	return a, nil
}

// close releases check resources and flushes telemetry.
func (a *app) close(ctx context.Context) error {
	a.closeChecks()
	return errors.Join(a.resolver.Close(), a.observer.Shutdown(ctx))
}
