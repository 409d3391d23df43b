package observe

import (
	"context"
	"time"

	"github.com/kmd/mea/health"
)

// Middleware wraps check execution with tracing, metrics and logging.
// Its Observe method satisfies health.ObserveFunc.
//
// Contract:
//   - Concurrency: Observe is safe for concurrent use.
//   - Context: the span context is propagated to the check.
//   - Errors: results are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Observe runs next inside a span and records its outcome.
func (m *Middleware) Observe(ctx context.Context, entry health.Entry, next func(context.Context) health.Result) health.Result {
	ctx, span := m.tracer.StartSpan(ctx, entry)

	start := time.Now()
	result := next(ctx)
	duration := time.Since(start)

	m.tracer.EndSpan(span, result)
	m.metrics.RecordCheck(ctx, entry, result.Status, duration)

	logger := m.logger.WithCheck(entry.Name, entry.Tags)
	fields := []Field{
		{Key: "status", Value: result.Status.String()},
		{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
	}
	if result.Description != "" {
		fields = append(fields, Field{Key: "description", Value: result.Description})
	}

	switch result.Status {
	case health.StatusHealthy:
		logger.Debug(ctx, "health check completed", fields...)
	case health.StatusDegraded:
		logger.Warn(ctx, "health check degraded", fields...)
	default:
		if result.Error != nil {
			fields = append(fields, Field{Key: "error", Value: result.Error})
		}
		logger.Error(ctx, "health check failed", fields...)
	}

	return result
}

// ReportLogger returns a health.ReportFunc that logs each probe outcome:
// debug when healthy, warn otherwise.
func ReportLogger(logger Logger) health.ReportFunc {
	return func(ctx context.Context, tag string, report *health.Report) {
		if tag == "" {
			tag = "all"
		}
		fields := []Field{
			{Key: "probe", Value: tag},
			{Key: "status", Value: report.Status.String()},
			{Key: "checks", Value: len(report.Entries)},
			{Key: "duration_ms", Value: float64(report.TotalDuration.Microseconds()) / 1000},
		}
		if report.Status == health.StatusHealthy {
			logger.Debug(ctx, "health probe completed", fields...)
			return
		}

		var failing []string
		for _, name := range report.Names() {
			if report.Entries[name].Status != health.StatusHealthy {
				failing = append(failing, name)
			}
		}
		fields = append(fields, Field{Key: "failing", Value: failing})
		logger.Warn(ctx, "health probe not healthy", fields...)
	}
}
