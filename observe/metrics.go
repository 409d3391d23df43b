package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kmd/mea/health"
)

// Metrics records health check outcomes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one check execution with its status and duration.
	RecordCheck(ctx context.Context, entry health.Entry, status health.Status, duration time.Duration)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount   metric.Int64Counter
	failureCount metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with instruments from meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"health.check.total",
		metric.WithDescription("Total number of health check executions"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	failureCount, err := meter.Int64Counter(
		"health.check.failures",
		metric.WithDescription("Health check executions that were not healthy"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"health.check.duration_ms",
		metric.WithDescription("Health check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		failureCount: failureCount,
		durationHist: durationHist,
	}, nil
}

// RecordCheck records metrics for a health check execution.
func (m *metricsImpl) RecordCheck(ctx context.Context, entry health.Entry, status health.Status, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("check.name", entry.Name),
		attribute.String("check.status", status.String()),
	)

	m.totalCount.Add(ctx, 1, opt)
	if status != health.StatusHealthy {
		m.failureCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}
