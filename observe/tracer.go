package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kmd/mea/health"
)

// SpanName returns the deterministic span name for a check.
// Format: health.check.<name>
func SpanName(checkName string) string {
	return "health.check." + checkName
}

// Tracer wraps OpenTelemetry tracing with check-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a check execution.
	StartSpan(ctx context.Context, entry health.Entry) (context.Context, trace.Span)

	// EndSpan ends the span, recording the check outcome.
	EndSpan(span trace.Span, result health.Result)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with check metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, entry health.Entry) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("check.name", entry.Name),
	}
	if len(entry.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("check.tags", entry.Tags))
	}
	if entry.Timeout > 0 {
		attrs = append(attrs, attribute.Int64("check.timeout_ms", entry.Timeout.Milliseconds()))
	}

	return t.tracer.Start(ctx, SpanName(entry.Name),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span. Unhealthy results mark the span as failed; degraded
// results leave the status unset.
func (t *tracerImpl) EndSpan(span trace.Span, result health.Result) {
	span.SetAttributes(attribute.String("check.status", result.Status.String()))

	switch result.Status {
	case health.StatusHealthy:
		span.SetStatus(codes.Ok, "")
	case health.StatusUnhealthy:
		span.SetStatus(codes.Error, result.Description)
		if result.Error != nil {
			span.RecordError(result.Error)
		}
	}
	span.End()
}
