package observe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/kmd/mea/health"
)

type testMiddleware struct {
	mw       *Middleware
	spans    *tracetest.SpanRecorder
	reader   *sdkmetric.ManualReader
	logs     *bytes.Buffer
}

func newTestMiddleware(t *testing.T, level string) *testMiddleware {
	t.Helper()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	metrics, reader := newTestMetrics(t)
	var logs bytes.Buffer

	return &testMiddleware{
		mw:       NewMiddleware(NewTracer(tp.Tracer("test")), metrics, NewLoggerWithWriter(level, &logs)),
		spans:    spans,
		reader:   reader,
		logs:     &logs,
	}
}

// TestMiddleware_HealthyPath verifies span, metrics and debug log for a healthy check.
func TestMiddleware_HealthyPath(t *testing.T) {
	tm := newTestMiddleware(t, "debug")
	entry := health.Entry{Name: "db", Tags: []string{"ready"}}

	result := tm.mw.Observe(context.Background(), entry, func(ctx context.Context) health.Result {
		return health.Healthy("ok")
	})

	if result.Status != health.StatusHealthy || result.Description != "ok" {
		t.Errorf("result = %+v, want unchanged healthy result", result)
	}

	spans := tm.spans.Ended()
	if len(spans) != 1 || spans[0].Name() != "health.check.db" {
		t.Fatalf("spans = %v, want one health.check.db span", spans)
	}

	if got := sumValue(t, findMetric(collect(t, tm.reader), "health.check.total")); got != 1 {
		t.Errorf("total = %d, want 1", got)
	}

	lines := decodeLines(t, tm.logs)
	if len(lines) != 1 {
		t.Fatalf("log lines = %d, want 1", len(lines))
	}
	if lines[0]["level"] != "debug" || lines[0]["check.name"] != "db" {
		t.Errorf("log = %v", lines[0])
	}
}

// TestMiddleware_LogLevels verifies degraded logs warn and unhealthy logs error.
func TestMiddleware_LogLevels(t *testing.T) {
	tests := []struct {
		name   string
		result health.Result
		level  string
	}{
		{"degraded", health.Degraded("slow"), "warn"},
		{"unhealthy", health.Unhealthy("down", errors.New("connection refused")), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := newTestMiddleware(t, "info")

			tm.mw.Observe(context.Background(), health.Entry{Name: "x"}, func(ctx context.Context) health.Result {
				return tt.result
			})

			lines := decodeLines(t, tm.logs)
			if len(lines) != 1 {
				t.Fatalf("log lines = %d, want 1", len(lines))
			}
			if lines[0]["level"] != tt.level {
				t.Errorf("level = %v, want %s", lines[0]["level"], tt.level)
			}
			if lines[0]["status"] != tt.result.Status.String() {
				t.Errorf("status = %v, want %s", lines[0]["status"], tt.result.Status)
			}
		})
	}
}

// TestMiddleware_UnhealthyLogsError verifies the error message is logged.
func TestMiddleware_UnhealthyLogsError(t *testing.T) {
	tm := newTestMiddleware(t, "info")

	tm.mw.Observe(context.Background(), health.Entry{Name: "x"}, func(ctx context.Context) health.Result {
		return health.Unhealthy("down", errors.New("connection refused"))
	})

	if !strings.Contains(tm.logs.String(), "connection refused") {
		t.Errorf("error not logged: %s", tm.logs.String())
	}
	if got := sumValue(t, findMetric(collect(t, tm.reader), "health.check.failures")); got != 1 {
		t.Errorf("failures = %d, want 1", got)
	}
}

// TestMiddleware_PropagatesSpanContext verifies the check sees the span.
func TestMiddleware_PropagatesSpanContext(t *testing.T) {
	tm := newTestMiddleware(t, "info")

	var inner trace.SpanContext
	tm.mw.Observe(context.Background(), health.Entry{Name: "x"}, func(ctx context.Context) health.Result {
		inner = trace.SpanContextFromContext(ctx)
		return health.Healthy("")
	})

	if !inner.IsValid() {
		t.Fatal("check did not receive a span context")
	}
	if inner.SpanID() != tm.spans.Ended()[0].SpanContext().SpanID() {
		t.Error("check span context does not match recorded span")
	}
}

// TestMiddleware_WithExecutor verifies Observe plugs into the health executor.
func TestMiddleware_WithExecutor(t *testing.T) {
	tm := newTestMiddleware(t, "info")

	reg := health.NewRegistry()
	reg.MustRegister("a", health.Static(health.StatusHealthy, ""), health.WithTags("ready"))
	reg.MustRegister("b", health.CheckerFunc(func(ctx context.Context) health.Result {
		panic("boom")
	}))
	exec := health.NewExecutor(reg, health.ExecutorConfig{
		DefaultTimeout: time.Second,
		Parallel:       true,
		Observe:        tm.mw.Observe,
	})

	report := exec.Execute(context.Background(), "")

	if report.Status != health.StatusUnhealthy {
		t.Errorf("status = %v, want Unhealthy", report.Status)
	}
	if got := len(tm.spans.Ended()); got != 2 {
		t.Errorf("spans = %d, want 2", got)
	}
	if got := sumValue(t, findMetric(collect(t, tm.reader), "health.check.failures")); got != 1 {
		t.Errorf("failures = %d, want 1", got)
	}
}

func TestMiddlewareFromObserver_Nil(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("err = %v, want ErrNilObserver", err)
	}
}

// TestReportLogger verifies probe outcome levels.
func TestReportLogger(t *testing.T) {
	reg := health.NewRegistry()
	reg.MustRegister("ok", health.Static(health.StatusHealthy, ""), health.WithTags("ready"))
	reg.MustRegister("down", health.Static(health.StatusUnhealthy, "down"))
	exec := health.NewExecutor(reg)
	ctx := context.Background()

	var buf bytes.Buffer
	logFn := ReportLogger(NewLoggerWithWriter("debug", &buf))

	logFn(ctx, "ready", exec.Execute(ctx, "ready"))
	logFn(ctx, "", exec.Execute(ctx, ""))

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("log lines = %d, want 2", len(lines))
	}
	if lines[0]["level"] != "debug" || lines[0]["probe"] != "ready" {
		t.Errorf("ready log = %v", lines[0])
	}
	if lines[1]["level"] != "warn" || lines[1]["probe"] != "all" {
		t.Errorf("live log = %v", lines[1])
	}
	failing, ok := lines[1]["failing"].([]any)
	if !ok || len(failing) != 1 || failing[0] != "down" {
		t.Errorf("failing = %v, want [down]", lines[1]["failing"])
	}
}
