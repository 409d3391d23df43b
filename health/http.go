package health

import (
	"context"
	"encoding/json"
	"net/http"
)

// TagReady selects the checks that gate readiness.
const TagReady = "ready"

// Handler serves the readiness and liveness probes.
//
// Every request runs a fresh execution; nothing is cached between requests.
type Handler struct {
	executor *Executor
	onReport ReportFunc
}

// ReportFunc receives every report produced by a probe, before it is written.
type ReportFunc func(ctx context.Context, tag string, report *Report)

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithReportFunc installs fn to be called with every probe report.
func WithReportFunc(fn ReportFunc) HandlerOption {
	return func(h *Handler) {
		h.onReport = fn
	}
}

// NewHandler creates a probe handler backed by executor.
func NewHandler(executor *Executor, opts ...HandlerOption) *Handler {
	h := &Handler{executor: executor}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Ready handles the readiness probe. It runs the checks tagged "ready".
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	h.Probe(TagReady)(w, r)
}

// Live handles the liveness probe. It runs every registered check.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	h.Probe("")(w, r)
}

// Probe returns a handler that runs the checks tagged with tag, or all checks
// when tag is empty, and writes the report.
func (h *Handler) Probe(tag string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := h.executor.Execute(r.Context(), tag)
		if h.onReport != nil {
			h.onReport(r.Context(), tag, report)
		}
		WriteReport(w, report)
	}
}

// StatusCode maps an aggregate status to the probe HTTP status.
// Only Healthy is 200; Degraded and Unhealthy are both 503.
func StatusCode(status Status) int {
	if status == StatusHealthy {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// WriteReport writes report as JSON with the status code for its status.
func WriteReport(w http.ResponseWriter, report *Report) {
	body, err := json.Marshal(report)
	if err != nil {
		// Only hand-built reports with an out-of-range status get here.
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(StatusCode(report.Status))
	_, _ = w.Write(body)
}
