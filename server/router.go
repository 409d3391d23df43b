package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kmd/mea/health"
	"github.com/kmd/mea/observe"
)

// Route paths.
const (
	PathReady   = "/health/ready"
	PathLive    = "/health/live"
	PathMetrics = "/metrics"
)

// NewRouter wires the chi router, attaches middleware, and registers the
// probe routes. metrics is mounted at /metrics when non-nil.
func NewRouter(probes *health.Handler, metrics http.Handler, logger observe.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(CorrelationID)
	r.Use(RequestLogger(logger))

	r.Get(PathReady, probes.Ready)
	r.Get(PathLive, probes.Live)

	if metrics != nil {
		r.Method(http.MethodGet, PathMetrics, metrics)
	}

	return r
}
