// Package server exposes the health probes over HTTP.
//
// NewRouter mounts GET /health/ready, GET /health/live and, when metrics are
// exported to Prometheus, GET /metrics on a chi router with panic recovery,
// real-IP resolution, correlation ids and request logging. Server runs the
// router and shuts down gracefully when its context ends.
package server
