// Package observe provides observability primitives for health checks.
//
// It is a pure instrumentation library: no check execution, no transport, no
// I/O beyond exporter setup. Consumers wire a Middleware into the health
// executor and mount MetricsHandler on their router.
package observe
