// Package health registers, runs and reports health checks.
//
// A Registry holds named checks tagged with categories. An Executor runs the
// checks matching a tag concurrently, bounds each one with a timeout, and folds
// every failure (error, panic, timeout, cancellation) into an Unhealthy
// Result. The outcome is a Report whose status is the most severe status of
// its entries. Handler exposes reports as readiness and liveness probes.
//
// # Basic Usage
//
//	reg := health.NewRegistry()
//	reg.MustRegister("basic_readiness_check",
//	    health.Static(health.StatusHealthy, ""),
//	    health.WithTags(health.TagReady))
//	reg.MustRegister("database", health.PingFunc(pool.Ping),
//	    health.WithTags(health.TagReady),
//	    health.WithTimeout(2*time.Second))
//	reg.Freeze()
//
//	exec := health.NewExecutor(reg)
//	report := exec.Execute(ctx, health.TagReady)
//
// # HTTP Endpoints
//
//	h := health.NewHandler(exec)
//	r.Get("/health/ready", h.Ready)
//	r.Get("/health/live", h.Live)
//
// Both probes answer 200 when the report is Healthy and 503 when it is
// Degraded or Unhealthy, always with the JSON report as body.
//
// # Wire Format
//
// Reports encode with camelCase keys, statuses by name and durations as
// ISO-8601 seconds:
//
//	{"status":"Healthy","totalDuration":"PT0.0002S",
//	 "entries":{"basic_readiness_check":{"data":{},"duration":"PT0.00001S",
//	   "status":"Healthy","tags":["ready"]}}}
package health
