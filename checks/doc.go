// Package checks implements dependency health checks built from
// configuration: HTTP endpoints, TCP ports, PostgreSQL databases and
// process memory.
package checks
