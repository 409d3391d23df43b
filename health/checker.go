package health

import (
	"context"
	"fmt"
	"time"
)

// Status represents the health status of a component.
//
// Statuses are ordered by severity, so the larger value is the worse one.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component is functioning but with issues.
	StatusDegraded
	// StatusUnhealthy indicates the component is not functioning properly.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "Healthy"
	case StatusDegraded:
		return "Degraded"
	case StatusUnhealthy:
		return "Unhealthy"
	default:
		return "Unknown"
	}
}

// ParseStatus parses the string form produced by Status.String.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "Healthy":
		return StatusHealthy, nil
	case "Degraded":
		return StatusDegraded, nil
	case "Unhealthy":
		return StatusUnhealthy, nil
	default:
		return 0, fmt.Errorf("health: unknown status %q", s)
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	if s < StatusHealthy || s > StatusUnhealthy {
		return nil, fmt.Errorf("health: unknown status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Worst returns the more severe of two statuses.
func Worst(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}

// Result contains the outcome of a health check.
type Result struct {
	// Status is the health status.
	Status Status

	// Description provides additional context about the status.
	Description string

	// Data contains arbitrary metadata about the check.
	Data map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check was performed.
	Timestamp time.Time

	// Error is the failure behind the status, if any.
	Error error

	// Tags are the categories of the entry that produced the result.
	Tags []string
}

// Healthy creates a healthy result.
func Healthy(description string) Result {
	return Result{
		Status:      StatusHealthy,
		Description: description,
		Timestamp:   time.Now(),
	}
}

// Degraded creates a degraded result.
func Degraded(description string) Result {
	return Result{
		Status:      StatusDegraded,
		Description: description,
		Timestamp:   time.Now(),
	}
}

// Unhealthy creates an unhealthy result.
func Unhealthy(description string, err error) Result {
	return Result{
		Status:      StatusUnhealthy,
		Description: description,
		Error:       err,
		Timestamp:   time.Now(),
	}
}

// WithData adds data to a result.
func (r Result) WithData(data map[string]any) Result {
	r.Data = data
	return r
}

// WithDuration sets the duration on a result.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// Checker is the interface for health checks.
type Checker interface {
	// Check performs the health check and returns the result.
	Check(ctx context.Context) Result
}

// CheckerFunc is an adapter to allow ordinary functions to be used as Checkers.
type CheckerFunc func(ctx context.Context) Result

// Check calls f(ctx).
func (f CheckerFunc) Check(ctx context.Context) Result {
	return f(ctx)
}

// PingFunc adapts a function that only reports reachability. A nil error is
// healthy; any error is unhealthy with the error text as description.
type PingFunc func(ctx context.Context) error

// Check calls f(ctx) and converts the error into a Result.
func (f PingFunc) Check(ctx context.Context) Result {
	if err := f(ctx); err != nil {
		return Unhealthy(err.Error(), err)
	}
	return Healthy("")
}

// Static returns a checker that always reports the given status.
func Static(status Status, description string) Checker {
	return CheckerFunc(func(context.Context) Result {
		return Result{
			Status:      status,
			Description: description,
			Timestamp:   time.Now(),
		}
	})
}
