package resilience

import "errors"

// ErrTimeout is returned when an operation times out.
var ErrTimeout = errors.New("resilience: operation timed out")
