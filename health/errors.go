package health

import "errors"

var (
	// ErrCheckFailed indicates a health check failed or panicked.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a health check exceeded its timeout.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrDuplicateName indicates a check with the same name is already registered.
	ErrDuplicateName = errors.New("health: duplicate check name")

	// ErrInvalidEntry indicates a registration with an empty name or nil checker.
	ErrInvalidEntry = errors.New("health: invalid check entry")

	// ErrFrozen indicates the registry no longer accepts registrations.
	ErrFrozen = errors.New("health: registry is frozen")
)
