package checks

import "errors"

var (
	// ErrUnknownType indicates a check definition with an unsupported type.
	ErrUnknownType = errors.New("checks: unknown check type")

	// ErrUnexpectedStatus indicates an HTTP dependency answered with the wrong status.
	ErrUnexpectedStatus = errors.New("checks: unexpected status code")

	// ErrInvalidDSN indicates a postgres connection string that could not be parsed.
	ErrInvalidDSN = errors.New("checks: invalid postgres dsn")

	// ErrUnreachable indicates a dependency could not be reached.
	ErrUnreachable = errors.New("checks: dependency unreachable")
)
