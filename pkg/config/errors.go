package config

import "go.uber.org/multierr"

// Error reports invalid or contradictory options. It is returned before any
// traversal starts and carries every problem found, not just the first.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "invalid configuration: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Problems returns the individual validation failures.
func (e *Error) Problems() []error {
	return multierr.Errors(e.Err)
}
