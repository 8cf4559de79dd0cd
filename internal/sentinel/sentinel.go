// Package sentinel provides a string error type usable in const blocks.
package sentinel

var _ error = Error("")

// Error is a comparable error value. Declared as a const it cannot be
// reassigned, and errors.Is finds it through %w wraps and errors.Join.
type Error string

func (e Error) Error() string { return string(e) }
