package pgerr

import (
	"strings"

	"github.com/giantswarm/pgenv/internal/sentinel"
)

// Compile-time interface satisfaction check.
var _ error = (*Error)(nil)

// Error is a failure of one kind, optionally tied to a path or an operation.
//
// Unwrap exposes both Kind and Err, so errors.Is matches the kind as well as
// any cause in the chain (for example fs.ErrNotExist or ErrTimeout).
type Error struct {
	Kind sentinel.Error
	Op   string // operation name, e.g. "initdb" or "start"; may be empty
	Path string // offending path; may be empty
	Err  error  // underlying cause; may be nil
}

// New returns an *Error of the given kind wrapping err.
func New(kind sentinel.Error, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// WithPath returns an *Error of the given kind for path, wrapping err.
func WithPath(kind sentinel.Error, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// Error formats the kind followed by the operation, path and cause when set.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(" (")
		b.WriteString(e.Op)
		b.WriteString(")")
	}
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the kind and, when present, the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
