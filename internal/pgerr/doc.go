// Package pgerr defines the error kinds reported by pgenv and the structured
// Error type that carries them together with the offending path, the
// operation that failed, and the underlying cause.
//
// Every failure surfaced by pgenv matches exactly one kind via errors.Is.
// Callers that need the path or the subprocess output use errors.As with
// *Error.
package pgerr
