// Package sentinel provides an immutable error type for sentinel error declarations.
//
// Error kinds such as "invalid postgresql package" are compared with errors.Is
// throughout pgenv. Declaring them with errors.New would make them mutable
// package variables; Error is a string type, so kinds can be declared as const
// while still matching through wrapped error chains.
package sentinel
