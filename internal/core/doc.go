// Package core provides the internal implementation of pgenv.
//
// Its central type, Controller, owns one postgresql instance: the derived
// file layout (Paths), the server Status state machine, and the calls into
// the binaries cache, the command executor and the database client. Every
// lifecycle transition is driven by a static operation table; a failed
// command moves the controller to StatusFailure, which is terminal.
package core
