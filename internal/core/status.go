package core

import (
	"fmt"

	"github.com/giantswarm/pgenv/internal/process"
)

// Status is the lifecycle state of a postgresql instance.
type Status int

const (
	StatusUninitialized Status = iota
	StatusInitializing
	StatusInitialized
	StatusStarting
	StatusStarted
	StatusStopping
	StatusStopped
	// StatusFailure follows any failed initdb or pg_ctl invocation and is
	// terminal: a new controller is needed to try again.
	StatusFailure
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "Uninitialized"
	case StatusInitializing:
		return "Initializing"
	case StatusInitialized:
		return "Initialized"
	case StatusStarting:
		return "Starting"
	case StatusStarted:
		return "Started"
	case StatusStopping:
		return "Stopping"
	case StatusStopped:
		return "Stopped"
	case StatusFailure:
		return "Failure"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// transition is the status entered while an operation runs and the status
// reached when it succeeds.
type transition struct {
	entry Status
	exit  Status
}

var transitions = map[process.Operation]transition{
	process.OpInitDB: {entry: StatusInitializing, exit: StatusInitialized},
	process.OpStart:  {entry: StatusStarting, exit: StatusStarted},
	process.OpStop:   {entry: StatusStopping, exit: StatusStopped},
}
