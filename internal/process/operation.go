package process

import (
	"fmt"

	"github.com/giantswarm/pgenv/internal/pgerr"
	"github.com/giantswarm/pgenv/internal/sentinel"
)

// Operation identifies which postgresql command a Run call executes. It
// selects the name used in logs and errors and the failure kind.
type Operation int

// Supported operations.
const (
	OpInitDB Operation = iota + 1
	OpStart
	OpStop
)

type opDescriptor struct {
	name string
	kind sentinel.Error
}

var operations = map[Operation]opDescriptor{
	OpInitDB: {name: "initdb", kind: pgerr.ErrInitFailure},
	OpStart:  {name: "start", kind: pgerr.ErrStartFailure},
	OpStop:   {name: "stop", kind: pgerr.ErrStopFailure},
}

// String returns the operation name ("initdb", "start" or "stop").
func (o Operation) String() string {
	if d, ok := operations[o]; ok {
		return d.name
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// FailureKind returns the error kind reported when o fails.
func (o Operation) FailureKind() sentinel.Error {
	if d, ok := operations[o]; ok {
		return d.kind
	}
	return pgerr.ErrStartFailure
}
