package dfu

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/moffa90/go-legacydfu/protocol"
)

// ErrSessionUsed is returned by Run when the session has already been run.
var ErrSessionUsed = errors.New("dfu session already used")

// TransportError reports a failed read, write or subscribe on a characteristic.
type TransportError struct {
	// Op is the failed operation: "write", "read" or "subscribe"
	Op string

	// Characteristic is the UUID the operation addressed
	Characteristic uuid.UUID

	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, characteristicName(e.Characteristic), e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError reports a notification wait that was cancelled or expired.
// It unwraps to the context error.
type TimeoutError struct {
	// State is the session state that was waiting
	State string

	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for notification in state %s: %v", e.State, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func characteristicName(id uuid.UUID) string {
	switch id {
	case protocol.ControlPointUUID:
		return "control point"
	case protocol.PacketUUID:
		return "packet"
	default:
		return id.String()
	}
}
