package protocol

import (
	"errors"
	"fmt"
)

// ErrProtocol is matched by every error describing a device that broke the
// DFU protocol.
var ErrProtocol = errors.New("dfu protocol error")

// UnrecognizedError reports a notification that matches no known pattern.
type UnrecognizedError struct {
	Raw []byte
}

func (e *UnrecognizedError) Error() string {
	return fmt.Sprintf("unrecognized notification: %s", HexDump(e.Raw))
}

func (e *UnrecognizedError) Is(target error) bool { return target == ErrProtocol }

// OffsetMismatchError reports a packet receipt notification whose offset does
// not equal the number of bytes sent.
type OffsetMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *OffsetMismatchError) Error() string {
	return fmt.Sprintf("offset mismatch: sent %d bytes, device acknowledged %d", e.Expected, e.Actual)
}

func (e *OffsetMismatchError) Is(target error) bool { return target == ErrProtocol }

// DeviceError reports a response notification carrying a failure status.
type DeviceError struct {
	// Opcode is the request the device rejected
	Opcode byte

	// Status is the status code from the response
	Status byte
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%02X)", OpcodeName(e.Opcode), StatusName(e.Status), e.Status)
}

func (e *DeviceError) Is(target error) bool { return target == ErrProtocol }

// IsProtocolError returns true if err is or wraps a protocol error.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrProtocol)
}

// StatusName returns a human-readable name for a response status code.
func StatusName(code byte) string {
	switch code {
	case StatusSuccess:
		return "success"
	case StatusInvalidState:
		return "invalid state"
	case StatusNotSupported:
		return "not supported"
	case StatusDataSizeExceedsLimit:
		return "data size exceeds limit"
	case StatusCRCError:
		return "CRC error"
	case StatusOperationFailed:
		return "operation failed"
	default:
		return fmt.Sprintf("unknown status code 0x%02X", code)
	}
}

// OpcodeName returns a human-readable name for a control point opcode.
func OpcodeName(op byte) string {
	switch op {
	case OpStartDfu:
		return "start DFU"
	case OpInitDfuParams:
		return "init DFU parameters"
	case OpReceiveFirmwareImage:
		return "receive firmware image"
	case OpValidateFirmware:
		return "validate firmware"
	case OpActivateAndReset:
		return "activate and reset"
	case OpReset:
		return "reset"
	case OpPacketReceiptNotifRequest:
		return "packet receipt notification request"
	default:
		return fmt.Sprintf("opcode 0x%02X", op)
	}
}

// UnexpectedEventError reports a notification that is not valid in the
// session's current state. It unwraps to *UnrecognizedError when the
// notification matched no known pattern.
type UnexpectedEventError struct {
	State string
	Event Event
}

func (e *UnexpectedEventError) Error() string {
	return fmt.Sprintf("unexpected event %s in state %s", e.Event, e.State)
}

func (e *UnexpectedEventError) Is(target error) bool { return target == ErrProtocol }

func (e *UnexpectedEventError) Unwrap() error {
	if e.Event.Kind == EventUnrecognized {
		return &UnrecognizedError{Raw: e.Event.Raw}
	}
	return nil
}
