package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestProtocolErrorsMatchSentinel(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unrecognized", &UnrecognizedError{Raw: []byte{0x20, 0x01}}},
		{"offset mismatch", &OffsetMismatchError{Expected: 200, Actual: 180}},
		{"device", &DeviceError{Opcode: OpValidateFirmware, Status: StatusCRCError}},
		{"unexpected event", &UnexpectedEventError{State: "transferring", Event: Event{Kind: EventStartDfuAck}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("run: %w", tt.err)
			if !IsProtocolError(wrapped) {
				t.Errorf("IsProtocolError(%v) = false", wrapped)
			}
		})
	}

	if IsProtocolError(errors.New("write failed")) {
		t.Error("IsProtocolError matched a plain error")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&UnrecognizedError{Raw: []byte{0x20, 0x01}}, "unrecognized notification: 20 01"},
		{&OffsetMismatchError{Expected: 200, Actual: 180}, "offset mismatch: sent 200 bytes, device acknowledged 180"},
		{&DeviceError{Opcode: OpValidateFirmware, Status: StatusCRCError}, "validate firmware failed: CRC error (0x05)"},
		{&DeviceError{Opcode: 0x42, Status: 0x09}, "opcode 0x42 failed: unknown status code 0x09 (0x09)"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestUnexpectedEventUnwrap(t *testing.T) {
	err := &UnexpectedEventError{
		State: "awaiting_init_complete_ack",
		Event: ParseNotification([]byte{0x20, 0x01}),
	}

	var unrec *UnrecognizedError
	if !errors.As(err, &unrec) {
		t.Fatalf("errors.As(%v, *UnrecognizedError) = false", err)
	}
	if HexDump(unrec.Raw) != "20 01" {
		t.Errorf("Raw = % X, want 20 01", unrec.Raw)
	}

	known := &UnexpectedEventError{State: "transferring", Event: Event{Kind: EventStartDfuAck}}
	if errors.As(known, &unrec) {
		t.Error("known event should not unwrap to UnrecognizedError")
	}
}
