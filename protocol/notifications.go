package protocol

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// successResponses maps the opcode of a 10 xx 01 response to its event kind.
var successResponses = map[byte]EventKind{
	OpStartDfu:             EventStartDfuAck,
	OpInitDfuParams:        EventInitPacketAck,
	OpReceiveFirmwareImage: EventReceiveImageAck,
	OpValidateFirmware:     EventValidateAck,
	OpActivateAndReset:     EventActivateAck,
}

// ParseNotification classifies a raw control point notification.
// ParseNotification never fails; payloads that match no known pattern become
// EventUnrecognized with Raw preserved.
//
// Recognized formats:
//
//	[0x10][OPCODE][STATUS]      response (3 bytes)
//	[0x11][OFFSET(4) LE]        packet receipt notification (5 bytes)
func ParseNotification(raw []byte) Event {
	ev := Event{Kind: EventUnrecognized, Raw: make([]byte, len(raw))}
	copy(ev.Raw, raw)

	switch {
	case len(raw) == ResponseLength && raw[0] == OpResponse:
		if raw[2] == StatusSuccess {
			if kind, ok := successResponses[raw[1]]; ok {
				ev.Kind = kind
			}
			return ev
		}
		ev.Kind = EventErrorResponse
		ev.Opcode = raw[1]
		ev.Status = raw[2]

	case len(raw) == ChunkAckLength && raw[0] == OpPacketReceiptNotification:
		ev.Kind = EventChunkAck
		ev.Offset = binary.LittleEndian.Uint32(raw[1:])
	}

	return ev
}

// HexDump formats a payload as space separated hex bytes, e.g. "10 01 01".
func HexDump(data []byte) string {
	if len(data) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}
