package protocol

import "fmt"

// EventKind classifies a control point notification.
type EventKind int

const (
	// EventUnrecognized is any notification not matching a known pattern
	EventUnrecognized EventKind = iota

	// EventStartDfuAck is 10 01 01
	EventStartDfuAck

	// EventInitPacketAck is 10 02 01
	EventInitPacketAck

	// EventReceiveImageAck is 10 03 01, sent once the whole image is received
	EventReceiveImageAck

	// EventValidateAck is 10 04 01
	EventValidateAck

	// EventActivateAck is 10 05 01
	EventActivateAck

	// EventChunkAck is 11 + u32le bytes received
	EventChunkAck

	// EventErrorResponse is 10 <opcode> <status> with a status other than success
	EventErrorResponse
)

var eventKindNames = map[EventKind]string{
	EventUnrecognized:    "unrecognized",
	EventStartDfuAck:     "start_dfu_ack",
	EventInitPacketAck:   "init_packet_ack",
	EventReceiveImageAck: "receive_image_ack",
	EventValidateAck:     "validate_ack",
	EventActivateAck:     "activate_ack",
	EventChunkAck:        "chunk_ack",
	EventErrorResponse:   "error_response",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event_kind(%d)", int(k))
}

// Event is a classified control point notification.
type Event struct {
	// Kind is the notification class
	Kind EventKind

	// Offset is the number of image bytes the device has received (EventChunkAck only)
	Offset uint32

	// Opcode is the request opcode a response refers to (EventErrorResponse only)
	Opcode byte

	// Status is the response status code (EventErrorResponse only)
	Status byte

	// Raw is the notification payload as received
	Raw []byte
}

func (e Event) String() string {
	switch e.Kind {
	case EventChunkAck:
		return fmt.Sprintf("%s(offset=%d)", e.Kind, e.Offset)
	case EventErrorResponse:
		return fmt.Sprintf("%s(opcode=0x%02X, status=%s)", e.Kind, e.Opcode, StatusName(e.Status))
	case EventUnrecognized:
		return fmt.Sprintf("%s(%s)", e.Kind, HexDump(e.Raw))
	default:
		return e.Kind.String()
	}
}
