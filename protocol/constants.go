package protocol

import "github.com/google/uuid"

// Legacy DFU service and characteristic UUIDs.
var (
	// ServiceUUID identifies the legacy DFU service
	ServiceUUID = uuid.MustParse("00001530-1212-efde-1523-785feabcd123")

	// ControlPointUUID is written with opcodes and notifies responses
	ControlPointUUID = uuid.MustParse("00001531-1212-efde-1523-785feabcd123")

	// PacketUUID receives the size record, init packet and image chunks
	PacketUUID = uuid.MustParse("00001532-1212-efde-1523-785feabcd123")

	// VersionUUID reports the bootloader DFU revision (optional characteristic)
	VersionUUID = uuid.MustParse("00001534-1212-efde-1523-785feabcd123")
)

// Control point opcodes.
const (
	// OpStartDfu starts a DFU procedure, followed by the image type
	OpStartDfu = 0x01

	// OpInitDfuParams brackets the init packet, followed by InitBegin or InitComplete
	OpInitDfuParams = 0x02

	// OpReceiveFirmwareImage switches the device into image receive mode
	OpReceiveFirmwareImage = 0x03

	// OpValidateFirmware asks the device to validate the received image
	OpValidateFirmware = 0x04

	// OpActivateAndReset activates the new image and resets the device
	OpActivateAndReset = 0x05

	// OpReset resets the device without activating
	OpReset = 0x06

	// OpPacketReceiptNotifRequest sets the packet receipt notification interval
	OpPacketReceiptNotifRequest = 0x08

	// OpResponse prefixes a response notification: 10 <opcode> <status>
	OpResponse = 0x10

	// OpPacketReceiptNotification prefixes a chunk ack: 11 <u32le offset>
	OpPacketReceiptNotification = 0x11
)

// Image types for OpStartDfu.
const (
	ImageTypeSoftDevice  = 0x01
	ImageTypeBootloader  = 0x02
	ImageTypeApplication = 0x04
)

// Init packet sub-opcodes for OpInitDfuParams.
const (
	InitBegin    = 0x00
	InitComplete = 0x01
)

// Response status codes, third byte of a 10 xx yy notification.
const (
	// StatusSuccess indicates the operation succeeded
	StatusSuccess = 0x01

	// StatusInvalidState indicates the opcode is not allowed in the current state
	StatusInvalidState = 0x02

	// StatusNotSupported indicates the opcode or image type is not supported
	StatusNotSupported = 0x03

	// StatusDataSizeExceedsLimit indicates the image does not fit
	StatusDataSizeExceedsLimit = 0x04

	// StatusCRCError indicates the image CRC did not match the init packet
	StatusCRCError = 0x05

	// StatusOperationFailed indicates a generic device side failure
	StatusOperationFailed = 0x06
)

// Transfer defaults.
const (
	// DefaultChunkSize is the image chunk size, one ATT write with the default MTU
	DefaultChunkSize = 20

	// DefaultPRNInterval is the number of chunks between packet receipt notifications
	DefaultPRNInterval = 10

	// SizeRecordLength is the length of the image size record
	SizeRecordLength = 12

	// ChunkAckLength is the length of a packet receipt notification
	ChunkAckLength = 5

	// ResponseLength is the length of a 10 xx yy response notification
	ResponseLength = 3
)
