package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildStartDfuCmd constructs the Start DFU command for an application image.
//
// Payload:
//
//	[0x01][0x04]
func BuildStartDfuCmd() []byte {
	return []byte{OpStartDfu, ImageTypeApplication}
}

// BuildImageSizeRecord constructs the 12-byte size record written to the packet
// characteristic after Start DFU. The soft device and bootloader sizes are zero.
//
// Payload:
//
//	[SD_SIZE(4)=0][BL_SIZE(4)=0][APP_SIZE(4) LE]
func BuildImageSizeRecord(appLen int) []byte {
	record := make([]byte, SizeRecordLength)
	binary.LittleEndian.PutUint32(record[8:], uint32(appLen))
	return record
}

// BuildInitBeginCmd constructs the command announcing the init packet.
func BuildInitBeginCmd() []byte {
	return []byte{OpInitDfuParams, InitBegin}
}

// BuildInitCompleteCmd constructs the command closing the init packet.
func BuildInitCompleteCmd() []byte {
	return []byte{OpInitDfuParams, InitComplete}
}

// BuildSetPRNCmd constructs the packet receipt notification request.
// The interval must fit in the single byte the legacy bootloader reads.
func BuildSetPRNCmd(interval int) ([]byte, error) {
	if interval < 1 || interval > 0xFF {
		return nil, fmt.Errorf("PRN interval must be between 1 and 255, got %d", interval)
	}
	return []byte{OpPacketReceiptNotifRequest, byte(interval)}, nil
}

// BuildReceiveImageCmd constructs the command that enters image receive mode.
func BuildReceiveImageCmd() []byte {
	return []byte{OpReceiveFirmwareImage}
}

// BuildValidateCmd constructs the validate firmware command.
func BuildValidateCmd() []byte {
	return []byte{OpValidateFirmware}
}

// BuildActivateAndResetCmd constructs the activate and reset command.
func BuildActivateAndResetCmd() []byte {
	return []byte{OpActivateAndReset}
}
