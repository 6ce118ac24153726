package firmware

import (
	"encoding/binary"
	"fmt"
)

// InitPacket is the decoded legacy (CRC16) init packet.
//
// Layout, all fields little-endian:
//
//	[DEVICE_TYPE(2)][DEVICE_REV(2)][APP_VERSION(4)][SD_COUNT(2)][SD_REQ(2*n)][CRC16(2)]
type InitPacket struct {
	// DeviceType is the device type the image targets (0xFFFF for any)
	DeviceType uint16

	// DeviceRevision is the device revision the image targets (0xFFFF for any)
	DeviceRevision uint16

	// AppVersion is the application version (0xFFFFFFFF for any)
	AppVersion uint32

	// SoftDevices lists the soft device firmware IDs the image is compatible with
	SoftDevices []uint16

	// ImageCRC is the CRC16 of the application image
	ImageCRC uint16
}

// initPacketFixedSize covers every field except the soft device list.
const initPacketFixedSize = 12

// ParseInitPacket decodes a legacy init packet.
// Returns *ValidationError when the data does not have the CRC16 layout.
func ParseInitPacket(data []byte) (*InitPacket, error) {
	if len(data) < initPacketFixedSize {
		return nil, &ValidationError{
			Field:  "init packet",
			Reason: fmt.Sprintf("too short: got %d bytes, minimum is %d", len(data), initPacketFixedSize),
		}
	}

	count := int(binary.LittleEndian.Uint16(data[8:10]))
	want := initPacketFixedSize + 2*count
	if len(data) != want {
		return nil, &ValidationError{
			Field:  "init packet",
			Reason: fmt.Sprintf("length mismatch: got %d bytes, expected %d for %d soft devices", len(data), want, count),
		}
	}

	info := &InitPacket{
		DeviceType:     binary.LittleEndian.Uint16(data[0:2]),
		DeviceRevision: binary.LittleEndian.Uint16(data[2:4]),
		AppVersion:     binary.LittleEndian.Uint32(data[4:8]),
		SoftDevices:    make([]uint16, count),
	}
	for i := range info.SoftDevices {
		off := 10 + 2*i
		info.SoftDevices[i] = binary.LittleEndian.Uint16(data[off : off+2])
	}
	info.ImageCRC = binary.LittleEndian.Uint16(data[want-2:])

	return info, nil
}
