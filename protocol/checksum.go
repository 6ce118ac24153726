package protocol

import "github.com/sigurn/crc16"

// crcTable is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF), the checksum the
// legacy bootloader stores in the init packet.
var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// CalculateImageCRC computes the CRC16 of an application image as the legacy
// bootloader verifies it.
func CalculateImageCRC(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}
