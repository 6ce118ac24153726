package services

import "github.com/moffa90/go-legacydfu/gatt"

// Service UUIDs.
var (
	DeviceInformationUUID = gatt.UUID16(0x180a)
	BatteryUUID           = gatt.UUID16(0x180f)
	CurrentTimeUUID       = gatt.UUID16(0x1805)
	AlertNotificationUUID = gatt.UUID16(0x1811)
)

// Characteristic UUIDs.
var (
	ManufacturerNameUUID = gatt.UUID16(0x2a29)
	ModelNumberUUID      = gatt.UUID16(0x2a24)
	SerialNumberUUID     = gatt.UUID16(0x2a25)
	FirmwareRevisionUUID = gatt.UUID16(0x2a26)
	HardwareRevisionUUID = gatt.UUID16(0x2a27)
	SoftwareRevisionUUID = gatt.UUID16(0x2a28)

	BatteryLevelUUID = gatt.UUID16(0x2a19)

	CurrentTimeCharUUID = gatt.UUID16(0x2a2b)

	NewAlertUUID = gatt.UUID16(0x2a46)
)
