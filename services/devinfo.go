package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/moffa90/go-legacydfu/gatt"
)

// DeviceInfo holds the Device Information service strings. Fields the device
// does not expose are empty.
type DeviceInfo struct {
	Manufacturer     string
	Model            string
	Serial           string
	FirmwareRevision string
	HardwareRevision string
	SoftwareRevision string
}

// DeviceInformation reads the Device Information service (0x180A).
type DeviceInformation struct {
	access gatt.CharacteristicAccess
}

// NewDeviceInformation wraps access.
func NewDeviceInformation(access gatt.CharacteristicAccess) *DeviceInformation {
	return &DeviceInformation{access: access}
}

// Read reads every device information string.
func (d *DeviceInformation) Read(ctx context.Context) (*DeviceInfo, error) {
	info := &DeviceInfo{}
	fields := []struct {
		id  uuid.UUID
		dst *string
	}{
		{ManufacturerNameUUID, &info.Manufacturer},
		{ModelNumberUUID, &info.Model},
		{SerialNumberUUID, &info.Serial},
		{FirmwareRevisionUUID, &info.FirmwareRevision},
		{HardwareRevisionUUID, &info.HardwareRevision},
		{SoftwareRevisionUUID, &info.SoftwareRevision},
	}

	for _, f := range fields {
		v, err := d.readString(ctx, f.id)
		if errors.Is(err, gatt.ErrCharacteristicNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	return info, nil
}

// FirmwareRevision reads the firmware revision string.
func (d *DeviceInformation) FirmwareRevision(ctx context.Context) (string, error) {
	return d.readString(ctx, FirmwareRevisionUUID)
}

func (d *DeviceInformation) readString(ctx context.Context, id uuid.UUID) (string, error) {
	v, err := d.access.ReadCharacteristic(ctx, id)
	if err != nil {
		return "", fmt.Errorf("read device information %s: %w", id, err)
	}
	return strings.TrimRight(string(v), "\x00"), nil
}
