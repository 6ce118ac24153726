package services

import (
	"context"
	"fmt"

	"github.com/moffa90/go-legacydfu/gatt"
)

// Battery reads the Battery service (0x180F).
type Battery struct {
	access gatt.CharacteristicAccess
}

// NewBattery wraps access.
func NewBattery(access gatt.CharacteristicAccess) *Battery {
	return &Battery{access: access}
}

// Level returns the battery level in percent.
func (b *Battery) Level(ctx context.Context) (int, error) {
	v, err := b.access.ReadCharacteristic(ctx, BatteryLevelUUID)
	if err != nil {
		return 0, fmt.Errorf("read battery level: %w", err)
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("battery level: expected 1 byte, got %d", len(v))
	}
	if v[0] > 100 {
		return 0, fmt.Errorf("battery level out of range: %d", v[0])
	}
	return int(v[0]), nil
}
