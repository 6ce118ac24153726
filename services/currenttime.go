package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/moffa90/go-legacydfu/gatt"
)

// CurrentTimeLength is the size of a Current Time characteristic value.
const CurrentTimeLength = 10

// AdjustManualUpdate is the adjust reason flag for a manual time update.
const AdjustManualUpdate = 0x01

// CurrentTime reads and sets the Current Time service (0x1805).
type CurrentTime struct {
	access gatt.CharacteristicAccess
}

// NewCurrentTime wraps access.
func NewCurrentTime(access gatt.CharacteristicAccess) *CurrentTime {
	return &CurrentTime{access: access}
}

// Set writes t to the device.
func (c *CurrentTime) Set(ctx context.Context, t time.Time) error {
	if err := c.access.WriteCharacteristic(ctx, CurrentTimeCharUUID, EncodeCurrentTime(t)); err != nil {
		return fmt.Errorf("write current time: %w", err)
	}
	return nil
}

// Get reads the device time. The device does not report a zone; the result
// is in loc.
func (c *CurrentTime) Get(ctx context.Context, loc *time.Location) (time.Time, error) {
	v, err := c.access.ReadCharacteristic(ctx, CurrentTimeCharUUID)
	if err != nil {
		return time.Time{}, fmt.Errorf("read current time: %w", err)
	}
	return DecodeCurrentTime(v, loc)
}

// EncodeCurrentTime builds the Current Time value for t's wall clock.
//
// Layout:
//
//	[YEAR(2) LE][MONTH][DAY][HOUR][MIN][SEC][WEEKDAY 1=Mon..7=Sun][FRACTIONS256][ADJUST_REASON]
func EncodeCurrentTime(t time.Time) []byte {
	v := make([]byte, CurrentTimeLength)
	binary.LittleEndian.PutUint16(v[0:2], uint16(t.Year()))
	v[2] = byte(t.Month())
	v[3] = byte(t.Day())
	v[4] = byte(t.Hour())
	v[5] = byte(t.Minute())
	v[6] = byte(t.Second())

	weekday := t.Weekday()
	if weekday == time.Sunday {
		v[7] = 7
	} else {
		v[7] = byte(weekday)
	}

	v[8] = byte(t.Nanosecond() / 1e6 * 256 / 1000)
	v[9] = AdjustManualUpdate
	return v
}

// DecodeCurrentTime parses a Current Time value.
func DecodeCurrentTime(v []byte, loc *time.Location) (time.Time, error) {
	if len(v) < CurrentTimeLength-1 {
		return time.Time{}, fmt.Errorf("current time: expected at least %d bytes, got %d", CurrentTimeLength-1, len(v))
	}
	if loc == nil {
		loc = time.Local
	}

	year := int(binary.LittleEndian.Uint16(v[0:2]))
	ms := int(v[8]) * 1000 / 256
	return time.Date(year, time.Month(v[2]), int(v[3]), int(v[4]), int(v[5]), int(v[6]), ms*int(time.Millisecond), loc), nil
}
