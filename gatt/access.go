package gatt

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrCharacteristicNotFound is returned when a UUID is not part of the resolved
// characteristic set.
var ErrCharacteristicNotFound = errors.New("characteristic not found")

// NotificationHandler receives the raw value of a characteristic notification.
// Handlers are invoked from the transport's delivery goroutine and must not block.
type NotificationHandler func(value []byte)

// CharacteristicAccess is the capability to use characteristics of one
// connected peripheral.
type CharacteristicAccess interface {
	// ReadCharacteristic returns the current value of a characteristic.
	ReadCharacteristic(ctx context.Context, id uuid.UUID) ([]byte, error)

	// WriteCharacteristic writes value to a characteristic and waits for the write to complete.
	WriteCharacteristic(ctx context.Context, id uuid.UUID, value []byte) error

	// Subscribe enables notifications on a characteristic and delivers each one to handler.
	Subscribe(ctx context.Context, id uuid.UUID, handler NotificationHandler) error
}

// baseUUID is the Bluetooth base UUID 00000000-0000-1000-8000-00805f9b34fb.
var baseUUID = uuid.UUID{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
	0x80, 0x00, 0x00, 0x80, 0x5f, 0x9b, 0x34, 0xfb,
}

// UUID16 expands a 16-bit SIG assigned number into a full UUID.
func UUID16(short uint16) uuid.UUID {
	id := baseUUID
	id[2] = byte(short >> 8)
	id[3] = byte(short)
	return id
}

// NotFoundError wraps ErrCharacteristicNotFound with the missing UUID.
func NotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: %s", ErrCharacteristicNotFound, id)
}
