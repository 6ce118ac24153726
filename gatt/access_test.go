package gatt

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestUUID16(t *testing.T) {
	tests := []struct {
		short uint16
		want  string
	}{
		{0x180f, "0000180f-0000-1000-8000-00805f9b34fb"},
		{0x2a19, "00002a19-0000-1000-8000-00805f9b34fb"},
		{0x2a2b, "00002a2b-0000-1000-8000-00805f9b34fb"},
		{0xffff, "0000ffff-0000-1000-8000-00805f9b34fb"},
	}

	for _, tt := range tests {
		got := UUID16(tt.short)
		if got != uuid.MustParse(tt.want) {
			t.Errorf("UUID16(0x%04x) = %s, want %s", tt.short, got, tt.want)
		}
	}
}

func TestNotFoundError(t *testing.T) {
	id := UUID16(0x2a19)
	err := NotFoundError(id)

	if !errors.Is(err, ErrCharacteristicNotFound) {
		t.Fatalf("errors.Is(%v, ErrCharacteristicNotFound) = false", err)
	}
	if want := "characteristic not found: " + id.String(); err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
