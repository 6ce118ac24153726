package protocol

import "testing"

func TestCalculateImageCRC(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		// CRC-16/CCITT-FALSE check value
		{"check string", []byte("123456789"), 0x29B1},
		{"empty", nil, 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateImageCRC(tt.data); got != tt.want {
				t.Errorf("CalculateImageCRC() = 0x%04X, want 0x%04X", got, tt.want)
			}
		})
	}
}
