package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFixedCommands(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"start dfu", BuildStartDfuCmd(), []byte{0x01, 0x04}},
		{"init begin", BuildInitBeginCmd(), []byte{0x02, 0x00}},
		{"init complete", BuildInitCompleteCmd(), []byte{0x02, 0x01}},
		{"receive image", BuildReceiveImageCmd(), []byte{0x03}},
		{"validate", BuildValidateCmd(), []byte{0x04}},
		{"activate and reset", BuildActivateAndResetCmd(), []byte{0x05}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildImageSizeRecord(t *testing.T) {
	tests := []struct {
		name   string
		appLen int
		want   []byte
	}{
		{
			name:   "small image",
			appLen: 47,
			want:   []byte{0, 0, 0, 0, 0, 0, 0, 0, 0x2F, 0x00, 0x00, 0x00},
		},
		{
			name:   "multi byte length",
			appLen: 0x0003A2C4,
			want:   []byte{0, 0, 0, 0, 0, 0, 0, 0, 0xC4, 0xA2, 0x03, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildImageSizeRecord(tt.appLen)
			if len(got) != SizeRecordLength {
				t.Fatalf("len = %d, want %d", len(got), SizeRecordLength)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("size record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildSetPRNCmd(t *testing.T) {
	tests := []struct {
		name     string
		interval int
		want     []byte
		wantErr  bool
	}{
		{"default interval", 10, []byte{0x08, 0x0A}, false},
		{"minimum", 1, []byte{0x08, 0x01}, false},
		{"maximum", 255, []byte{0x08, 0xFF}, false},
		{"zero", 0, nil, true},
		{"too large", 256, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSetPRNCmd(tt.interval)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BuildSetPRNCmd(%d) error = %v, wantErr %v", tt.interval, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("payload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
