// ABOUTME: Tests for the FLAC decoder
// ABOUTME: Verifies sample scaling and rejection of malformed streams
package decode

import (
	"bytes"
	"testing"
)

func TestFLACRejectsGarbage(t *testing.T) {
	inputs := map[string][]byte{
		"empty":         nil,
		"text":          []byte("definitely not a flac stream"),
		"bad signature": []byte("fLaX\x00\x00\x00\x22"),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := (FLAC{}).Decode(bytes.NewReader(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFLACTo24(t *testing.T) {
	tests := []struct {
		name   string
		sample int32
		depth  int
		want   int32
	}{
		{"16-bit max", 32767, 16, 32767 << 8},
		{"16-bit min", -32768, 16, -32768 << 8},
		{"24-bit passthrough", 1234567, 24, 1234567},
		{"8-bit", 100, 8, 100 << 16},
		{"32-bit", 1 << 30, 32, 1 << 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flacTo24(tt.sample, tt.depth); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
