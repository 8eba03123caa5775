// ABOUTME: Tests for the Ogg Vorbis decoder
// ABOUTME: Verifies malformed input is rejected with an error
package decode

import (
	"bytes"
	"strings"
	"testing"
)

func TestVorbisRejectsGarbage(t *testing.T) {
	inputs := map[string][]byte{
		"empty":          nil,
		"text":           []byte("definitely not an ogg container"),
		"truncated page": []byte("OggS\x00\x02"),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Vorbis{}.Decode(bytes.NewReader(data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "vorbis") {
				t.Errorf("expected vorbis in error, got %v", err)
			}
		})
	}
}
