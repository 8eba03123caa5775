// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 audio to int32 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3 decodes MP3 audio. go-mp3 always produces 16-bit stereo.
type MP3 struct{}

// Decode converts an MP3 stream to PCM
func (MP3) Decode(r io.Reader) (*audio.PCM, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("mp3 stream has no audio frames")
	}

	// Convert bytes to int16 then to int32
	numSamples := len(data) / 2
	samples := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = audio.SampleFromInt16(sample16)
	}

	return &audio.PCM{
		SampleRate: decoder.SampleRate(),
		Channels:   2,
		Samples:    samples,
	}, nil
}
