// ABOUTME: Raw PCM audio decoder
// ABOUTME: Decodes headerless 16-bit and 24-bit little-endian PCM
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
)

// Raw decodes headerless PCM whose format is known up front
type Raw struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Decode converts PCM bytes to int32 samples
func (d Raw) Decode(r io.Reader) (*audio.PCM, error) {
	if d.BitDepth != 16 && d.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", d.BitDepth)
	}
	if d.Channels < 1 || d.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid raw format: %d Hz, %d channels", d.SampleRate, d.Channels)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read pcm: %w", err)
	}

	var samples []int32
	if d.BitDepth == 24 {
		// 24-bit PCM: 3 bytes per sample
		numSamples := len(data) / 3
		samples = make([]int32, numSamples)
		for i := 0; i < numSamples; i++ {
			b := [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
			samples[i] = audio.SampleFrom24Bit(b)
		}
	} else {
		numSamples := len(data) / 2
		samples = make([]int32, numSamples)
		for i := 0; i < numSamples; i++ {
			sample16 := int16(binary.LittleEndian.Uint16(data[i*2:]))
			samples[i] = audio.SampleFromInt16(sample16)
		}
	}

	// Drop a trailing partial frame
	samples = samples[:len(samples)-len(samples)%d.Channels]

	return &audio.PCM{
		SampleRate: d.SampleRate,
		Channels:   d.Channels,
		Samples:    samples,
	}, nil
}
