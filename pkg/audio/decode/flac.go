// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC audio to int32 samples via mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLAC decodes FLAC files
type FLAC struct{}

// Decode converts a FLAC stream to PCM
func (FLAC) Decode(r io.Reader) (*audio.PCM, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	var samples []int32
	if info.NSamples > 0 {
		samples = make([]int32, 0, int(info.NSamples)*channels)
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac frame error: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, flacTo24(frame.Subframes[ch].Samples[i], bitDepth))
			}
		}
	}

	return &audio.PCM{
		SampleRate: int(info.SampleRate),
		Channels:   channels,
		Samples:    samples,
	}, nil
}

// flacTo24 scales a FLAC sample of any depth into 24-bit range
func flacTo24(sample int32, bitDepth int) int32 {
	shift := bitDepth - 24
	if shift > 0 {
		return sample >> shift
	}
	return sample << -shift
}
