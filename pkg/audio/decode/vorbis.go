// ABOUTME: Ogg Vorbis audio decoder
// ABOUTME: Decodes Vorbis streams via jfreymuth/oggvorbis
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
)

// Vorbis decodes Ogg Vorbis files
type Vorbis struct{}

// Decode converts an Ogg Vorbis stream to PCM
func (Vorbis) Decode(r io.Reader) (*audio.PCM, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis decode error: %w", err)
	}

	samples := make([]int32, len(data))
	for i, v := range data {
		samples[i] = audio.SampleFromFloat(float64(v))
	}

	return &audio.PCM{
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		Samples:    samples,
	}, nil
}
