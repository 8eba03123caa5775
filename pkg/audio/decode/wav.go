// ABOUTME: WAV audio decoder
// ABOUTME: Decodes 8/16/24/32-bit PCM WAV files via go-audio/wav
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned when the RIFF header is not a WAV file
var ErrInvalidWAV = errors.New("not a valid wav file")

// WAV decodes RIFF/WAVE PCM files
type WAV struct{}

// Decode converts a WAV file to PCM
func (WAV) Decode(r io.Reader) (*audio.PCM, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read wav: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	d := wav.NewDecoder(rs)
	if !d.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav decode error: %w", err)
	}

	depth := int(d.BitDepth)
	samples := make([]int32, len(buf.Data))
	for i, v := range buf.Data {
		s, err := scaleTo24(v, depth)
		if err != nil {
			return nil, err
		}
		samples[i] = s
	}

	return &audio.PCM{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		Samples:    samples,
	}, nil
}

// scaleTo24 moves an integer sample of the given depth into 24-bit range
func scaleTo24(v, depth int) (int32, error) {
	switch depth {
	case 8:
		// 8-bit WAV is unsigned
		return int32(v-128) << 16, nil
	case 16:
		return int32(v) << 8, nil
	case 24:
		return int32(v), nil
	case 32:
		return int32(v >> 8), nil
	default:
		return 0, fmt.Errorf("unsupported bit depth: %d", depth)
	}
}
