// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all clip decoders and extension lookup
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
)

// ErrUnsupportedFormat is returned for files no decoder handles
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decoder decodes a complete encoded clip to PCM
type Decoder interface {
	Decode(r io.Reader) (*audio.PCM, error)
}

// Lookup picks a decoder for a file path
type Lookup func(path string) (Decoder, error)

// ForPath selects a decoder by file extension
func ForPath(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".mp3":
		return MP3{}, nil
	case ".wav", ".wave":
		return WAV{}, nil
	case ".ogg", ".oga":
		return Vorbis{}, nil
	case ".flac":
		return FLAC{}, nil
	default:
		return nil, fmt.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}
}

// File decodes the file at path using ForPath
func File(path string) (*audio.PCM, error) {
	return FileWith(path, ForPath)
}

// FileWith decodes the file at path using a custom lookup
func FileWith(path string, lookup Lookup) (*audio.PCM, error) {
	dec, err := lookup(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	pcm, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return pcm, nil
}
