// ABOUTME: Shared options for the software backends
// ABOUTME: Output format and voice limits
package backend

import "time"

// Options configures the oto and beep backends
type Options struct {
	SampleRate int
	Channels   int           // output channels, 1 or 2
	BufferSize time.Duration // device buffer length
	MaxVoices  int           // <= 0 means unlimited
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = 44100
	}
	if o.Channels != 1 {
		o.Channels = 2
	}
	if o.BufferSize <= 0 {
		o.BufferSize = 50 * time.Millisecond
	}
	return o
}
