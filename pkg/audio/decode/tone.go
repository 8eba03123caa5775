// ABOUTME: Sine tone generator
// ABOUTME: Builds PCM clips for demos and tests without asset files
package decode

import (
	"math"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
)

// Tone returns a mono sine wave at 50% amplitude
func Tone(frequency float64, d time.Duration, sampleRate int) *audio.PCM {
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	frames := int(d.Seconds() * float64(sampleRate))
	if frames < 0 {
		frames = 0
	}

	samples := make([]int32, frames)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = audio.SampleFromFloat(0.5 * math.Sin(2*math.Pi*frequency*t))
	}

	return &audio.PCM{
		SampleRate: sampleRate,
		Channels:   1,
		Samples:    samples,
	}
}
