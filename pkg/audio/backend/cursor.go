// ABOUTME: Resampling read cursor over decoded PCM
// ABOUTME: Shared by the software backends to feed their output streams
package backend

import (
	"math"
	"sync"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
)

// cursor walks a PCM buffer at a fractional rate. The output goroutine of
// the audio library reads it while the game loop seeks or retunes it, so
// every access goes through mu.
type cursor struct {
	mu    sync.Mutex
	pcm   *audio.PCM
	pos   float64 // source frame position
	ratio float64 // source rate / output rate
	pitch float64
	pan   float64 // [-1, 1], applied by callers that pan themselves
	loop  bool
}

func newCursor(pcm *audio.PCM, outRate int) *cursor {
	ratio := 1.0
	if outRate > 0 && pcm.SampleRate > 0 {
		ratio = float64(pcm.SampleRate) / float64(outRate)
	}
	return &cursor{pcm: pcm, ratio: ratio, pitch: 1}
}

// next returns the next output frame. Caller holds mu.
func (c *cursor) next() (l, r float64, ok bool) {
	frames := c.pcm.Frames()
	if frames == 0 {
		return 0, 0, false
	}
	if c.pos >= float64(frames) {
		if !c.loop {
			return 0, 0, false
		}
		c.pos = math.Mod(c.pos, float64(frames))
	}

	i := int(c.pos)
	frac := c.pos - float64(i)
	j := i + 1
	if j >= frames {
		if c.loop {
			j = 0
		} else {
			j = i
		}
	}

	l0, r0 := c.sample(i)
	l1, r1 := c.sample(j)
	l = l0 + (l1-l0)*frac
	r = r0 + (r1-r0)*frac

	c.pos += c.ratio * c.pitch
	return l, r, true
}

func (c *cursor) sample(i int) (l, r float64) {
	ch := c.pcm.Channels
	l = audio.SampleToFloat(c.pcm.Samples[i*ch])
	if ch > 1 {
		r = audio.SampleToFloat(c.pcm.Samples[i*ch+1])
	} else {
		r = l
	}
	return l, r
}

func (c *cursor) setPitch(p float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p <= 0 {
		p = 1
	}
	c.pitch = p
}

func (c *cursor) setLoop(loop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loop = loop
}

func (c *cursor) setPan(pan float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pan = pan
}

func (c *cursor) offset() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pcm.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.pos / float64(c.pcm.SampleRate) * float64(time.Second))
}

func (c *cursor) seek(offset time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := float64(c.pcm.Frames())
	pos := offset.Seconds() * float64(c.pcm.SampleRate)
	c.pos = math.Max(0, math.Min(pos, frames))
}

// seekFrames positions the cursor at an output frame index
func (c *cursor) seekFrames(outFrame int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := float64(c.pcm.Frames())
	c.pos = math.Max(0, math.Min(float64(outFrame)*c.ratio*c.pitch, frames))
}

// panGains returns simple balance gains for a pan position
func panGains(pan float64) (l, r float64) {
	return math.Min(1, 1-pan), math.Min(1, 1+pan)
}
