// ABOUTME: Per-channel mix bus with linear fades
// ABOUTME: Holds volume, mute, pause and fade state for one channel
package mixer

import (
	"math"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
)

// fadeEpsilon is the distance at which a fade snaps to its target
const fadeEpsilon = 0.001

// Bus is one independently controllable volume unit.
//
// A bus is either steady or fading. Fades are advanced only by Update, on
// the caller's goroutine.
type Bus struct {
	channel audio.Channel
	volume  float64
	muted   bool
	paused  bool

	// Fade state
	fading     bool
	target     float64
	rate       float64 // volume units per second
	onComplete func()
}

// NewBus creates a steady bus at the given volume
func NewBus(ch audio.Channel, volume float64) *Bus {
	return &Bus{
		channel: ch,
		volume:  clamp01(volume),
		target:  clamp01(volume),
	}
}

// Channel returns the channel this bus controls
func (b *Bus) Channel() audio.Channel { return b.channel }

// Volume returns the raw volume, ignoring mute
func (b *Bus) Volume() float64 { return b.volume }

// EffectiveVolume returns 0 when muted, otherwise the volume
func (b *Bus) EffectiveVolume() float64 {
	if b.muted {
		return 0
	}
	return b.volume
}

// SetVolume jumps to v and cancels any fade. A pending completion callback
// is dropped without being called.
func (b *Bus) SetVolume(v float64) {
	b.volume = clamp01(v)
	b.target = b.volume
	b.fading = false
	b.rate = 0
	b.onComplete = nil
}

// FadeTo ramps linearly to target over duration. A non-positive duration
// applies target immediately and calls onComplete before returning.
func (b *Bus) FadeTo(target float64, duration time.Duration, onComplete func()) {
	target = clamp01(target)

	if duration <= 0 {
		b.SetVolume(target)
		if onComplete != nil {
			onComplete()
		}
		return
	}

	b.target = target
	b.rate = math.Abs(target-b.volume) / duration.Seconds()
	b.fading = true
	b.onComplete = onComplete
}

// Update advances an in-progress fade by dt
func (b *Bus) Update(dt time.Duration) {
	if !b.fading {
		return
	}

	step := b.rate * dt.Seconds()
	if b.volume < b.target {
		b.volume = math.Min(b.volume+step, b.target)
	} else {
		b.volume = math.Max(b.volume-step, b.target)
	}

	if math.Abs(b.volume-b.target) < fadeEpsilon {
		b.volume = b.target
		b.fading = false
		b.rate = 0

		// Clear before calling so the callback may start a new fade
		cb := b.onComplete
		b.onComplete = nil
		if cb != nil {
			cb()
		}
	}
}

// Fading reports whether a fade is in progress
func (b *Bus) Fading() bool { return b.fading }

// Target returns the fade target (the volume itself when steady)
func (b *Bus) Target() float64 { return b.target }

// Mute and pause flags. Pause is advisory; the bus volume is unaffected.
func (b *Bus) Muted() bool           { return b.muted }
func (b *Bus) SetMuted(muted bool)   { b.muted = muted }
func (b *Bus) Paused() bool          { return b.paused }
func (b *Bus) SetPaused(paused bool) { b.paused = paused }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
