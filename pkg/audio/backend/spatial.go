// ABOUTME: Distance attenuation and stereo pan helpers
// ABOUTME: Shared by the software backends to spatialize mono voices
package backend

import (
	"math"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
)

// Listener is the ear position used for spatialization
type Listener struct {
	Position audio.Vec3
	Forward  audio.Vec3
	Up       audio.Vec3
}

// DefaultListener sits at the origin looking down -Z with +Y up
func DefaultListener() Listener {
	return Listener{
		Forward: audio.Vec3{Z: -1},
		Up:      audio.Vec3{Y: 1},
	}
}

// Attenuate returns the inverse-distance-clamped gain for a source at
// distance d (OpenAL's default distance model).
func Attenuate(d float64, att audio.Attenuation) float64 {
	near := att.MinDistance
	if near <= 0 {
		near = audio.DefaultMinDistance
	}
	far := att.MaxDistance
	if far < near {
		far = near
	}

	d = math.Max(d, near)
	d = math.Min(d, far)

	denom := near + att.Rolloff*(d-near)
	if denom <= 0 {
		return 1
	}
	return near / denom
}

// Spatialize returns gain and pan in [-1, 1] for a source seen by l
func (l Listener) Spatialize(pos audio.Vec3, att audio.Attenuation) (gain, pan float64) {
	rel := pos.Sub(l.Position)
	gain = Attenuate(rel.Len(), att)

	right := l.Forward.Cross(l.Up).Normalize()
	pan = rel.Normalize().Dot(right)
	return gain, math.Max(-1, math.Min(1, pan))
}
