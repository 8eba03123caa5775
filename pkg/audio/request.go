// ABOUTME: Playback request description and fluent builder
// ABOUTME: Immutable value describing how one sound should be played
package audio

import "time"

// Priority bounds. Lower value means higher scheduling priority.
const (
	PriorityHighest = 0
	PriorityDefault = 128
	PriorityLowest  = 255
)

// Default attenuation parameters
const (
	DefaultMinDistance = 1.0
	DefaultMaxDistance = 100.0
	DefaultRolloff     = 1.0
)

// Request describes one playback. It is passed by value and never mutated
// after Build.
type Request struct {
	Volume      float64 // >= 0, values above 1 are allowed
	Pitch       float64
	Channel     Channel
	Position    *Vec3 // nil means a 2D sound
	Loop        bool
	Delay       time.Duration
	MinDistance float64
	MaxDistance float64
	Rolloff     float64
	Priority    uint8
}

// Is3D reports whether the request carries a world position
func (r Request) Is3D() bool {
	return r.Position != nil
}

// Attenuation returns the distance model parameters of the request
func (r Request) Attenuation() Attenuation {
	return Attenuation{
		MinDistance: r.MinDistance,
		MaxDistance: r.MaxDistance,
		Rolloff:     r.Rolloff,
	}
}

// Attenuation holds distance falloff parameters
type Attenuation struct {
	MinDistance float64
	MaxDistance float64
	Rolloff     float64
}

// RequestBuilder builds Requests fluently
type RequestBuilder struct {
	req Request
}

// NewRequest starts a builder with default values
func NewRequest() *RequestBuilder {
	return &RequestBuilder{req: Request{
		Volume:      1.0,
		Pitch:       1.0,
		Channel:     ChannelSFX,
		MinDistance: DefaultMinDistance,
		MaxDistance: DefaultMaxDistance,
		Rolloff:     DefaultRolloff,
		Priority:    PriorityDefault,
	}}
}

func (b *RequestBuilder) Volume(v float64) *RequestBuilder {
	if v < 0 {
		v = 0
	}
	b.req.Volume = v
	return b
}

func (b *RequestBuilder) Pitch(p float64) *RequestBuilder {
	if p <= 0 {
		p = 1.0
	}
	b.req.Pitch = p
	return b
}

func (b *RequestBuilder) Channel(c Channel) *RequestBuilder {
	b.req.Channel = c
	return b
}

// At positions the sound in world space, making it a 3D sound
func (b *RequestBuilder) At(pos Vec3) *RequestBuilder {
	p := pos
	b.req.Position = &p
	return b
}

func (b *RequestBuilder) Loop(loop bool) *RequestBuilder {
	b.req.Loop = loop
	return b
}

func (b *RequestBuilder) Delay(d time.Duration) *RequestBuilder {
	if d < 0 {
		d = 0
	}
	b.req.Delay = d
	return b
}

// Distance sets the attenuation range
func (b *RequestBuilder) Distance(near, far float64) *RequestBuilder {
	b.req.MinDistance = near
	b.req.MaxDistance = far
	return b
}

func (b *RequestBuilder) Rolloff(r float64) *RequestBuilder {
	if r < 0 {
		r = 0
	}
	b.req.Rolloff = r
	return b
}

// Priority sets scheduling priority, clamped to [0, 255]
func (b *RequestBuilder) Priority(p int) *RequestBuilder {
	if p < PriorityHighest {
		p = PriorityHighest
	}
	if p > PriorityLowest {
		p = PriorityLowest
	}
	b.req.Priority = uint8(p)
	return b
}

// Build returns the finished request
func (b *RequestBuilder) Build() Request {
	r := b.req
	if r.MinDistance <= 0 {
		r.MinDistance = DefaultMinDistance
	}
	if r.MaxDistance < r.MinDistance {
		r.MinDistance, r.MaxDistance = r.MaxDistance, r.MinDistance
		if r.MinDistance <= 0 {
			r.MinDistance = DefaultMinDistance
		}
	}
	if r.Position != nil {
		p := *r.Position
		r.Position = &p
	}
	return r
}
