// ABOUTME: Platform audio backend interface definition
// ABOUTME: Narrow capability set the voice engine drives
package backend

import (
	"errors"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
)

// Common errors for Backend implementations
var (
	ErrClosed             = errors.New("audio backend is closed")
	ErrResourceExhausted  = errors.New("audio backend resources exhausted")
	ErrUnknownBuffer      = errors.New("unknown buffer")
	ErrUnknownVoice       = errors.New("unknown voice")
	ErrUnsupportedChannel = errors.New("unsupported channel count")
)

// VoiceID identifies a backend voice. Zero means no voice.
type VoiceID uint32

// Backend is the platform playback layer.
//
// Calls on unknown voices are ignored; only resource creation reports errors.
// Implementations are driven from a single goroutine.
type Backend interface {
	// Buffers
	CreateBuffer(pcm *audio.PCM) (audio.BufferID, error)
	DeleteBuffer(id audio.BufferID)

	// Voices
	CreateVoice() (VoiceID, error)
	DeleteVoice(id VoiceID)
	BindBuffer(v VoiceID, buf audio.BufferID) error

	// Transport
	Play(v VoiceID)
	Pause(v VoiceID)
	Stop(v VoiceID)
	IsPlaying(v VoiceID) bool
	IsPaused(v VoiceID) bool

	// Parameters
	SetVolume(v VoiceID, volume float64)
	SetPitch(v VoiceID, pitch float64)
	SetLooping(v VoiceID, loop bool)
	SetPosition(v VoiceID, pos audio.Vec3)
	SetAttenuation(v VoiceID, att audio.Attenuation)
	Offset(v VoiceID) time.Duration
	SetOffset(v VoiceID, offset time.Duration)

	// Listener
	SetListenerPosition(pos audio.Vec3)
	SetListenerOrientation(forward, up audio.Vec3)

	// Close releases every buffer and voice
	Close() error
}
