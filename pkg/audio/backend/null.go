// ABOUTME: Headless backend with a virtual clock
// ABOUTME: Used in tests and when no audio device is available
package backend

import (
	"fmt"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
)

// NullVoice is a snapshot of one headless voice
type NullVoice struct {
	Buffer      audio.BufferID
	Playing     bool
	Paused      bool
	Volume      float64
	Pitch       float64
	Loop        bool
	Position    *audio.Vec3
	Attenuation audio.Attenuation
	Offset      time.Duration
}

type nullBuffer struct {
	length   time.Duration
	channels int
}

// Null plays nothing. Voices advance only when Advance is called, so tests
// can decide exactly when a sound finishes.
type Null struct {
	buffers    map[audio.BufferID]nullBuffer
	voices     map[VoiceID]*NullVoice
	nextBuffer uint32
	nextVoice  uint32
	maxVoices  int
	listener   Listener
	closed     bool
}

// NewNull creates a headless backend. maxVoices <= 0 means unlimited.
func NewNull(maxVoices int) *Null {
	return &Null{
		buffers:   make(map[audio.BufferID]nullBuffer),
		voices:    make(map[VoiceID]*NullVoice),
		maxVoices: maxVoices,
		listener:  DefaultListener(),
	}
}

func (n *Null) CreateBuffer(pcm *audio.PCM) (audio.BufferID, error) {
	if n.closed {
		return 0, ErrClosed
	}
	if pcm == nil || pcm.Channels < 1 || pcm.Channels > 2 {
		return 0, ErrUnsupportedChannel
	}

	n.nextBuffer++
	id := audio.BufferID(n.nextBuffer)
	n.buffers[id] = nullBuffer{length: pcm.Duration(), channels: pcm.Channels}
	return id, nil
}

func (n *Null) DeleteBuffer(id audio.BufferID) {
	delete(n.buffers, id)
}

func (n *Null) CreateVoice() (VoiceID, error) {
	if n.closed {
		return 0, ErrClosed
	}
	if n.maxVoices > 0 && len(n.voices) >= n.maxVoices {
		return 0, fmt.Errorf("%d voices in use: %w", len(n.voices), ErrResourceExhausted)
	}

	n.nextVoice++
	id := VoiceID(n.nextVoice)
	n.voices[id] = &NullVoice{Volume: 1, Pitch: 1}
	return id, nil
}

func (n *Null) DeleteVoice(id VoiceID) {
	delete(n.voices, id)
}

func (n *Null) BindBuffer(v VoiceID, buf audio.BufferID) error {
	voice, ok := n.voices[v]
	if !ok {
		return ErrUnknownVoice
	}
	if _, ok := n.buffers[buf]; !ok {
		return ErrUnknownBuffer
	}
	voice.Buffer = buf
	voice.Offset = 0
	return nil
}

func (n *Null) Play(v VoiceID) {
	if voice, ok := n.voices[v]; ok && voice.Buffer != 0 {
		voice.Playing = true
		voice.Paused = false
	}
}

func (n *Null) Pause(v VoiceID) {
	if voice, ok := n.voices[v]; ok && voice.Playing {
		voice.Playing = false
		voice.Paused = true
	}
}

func (n *Null) Stop(v VoiceID) {
	if voice, ok := n.voices[v]; ok {
		voice.Playing = false
		voice.Paused = false
		voice.Offset = 0
	}
}

func (n *Null) IsPlaying(v VoiceID) bool {
	voice, ok := n.voices[v]
	return ok && voice.Playing
}

func (n *Null) IsPaused(v VoiceID) bool {
	voice, ok := n.voices[v]
	return ok && voice.Paused
}

func (n *Null) SetVolume(v VoiceID, volume float64) {
	if voice, ok := n.voices[v]; ok {
		voice.Volume = volume
	}
}

func (n *Null) SetPitch(v VoiceID, pitch float64) {
	if voice, ok := n.voices[v]; ok {
		voice.Pitch = pitch
	}
}

func (n *Null) SetLooping(v VoiceID, loop bool) {
	if voice, ok := n.voices[v]; ok {
		voice.Loop = loop
	}
}

func (n *Null) SetPosition(v VoiceID, pos audio.Vec3) {
	if voice, ok := n.voices[v]; ok {
		p := pos
		voice.Position = &p
	}
}

func (n *Null) SetAttenuation(v VoiceID, att audio.Attenuation) {
	if voice, ok := n.voices[v]; ok {
		voice.Attenuation = att
	}
}

func (n *Null) Offset(v VoiceID) time.Duration {
	if voice, ok := n.voices[v]; ok {
		return voice.Offset
	}
	return 0
}

func (n *Null) SetOffset(v VoiceID, offset time.Duration) {
	voice, ok := n.voices[v]
	if !ok {
		return
	}
	length := n.buffers[voice.Buffer].length
	if offset < 0 {
		offset = 0
	}
	if offset > length {
		offset = length
	}
	voice.Offset = offset
}

func (n *Null) SetListenerPosition(pos audio.Vec3) {
	n.listener.Position = pos
}

func (n *Null) SetListenerOrientation(forward, up audio.Vec3) {
	n.listener.Forward = forward
	n.listener.Up = up
}

// Listener returns the last listener state pushed to the backend
func (n *Null) Listener() Listener {
	return n.listener
}

// Advance moves the virtual clock. Non-looping voices that reach the end
// of their buffer stop.
func (n *Null) Advance(d time.Duration) {
	for _, voice := range n.voices {
		if !voice.Playing {
			continue
		}
		length := n.buffers[voice.Buffer].length
		voice.Offset += time.Duration(float64(d) * voice.Pitch)
		if voice.Offset < length {
			continue
		}
		if voice.Loop && length > 0 {
			voice.Offset %= length
			continue
		}
		voice.Playing = false
		voice.Offset = 0
	}
}

// Finish ends a voice as if it had played to completion
func (n *Null) Finish(v VoiceID) {
	if voice, ok := n.voices[v]; ok {
		voice.Playing = false
		voice.Paused = false
		voice.Offset = 0
	}
}

// Voice returns a snapshot of a voice
func (n *Null) Voice(v VoiceID) (NullVoice, bool) {
	voice, ok := n.voices[v]
	if !ok {
		return NullVoice{}, false
	}
	return *voice, true
}

// VoiceCount returns the number of allocated voices
func (n *Null) VoiceCount() int { return len(n.voices) }

// BufferCount returns the number of allocated buffers
func (n *Null) BufferCount() int { return len(n.buffers) }

func (n *Null) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true
	n.voices = make(map[VoiceID]*NullVoice)
	n.buffers = make(map[audio.BufferID]nullBuffer)
	return nil
}
