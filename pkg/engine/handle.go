// ABOUTME: Voice handle returned by Engine.Play
// ABOUTME: Safe to use after the voice ends; stale handles are no-ops
package engine

import (
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/Resonate-Protocol/voicemix/pkg/audio/backend"
	"github.com/google/uuid"
)

// Handle refers to one playing voice. Validity is the single source of
// truth: once the voice has been released every method does nothing.
type Handle struct {
	id       uuid.UUID
	backend  backend.Backend
	voice    backend.VoiceID
	channel  audio.Channel
	priority uint8
	looping  bool

	pending       time.Duration // remaining start delay
	held          bool          // pending countdown paused
	startOnResume bool          // detached while held, never started
	tracked       bool
	released      bool
}

func newHandle(b backend.Backend, v backend.VoiceID, req audio.Request) *Handle {
	return &Handle{
		id:       uuid.New(),
		backend:  b,
		voice:    v,
		channel:  req.Channel,
		priority: req.Priority,
		looping:  req.Loop,
		pending:  req.Delay,
		tracked:  true,
	}
}

// ID returns the unique handle identifier
func (h *Handle) ID() uuid.UUID { return h.id }

// Channel returns the channel the voice plays on
func (h *Handle) Channel() audio.Channel { return h.channel }

// Priority returns the scheduling priority (0 is highest)
func (h *Handle) Priority() uint8 { return h.priority }

// Looping reports whether the voice loops
func (h *Handle) Looping() bool { return h.looping }

// Valid reports whether the handle still owns a backend voice
func (h *Handle) Valid() bool {
	return h != nil && !h.released && h.voice != 0
}

// Pending reports whether the voice is waiting out its start delay
func (h *Handle) Pending() bool {
	return h.Valid() && h.pending > 0
}

// IsPlaying reports whether the backend is playing the voice
func (h *Handle) IsPlaying() bool {
	return h.Valid() && h.backend.IsPlaying(h.voice)
}

// IsPaused reports whether the voice is paused, including a held delay
func (h *Handle) IsPaused() bool {
	if !h.Valid() {
		return false
	}
	if h.pending > 0 {
		return h.held
	}
	if h.startOnResume {
		return true
	}
	return h.backend.IsPaused(h.voice)
}

// Pause pauses the voice. A pending voice holds its start delay.
func (h *Handle) Pause() {
	if !h.Valid() || h.startOnResume {
		return
	}
	if h.pending > 0 {
		h.held = true
		return
	}
	h.backend.Pause(h.voice)
}

// Resume continues a paused voice or releases a held start delay
func (h *Handle) Resume() {
	if !h.Valid() {
		return
	}
	if h.pending > 0 {
		h.held = false
		return
	}
	if h.startOnResume {
		h.startOnResume = false
		h.backend.Play(h.voice)
		return
	}
	if h.backend.IsPaused(h.voice) {
		h.backend.Play(h.voice)
	}
}

// Stop halts the voice. A tracked voice is released by the engine on its
// next prune; a detached voice is released immediately.
func (h *Handle) Stop() {
	if !h.Valid() {
		return
	}
	h.pending = 0
	h.held = false
	h.startOnResume = false
	h.backend.Stop(h.voice)

	if !h.tracked {
		h.Release()
	}
}

// Offset returns the playback position within the clip
func (h *Handle) Offset() time.Duration {
	if !h.Valid() {
		return 0
	}
	return h.backend.Offset(h.voice)
}

// Seek moves the playback position within the clip
func (h *Handle) Seek(offset time.Duration) {
	if !h.Valid() {
		return
	}
	h.backend.SetOffset(h.voice, offset)
}

// SetVolume pushes a raw volume to the backend. Only meaningful for voices
// detached with RemoveFromTracking; the engine overwrites tracked voices.
func (h *Handle) SetVolume(volume float64) {
	if !h.Valid() {
		return
	}
	h.backend.SetVolume(h.voice, volume)
}

// Release stops the voice and frees its backend resources. Idempotent.
func (h *Handle) Release() {
	if !h.Valid() {
		return
	}
	h.backend.Stop(h.voice)
	h.backend.DeleteVoice(h.voice)
	h.released = true
	h.pending = 0
	h.startOnResume = false
}

// alive reports whether a tracked voice should survive pruning
func (h *Handle) alive() bool {
	if !h.Valid() {
		return false
	}
	if h.pending > 0 {
		return true
	}
	return h.backend.IsPlaying(h.voice) || h.backend.IsPaused(h.voice)
}
