// ABOUTME: Voice allocation engine
// ABOUTME: Admission, priority stealing, pruning and per-frame volume refresh
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/Resonate-Protocol/voicemix/pkg/audio/backend"
	"github.com/Resonate-Protocol/voicemix/pkg/mixer"
)

const (
	// DefaultMaxVoices is used when Options.MaxVoices is not positive
	DefaultMaxVoices = 32

	fadeEpsilon = 0.001
)

// ErrBackendFault marks a failure to acquire backend resources. It signals
// a platform leak or exhaustion, never a full voice pool.
var ErrBackendFault = errors.New("audio backend fault")

// Options configures an Engine
type Options struct {
	MaxVoices int
	Logger    *slog.Logger
}

// Stats counts engine decisions since creation
type Stats struct {
	Admitted int64
	Stolen   int64
	Rejected int64 // pool full, no eligible victim
	Invalid  int64 // nil clip or malformed request
	Faults   int64
	Pruned   int64
}

// voice is one tracked playback
type voice struct {
	handle *Handle
	clip   *audio.Clip
	req    audio.Request
	volume float64 // request volume, moved by per-voice fades

	fading     bool
	fadeTarget float64
	fadeRate   float64 // volume units per second
	onFade     func()
}

// Engine tracks active voices on top of a backend. It is not safe for
// concurrent use; drive it from the game loop.
type Engine struct {
	backend   backend.Backend
	mixer     *mixer.Mixer
	maxVoices int
	voices    []*voice // admission order
	stats     Stats
	logger    *slog.Logger
}

// New creates an engine
func New(b backend.Backend, m *mixer.Mixer, opts Options) *Engine {
	if opts.MaxVoices <= 0 {
		opts.MaxVoices = DefaultMaxVoices
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if m == nil {
		m = mixer.New(nil)
	}

	return &Engine{
		backend:   b,
		mixer:     m,
		maxVoices: opts.MaxVoices,
		logger:    opts.Logger.With("component", "engine"),
	}
}

// Play admits a voice for clip. A full pool without an eligible victim
// or invalid input returns a nil handle and nil error. Backend failures
// return an error wrapping ErrBackendFault.
func (e *Engine) Play(clip *audio.Clip, req audio.Request) (*Handle, error) {
	if clip == nil || clip.Buffer == 0 || !req.Channel.Valid() || !validVolume(req.Volume) {
		e.stats.Invalid++
		e.logger.Debug("Ignoring invalid playback request", "channel", req.Channel)
		return nil, nil
	}

	e.prune()

	if len(e.voices) >= e.maxVoices && !e.steal(req.Priority) {
		e.stats.Rejected++
		e.logger.Debug("Voice pool full, request dropped",
			"clip", clip.Name,
			"priority", req.Priority,
			"active", len(e.voices))
		return nil, nil
	}

	id, err := e.backend.CreateVoice()
	if err != nil {
		return nil, e.fault("create voice", clip, err)
	}
	if err := e.backend.BindBuffer(id, clip.Buffer); err != nil {
		e.backend.DeleteVoice(id)
		return nil, e.fault("bind buffer", clip, err)
	}

	e.backend.SetVolume(id, e.mixer.FinalVolume(req.Channel, req.Volume))
	e.backend.SetPitch(id, req.Pitch)
	e.backend.SetLooping(id, req.Loop)

	// Spatial requests on stereo clips degrade to 2D
	if req.Is3D() && clip.Supports3D() {
		e.backend.SetPosition(id, *req.Position)
		e.backend.SetAttenuation(id, req.Attenuation())
	}

	if req.Delay <= 0 {
		e.backend.Play(id)
	}

	h := newHandle(e.backend, id, req)
	e.voices = append(e.voices, &voice{handle: h, clip: clip, req: req, volume: req.Volume})
	e.stats.Admitted++
	return h, nil
}

func (e *Engine) fault(op string, clip *audio.Clip, err error) error {
	e.stats.Faults++
	e.logger.Error("Backend fault",
		"op", op,
		"clip", clip.Name,
		"active", len(e.voices),
		"error", err)
	return fmt.Errorf("%w: %s: %w", ErrBackendFault, op, err)
}

func validVolume(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// steal evicts the lowest-priority non-looping voice if it ranks strictly
// below priority. Looping voices are never evicted.
func (e *Engine) steal(priority uint8) bool {
	victim := -1
	for i, v := range e.voices {
		if v.req.Loop {
			continue
		}
		if victim < 0 || v.req.Priority > e.voices[victim].req.Priority {
			victim = i
		}
	}
	if victim < 0 {
		return false
	}

	v := e.voices[victim]
	if v.req.Priority <= priority {
		return false
	}

	v.handle.Release()
	e.remove(victim)
	e.stats.Stolen++
	e.logger.Debug("Stole voice",
		"victim_priority", v.req.Priority,
		"priority", priority)
	return true
}

func (e *Engine) remove(i int) {
	e.voices[i].handle.tracked = false
	e.voices = append(e.voices[:i], e.voices[i+1:]...)
}

// prune releases voices whose handle is invalid or that finished playing.
// Voices waiting out a start delay are kept.
func (e *Engine) prune() {
	kept := e.voices[:0]
	for _, v := range e.voices {
		if v.handle.alive() {
			kept = append(kept, v)
			continue
		}
		v.handle.Release()
		v.handle.tracked = false
		e.stats.Pruned++
	}
	clear(e.voices[len(kept):])
	e.voices = kept
}

func (e *Engine) find(h *Handle) int {
	if h == nil {
		return -1
	}
	for i, v := range e.voices {
		if v.handle == h {
			return i
		}
	}
	return -1
}

// RemoveFromTracking detaches a voice without stopping it. The caller
// owns the handle afterwards and must Stop or Release it. A voice still
// waiting out its delay starts immediately, unless it was paused; then
// the caller's Resume starts it.
func (e *Engine) RemoveFromTracking(h *Handle) bool {
	i := e.find(h)
	if i < 0 {
		return false
	}

	if h.pending > 0 {
		h.pending = 0
		if h.held {
			h.held = false
			h.startOnResume = true
		} else {
			e.backend.Play(h.voice)
		}
	}
	e.remove(i)
	return true
}

// StopChannel stops every tracked voice on ch. Entries are removed by the
// next prune, not here.
func (e *Engine) StopChannel(ch audio.Channel) {
	for _, v := range e.voices {
		if v.req.Channel == ch {
			v.handle.Stop()
		}
	}
}

// PauseChannel pauses every tracked voice on ch
func (e *Engine) PauseChannel(ch audio.Channel) {
	for _, v := range e.voices {
		if v.req.Channel == ch {
			v.handle.Pause()
		}
	}
}

// ResumeChannel resumes every paused voice on ch
func (e *Engine) ResumeChannel(ch audio.Channel) {
	for _, v := range e.voices {
		if v.req.Channel == ch {
			v.handle.Resume()
		}
	}
}

// PauseAll pauses every tracked voice, holding pending delays
func (e *Engine) PauseAll() {
	for _, v := range e.voices {
		v.handle.Pause()
	}
}

// ResumeAll resumes every tracked voice
func (e *Engine) ResumeAll() {
	for _, v := range e.voices {
		v.handle.Resume()
	}
}

// StopAll releases every tracked voice and clears tracking immediately
func (e *Engine) StopAll() {
	for _, v := range e.voices {
		v.handle.Release()
		v.handle.tracked = false
	}
	clear(e.voices)
	e.voices = e.voices[:0]
}

// StopClip releases every tracked voice playing clip immediately, so the
// clip's buffer can be deleted
func (e *Engine) StopClip(clip *audio.Clip) {
	kept := e.voices[:0]
	for _, v := range e.voices {
		if v.clip != clip {
			kept = append(kept, v)
			continue
		}
		v.handle.Release()
		v.handle.tracked = false
	}
	clear(e.voices[len(kept):])
	e.voices = kept
}

// FadeVolume arms a linear fade of a voice's request volume. A duration
// of zero or less applies target and calls onComplete before returning.
// Returns false when the handle is not tracked.
func (e *Engine) FadeVolume(h *Handle, target float64, duration time.Duration, onComplete func()) bool {
	i := e.find(h)
	if i < 0 || !h.Valid() {
		return false
	}
	v := e.voices[i]
	target = math.Max(0, target)

	if duration <= 0 {
		v.volume = target
		v.fading = false
		v.onFade = nil
		e.pushVolume(v)
		if onComplete != nil {
			onComplete()
		}
		return true
	}

	v.fading = true
	v.fadeTarget = target
	v.fadeRate = math.Abs(target-v.volume) / duration.Seconds()
	v.onFade = onComplete
	return true
}

// Update prunes finished voices, starts due delayed voices, advances
// per-voice fades and pushes fresh mixer volumes to every playing voice.
func (e *Engine) Update(dt time.Duration) {
	e.prune()

	var done []func()
	for _, v := range e.voices {
		h := v.handle

		if h.pending > 0 {
			if h.held {
				continue
			}
			h.pending -= dt
			if h.pending > 0 {
				continue
			}
			h.pending = 0
			e.backend.Play(h.voice)
		}

		if v.fading && !e.backend.IsPaused(h.voice) {
			if cb := v.advanceFade(dt); cb != nil {
				done = append(done, cb)
			}
		}

		if e.backend.IsPlaying(h.voice) {
			e.pushVolume(v)
		}
	}

	// Callbacks may call back into the engine
	for _, cb := range done {
		cb()
	}
}

// advanceFade moves the voice volume toward its target without
// overshooting. It returns the completion callback once the fade lands.
func (v *voice) advanceFade(dt time.Duration) func() {
	step := v.fadeRate * dt.Seconds()
	if v.volume < v.fadeTarget {
		v.volume = math.Min(v.volume+step, v.fadeTarget)
	} else {
		v.volume = math.Max(v.volume-step, v.fadeTarget)
	}

	if math.Abs(v.volume-v.fadeTarget) >= fadeEpsilon {
		return nil
	}

	v.volume = v.fadeTarget
	v.fading = false
	cb := v.onFade
	v.onFade = nil
	return cb
}

func (e *Engine) pushVolume(v *voice) {
	e.backend.SetVolume(v.handle.voice, e.mixer.FinalVolume(v.req.Channel, v.volume))
}

// VoiceVolume returns the current request volume of a tracked voice
func (e *Engine) VoiceVolume(h *Handle) (float64, bool) {
	i := e.find(h)
	if i < 0 {
		return 0, false
	}
	return e.voices[i].volume, true
}

// SetListenerPosition forwards the listener position to the backend
func (e *Engine) SetListenerPosition(pos audio.Vec3) {
	e.backend.SetListenerPosition(pos)
}

// SetListenerOrientation forwards the listener orientation to the backend
func (e *Engine) SetListenerOrientation(forward, up audio.Vec3) {
	e.backend.SetListenerOrientation(forward, up)
}

// ActiveCount returns the number of tracked voices
func (e *Engine) ActiveCount() int {
	return len(e.voices)
}

// ChannelCount returns the number of tracked voices on ch
func (e *Engine) ChannelCount(ch audio.Channel) int {
	n := 0
	for _, v := range e.voices {
		if v.req.Channel == ch {
			n++
		}
	}
	return n
}

// MaxVoices returns the voice budget
func (e *Engine) MaxVoices() int {
	return e.maxVoices
}

// Stats returns a snapshot of the decision counters
func (e *Engine) Stats() Stats {
	return e.stats
}
