// ABOUTME: Audio context facade
// ABOUTME: Owns backend, mixer and engine as one lifecycle and exposes the playback API
package voicemix

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/Resonate-Protocol/voicemix/pkg/audio/backend"
	"github.com/Resonate-Protocol/voicemix/pkg/audio/decode"
	"github.com/Resonate-Protocol/voicemix/pkg/config"
	"github.com/Resonate-Protocol/voicemix/pkg/engine"
	"github.com/Resonate-Protocol/voicemix/pkg/mixer"
)

var (
	ErrNotInitialized = errors.New("audio context not initialized")
	ErrNoBackend      = errors.New("audio context has no backend")
	ErrDestroyed      = errors.New("audio context destroyed")
)

// MusicLayer is ticked once per frame after the engine. If it also
// implements io.Closer it is closed by Destroy.
type MusicLayer interface {
	Update(dt time.Duration)
}

// Listener supplies the 3D listener pose each frame
type Listener interface {
	Pose() (position, forward, up audio.Vec3)
}

// Option configures a Context
type Option func(*Context)

// WithLogger sets the logger used by the context and its engine
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMusicLayer registers the external music layer
func WithMusicLayer(m MusicLayer) Option {
	return func(c *Context) {
		c.music = m
	}
}

// WithDecoder overrides decoder selection for LoadClip
func WithDecoder(lookup decode.Lookup) Option {
	return func(c *Context) {
		if lookup != nil {
			c.lookup = lookup
		}
	}
}

// Context is the entry point for game code. It is not safe for
// concurrent use.
type Context struct {
	cfg     *config.Config
	backend backend.Backend
	mixer   *mixer.Mixer
	engine  *engine.Engine
	music   MusicLayer
	lookup  decode.Lookup
	logger  *slog.Logger

	listener    Listener
	initialized bool
	destroyed   bool
}

// New creates a context. Nothing touches the backend until Initialize.
func New(cfg *config.Config, b backend.Backend, opts ...Option) *Context {
	if cfg == nil {
		cfg = config.Default()
	}

	c := &Context{
		cfg:     cfg,
		backend: b,
		lookup:  decode.ForPath,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "voicemix")
	return c
}

// Initialize builds the mixer and engine. Repeated calls are no-ops.
func (c *Context) Initialize() error {
	if c.initialized {
		return nil
	}
	if c.destroyed {
		return ErrDestroyed
	}
	if c.backend == nil {
		c.logger.Error("Audio initialization failed", "error", ErrNoBackend)
		return ErrNoBackend
	}
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid audio config: %w", err)
	}

	c.mixer = mixer.New(c.cfg)
	c.engine = engine.New(c.backend, c.mixer, engine.Options{
		MaxVoices: c.cfg.MaxSimultaneousSounds,
		Logger:    c.logger,
	})
	c.initialized = true

	c.logger.Info("Audio context initialized",
		"max_voices", c.cfg.MaxSimultaneousSounds,
		"master_volume", c.cfg.MasterVolume)
	return nil
}

// Destroy stops every voice, closes the music layer and the backend.
// Repeated calls are no-ops.
func (c *Context) Destroy() error {
	if !c.initialized {
		return nil
	}
	c.initialized = false
	c.destroyed = true

	c.engine.StopAll()
	c.listener = nil

	var errs []error
	if closer, ok := c.music.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close music layer: %w", err))
		}
	}
	if err := c.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close backend: %w", err))
	}

	c.logger.Info("Audio context destroyed")
	return errors.Join(errs...)
}

// IsInitialized reports whether the context is live
func (c *Context) IsInitialized() bool {
	return c.initialized
}

// Update advances one frame: listener pose, channel fades, voices, then
// the music layer.
func (c *Context) Update(dt time.Duration) {
	if !c.initialized {
		return
	}

	if c.listener != nil {
		pos, forward, up := c.listener.Pose()
		c.engine.SetListenerPosition(pos)
		c.engine.SetListenerOrientation(forward, up)
	}

	c.mixer.Update(dt)
	c.engine.Update(dt)

	if c.music != nil {
		c.music.Update(dt)
	}
}

// Play starts clip with a full request. Voices on a paused channel start
// paused.
func (c *Context) Play(clip *audio.Clip, req audio.Request) (*engine.Handle, error) {
	if !c.initialized {
		return nil, nil
	}

	h, err := c.engine.Play(clip, req)
	if err != nil {
		return nil, err
	}
	if h != nil && c.mixer.IsPaused(req.Channel) {
		h.Pause()
	}
	return h, nil
}

// PlayOneShot plays a 2D sound once
func (c *Context) PlayOneShot(clip *audio.Clip, ch audio.Channel, volume float64) (*engine.Handle, error) {
	return c.Play(clip, audio.NewRequest().Channel(ch).Volume(volume).Build())
}

// PlayAt plays a sound at a world position using the configured rolloff
func (c *Context) PlayAt(clip *audio.Clip, pos audio.Vec3, ch audio.Channel, volume float64) (*engine.Handle, error) {
	req := audio.NewRequest().
		Channel(ch).
		Volume(volume).
		At(pos).
		Rolloff(c.cfg.DefaultRolloff).
		Build()
	return c.Play(clip, req)
}

// PlayLooping plays a 2D sound until stopped. Looping voices are never
// stolen.
func (c *Context) PlayLooping(clip *audio.Clip, ch audio.Channel, volume float64) (*engine.Handle, error) {
	return c.Play(clip, audio.NewRequest().Channel(ch).Volume(volume).Loop(true).Build())
}

// PauseAll pauses every voice. Channel pause flags are left alone.
func (c *Context) PauseAll() {
	if c.initialized {
		c.engine.PauseAll()
	}
}

// ResumeAll resumes every voice and clears channel pause flags
func (c *Context) ResumeAll() {
	if !c.initialized {
		return
	}
	for _, ch := range audio.Channels() {
		c.mixer.ResumeChannel(ch)
	}
	c.engine.ResumeAll()
}

// StopAll stops and releases every voice
func (c *Context) StopAll() {
	if c.initialized {
		c.engine.StopAll()
	}
}

// StopChannel stops every voice on ch
func (c *Context) StopChannel(ch audio.Channel) {
	if c.initialized {
		c.engine.StopChannel(ch)
	}
}

// PauseChannel flags the channel paused and pauses its voices
func (c *Context) PauseChannel(ch audio.Channel) {
	if !c.initialized {
		return
	}
	c.mixer.PauseChannel(ch)
	c.engine.PauseChannel(ch)
}

// ResumeChannel clears the channel pause flag and resumes its voices
func (c *Context) ResumeChannel(ch audio.Channel) {
	if !c.initialized {
		return
	}
	c.mixer.ResumeChannel(ch)
	c.engine.ResumeChannel(ch)
}

// IsChannelPaused reports the channel pause flag
func (c *Context) IsChannelPaused(ch audio.Channel) bool {
	return c.initialized && c.mixer.IsPaused(ch)
}

// SetChannelVolume sets a channel volume instantly and stores it in the config
func (c *Context) SetChannelVolume(ch audio.Channel, v float64) {
	if c.initialized {
		c.mixer.SetVolume(ch, v)
	}
}

// ChannelVolume returns the current channel volume
func (c *Context) ChannelVolume(ch audio.Channel) float64 {
	if !c.initialized {
		return c.cfg.ChannelVolume(ch)
	}
	return c.mixer.Volume(ch)
}

// FadeChannel fades a channel volume. The config keeps the old value.
func (c *Context) FadeChannel(ch audio.Channel, target float64, duration time.Duration, onComplete func()) {
	if c.initialized {
		c.mixer.FadeVolume(ch, target, duration, onComplete)
	}
}

// Mute silences a channel
func (c *Context) Mute(ch audio.Channel) {
	if c.initialized {
		c.mixer.Mute(ch)
	}
}

// Unmute restores a muted channel
func (c *Context) Unmute(ch audio.Channel) {
	if c.initialized {
		c.mixer.Unmute(ch)
	}
}

// ToggleMute flips the mute flag and returns the new state
func (c *Context) ToggleMute(ch audio.Channel) bool {
	if !c.initialized {
		return false
	}
	return c.mixer.ToggleMute(ch)
}

// IsMuted reports whether a channel is muted
func (c *Context) IsMuted(ch audio.Channel) bool {
	return c.initialized && c.mixer.IsMuted(ch)
}

// SetListenerPosition moves the listener. An attached Listener overrides it
// on the next Update.
func (c *Context) SetListenerPosition(pos audio.Vec3) {
	if c.initialized {
		c.engine.SetListenerPosition(pos)
	}
}

// SetListenerOrientation sets the listener forward and up vectors
func (c *Context) SetListenerOrientation(forward, up audio.Vec3) {
	if c.initialized {
		c.engine.SetListenerOrientation(forward, up)
	}
}

// AttachListener makes l the active listener, replacing any previous one.
// Its pose is pushed to the backend on every Update.
func (c *Context) AttachListener(l Listener) {
	c.listener = l
}

// DetachListener clears the active listener
func (c *Context) DetachListener() {
	c.listener = nil
}

// Listener returns the active listener, or nil
func (c *Context) Listener() Listener {
	return c.listener
}

// LoadClip decodes a file and uploads it to the backend
func (c *Context) LoadClip(path string) (*audio.Clip, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}

	pcm, err := decode.FileWith(path, c.lookup)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return c.ClipFromPCM(name, pcm)
}

// ClipFromPCM uploads decoded audio to the backend
func (c *Context) ClipFromPCM(name string, pcm *audio.PCM) (*audio.Clip, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}

	buf, err := c.backend.CreateBuffer(pcm)
	if err != nil {
		c.logger.Error("Failed to create buffer", "clip", name, "error", err)
		return nil, fmt.Errorf("%w: create buffer: %w", engine.ErrBackendFault, err)
	}

	c.logger.Debug("Loaded clip",
		"clip", name,
		"duration", pcm.Duration(),
		"channels", pcm.Channels)

	return &audio.Clip{
		Name:     name,
		Buffer:   buf,
		Duration: pcm.Duration(),
		Channels: pcm.Channels,
	}, nil
}

// UnloadClip frees the clip's buffer. Voices still playing it are
// stopped first; the clip can no longer be played.
func (c *Context) UnloadClip(clip *audio.Clip) {
	if !c.initialized || clip == nil || clip.Buffer == 0 {
		return
	}
	c.engine.StopClip(clip)
	c.backend.DeleteBuffer(clip.Buffer)
	clip.Buffer = 0
}

// SaveConfig writes the live configuration, including volumes changed
// through SetChannelVolume
func (c *Context) SaveConfig(path string) error {
	return c.cfg.Save(path)
}

// Stats returns the engine counters
func (c *Context) Stats() engine.Stats {
	if !c.initialized {
		return engine.Stats{}
	}
	return c.engine.Stats()
}

// Mixer returns the mixer, or nil before Initialize
func (c *Context) Mixer() *mixer.Mixer { return c.mixer }

// Engine returns the engine, or nil before Initialize
func (c *Context) Engine() *engine.Engine { return c.engine }

// Config returns the live configuration
func (c *Context) Config() *config.Config { return c.cfg }
