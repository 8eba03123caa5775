// ABOUTME: Tests for the audio context facade
// ABOUTME: Lifecycle, tick order, listener registry and clip loading on the Null backend
package voicemix

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/Resonate-Protocol/voicemix/pkg/audio/backend"
	"github.com/Resonate-Protocol/voicemix/pkg/audio/decode"
	"github.com/Resonate-Protocol/voicemix/pkg/config"
	"github.com/Resonate-Protocol/voicemix/pkg/engine"
)

func newTestContext(t *testing.T, opts ...Option) (*Context, *backend.Null) {
	t.Helper()
	b := backend.NewNull(0)
	c := New(config.Default(), b, opts...)
	if err := c.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	return c, b
}

func toneClip(t *testing.T, c *Context, d time.Duration) *audio.Clip {
	t.Helper()
	clip, err := c.ClipFromPCM("tone", decode.Tone(440, d, 8000))
	if err != nil {
		t.Fatalf("failed to load clip: %v", err)
	}
	return clip
}

type recordingMusic struct {
	updates int
	closed  bool
	onTick  func()
}

func (m *recordingMusic) Update(time.Duration) {
	m.updates++
	if m.onTick != nil {
		m.onTick()
	}
}

func (m *recordingMusic) Close() error {
	m.closed = true
	return nil
}

type fixedListener struct {
	pos, forward, up audio.Vec3
	calls            int
}

func (l *fixedListener) Pose() (audio.Vec3, audio.Vec3, audio.Vec3) {
	l.calls++
	return l.pos, l.forward, l.up
}

func TestInitializeIdempotent(t *testing.T) {
	c, _ := newTestContext(t)
	m := c.Mixer()

	if err := c.Initialize(); err != nil {
		t.Fatalf("second initialize failed: %v", err)
	}
	if c.Mixer() != m {
		t.Error("second initialize should not rebuild the mixer")
	}
	if !c.IsInitialized() {
		t.Error("expected initialized")
	}
}

func TestInitializeWithoutBackend(t *testing.T) {
	c := New(nil, nil)
	if err := c.Initialize(); !errors.Is(err, ErrNoBackend) {
		t.Errorf("expected ErrNoBackend, got %v", err)
	}
}

func TestInitializeInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxSimultaneousSounds = 0

	c := New(cfg, backend.NewNull(0))
	err := c.Initialize()

	var cfgErr *config.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Field != "max_simultaneous_sounds" {
		t.Errorf("unexpected field %q", cfgErr.Field)
	}
}

func TestNotInitializedIsNoOp(t *testing.T) {
	b := backend.NewNull(0)
	c := New(config.Default(), b)

	h, err := c.PlayOneShot(&audio.Clip{Buffer: 1}, audio.ChannelSFX, 1)
	if h != nil || err != nil {
		t.Errorf("expected nil, nil; got %v, %v", h, err)
	}

	c.Update(time.Second)
	c.PauseAll()
	c.StopChannel(audio.ChannelSFX)
	c.SetChannelVolume(audio.ChannelMusic, 0.1)

	if got := c.ChannelVolume(audio.ChannelMusic); got != 0.8 {
		t.Errorf("expected config volume 0.8, got %f", got)
	}
	if _, err := c.LoadClip("x.wav"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if b.VoiceCount() != 0 {
		t.Error("uninitialized context touched the backend")
	}
}

func TestDestroy(t *testing.T) {
	music := &recordingMusic{}
	c, b := newTestContext(t, WithMusicLayer(music))
	clip := toneClip(t, c, time.Second)

	if _, err := c.PlayLooping(clip, audio.ChannelAmbient, 1); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	if err := c.Destroy(); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}
	if err := c.Destroy(); err != nil {
		t.Fatalf("second destroy failed: %v", err)
	}

	if !music.closed {
		t.Error("music layer should be closed")
	}
	if b.VoiceCount() != 0 || b.BufferCount() != 0 {
		t.Error("backend should be released")
	}
	if c.IsInitialized() {
		t.Error("context should not be initialized after destroy")
	}
	if err := c.Initialize(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
}

func TestUpdateOrder(t *testing.T) {
	music := &recordingMusic{}
	c, b := newTestContext(t, WithMusicLayer(music))
	clip := toneClip(t, c, 10*time.Second)

	h, _ := c.PlayOneShot(clip, audio.ChannelSFX, 1)
	c.FadeChannel(audio.ChannelSFX, 0, time.Second, nil)

	var seen float64
	music.onTick = func() {
		snap, _ := b.Voice(voiceOf(t, b))
		seen = snap.Volume
	}

	c.Update(500 * time.Millisecond)

	if music.updates != 1 {
		t.Fatalf("expected 1 music update, got %d", music.updates)
	}
	if math.Abs(seen-0.5) > 1e-9 {
		t.Errorf("music layer should see this tick's channel fade, got %f", seen)
	}
	if !h.IsPlaying() {
		t.Error("voice should still be playing")
	}
}

// voiceOf returns the single backend voice in b
func voiceOf(t *testing.T, b *backend.Null) backend.VoiceID {
	t.Helper()
	for id := backend.VoiceID(1); id < 64; id++ {
		if _, ok := b.Voice(id); ok {
			return id
		}
	}
	t.Fatal("no voice allocated")
	return 0
}

func TestPlayAtUsesConfiguredRolloff(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultRolloff = 2.5
	b := backend.NewNull(0)
	c := New(cfg, b)
	if err := c.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	clip := toneClip(t, c, time.Second)

	if _, err := c.PlayAt(clip, audio.Vec3{X: 4}, audio.ChannelSFX, 1); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	snap, _ := b.Voice(voiceOf(t, b))
	if snap.Attenuation.Rolloff != 2.5 {
		t.Errorf("expected rolloff 2.5, got %f", snap.Attenuation.Rolloff)
	}
	if snap.Position == nil || snap.Position.X != 4 {
		t.Errorf("expected position X=4, got %+v", snap.Position)
	}
}

func TestPauseChannelCascades(t *testing.T) {
	c, _ := newTestContext(t)
	clip := toneClip(t, c, 10*time.Second)

	music, _ := c.PlayOneShot(clip, audio.ChannelMusic, 1)
	sfx, _ := c.PlayOneShot(clip, audio.ChannelSFX, 1)

	c.PauseChannel(audio.ChannelMusic)
	if !c.IsChannelPaused(audio.ChannelMusic) {
		t.Error("channel flag should be set")
	}
	if !music.IsPaused() {
		t.Error("music voice should pause with its channel")
	}
	if sfx.IsPaused() {
		t.Error("sfx voice should keep playing")
	}

	// New voices on a paused channel start paused
	late, _ := c.PlayOneShot(clip, audio.ChannelMusic, 1)
	if !late.IsPaused() {
		t.Error("voice started on a paused channel should be paused")
	}

	c.ResumeChannel(audio.ChannelMusic)
	if !music.IsPlaying() || !late.IsPlaying() {
		t.Error("music voices should resume with their channel")
	}
}

func TestResumeAllClearsChannelPause(t *testing.T) {
	c, _ := newTestContext(t)
	clip := toneClip(t, c, 10*time.Second)

	h, _ := c.PlayOneShot(clip, audio.ChannelVoice, 1)
	c.PauseChannel(audio.ChannelVoice)
	c.ResumeAll()

	if c.IsChannelPaused(audio.ChannelVoice) {
		t.Error("ResumeAll should clear channel pause flags")
	}
	if !h.IsPlaying() {
		t.Error("voice should resume")
	}
}

func TestListenerRegistry(t *testing.T) {
	c, b := newTestContext(t)
	l := &fixedListener{
		pos:     audio.Vec3{X: 1, Y: 2, Z: 3},
		forward: audio.Vec3{X: 1},
		up:      audio.Vec3{Y: 1},
	}

	c.AttachListener(l)
	if c.Listener() != l {
		t.Fatal("listener not attached")
	}

	c.Update(16 * time.Millisecond)
	if got := b.Listener().Position; got != l.pos {
		t.Errorf("expected listener pushed, got %+v", got)
	}

	c.DetachListener()
	c.Update(16 * time.Millisecond)
	if l.calls != 1 {
		t.Errorf("detached listener was polled: %d calls", l.calls)
	}
	if c.Listener() != nil {
		t.Error("expected no listener")
	}
}

func TestChannelControls(t *testing.T) {
	c, _ := newTestContext(t)

	c.SetChannelVolume(audio.ChannelMusic, 0.3)
	if c.ChannelVolume(audio.ChannelMusic) != 0.3 {
		t.Errorf("expected 0.3, got %f", c.ChannelVolume(audio.ChannelMusic))
	}
	if c.Config().ChannelVolume(audio.ChannelMusic) != 0.3 {
		t.Error("instant volume should be written to config")
	}

	c.FadeChannel(audio.ChannelMusic, 1, time.Second, nil)
	c.Update(2 * time.Second)
	if c.ChannelVolume(audio.ChannelMusic) != 1 {
		t.Errorf("fade should land on 1, got %f", c.ChannelVolume(audio.ChannelMusic))
	}
	if c.Config().ChannelVolume(audio.ChannelMusic) != 0.3 {
		t.Error("fade must not write to config")
	}

	if !c.ToggleMute(audio.ChannelUI) || !c.IsMuted(audio.ChannelUI) {
		t.Error("toggle should mute")
	}
	c.Unmute(audio.ChannelUI)
	if c.IsMuted(audio.ChannelUI) {
		t.Error("unmute failed")
	}
}

func TestStopAllAndStats(t *testing.T) {
	c, b := newTestContext(t)
	clip := toneClip(t, c, time.Second)

	for i := 0; i < 3; i++ {
		if _, err := c.PlayOneShot(clip, audio.ChannelSFX, 1); err != nil {
			t.Fatalf("play failed: %v", err)
		}
	}
	c.StopAll()

	if b.VoiceCount() != 0 {
		t.Errorf("expected 0 voices, got %d", b.VoiceCount())
	}
	if c.Stats().Admitted != 3 {
		t.Errorf("expected 3 admitted, got %d", c.Stats().Admitted)
	}
}

func TestLoadClipFromWAV(t *testing.T) {
	c, b := newTestContext(t)

	path := filepath.Join(t.TempDir(), "blip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	enc := wav.NewEncoder(f, 8000, 16, 1, 1)
	data := make([]int, 800)
	if err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close encoder: %v", err)
	}
	f.Close()

	clip, err := c.LoadClip(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if clip.Name != "blip" {
		t.Errorf("expected name blip, got %q", clip.Name)
	}
	if clip.Duration != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %v", clip.Duration)
	}
	if !clip.Supports3D() {
		t.Error("mono clip should support 3D")
	}
	if b.BufferCount() != 1 {
		t.Errorf("expected 1 buffer, got %d", b.BufferCount())
	}
}

func TestLoadClipUnsupported(t *testing.T) {
	c, _ := newTestContext(t)

	_, err := c.LoadClip("readme.txt")
	if !errors.Is(err, decode.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestWithDecoder(t *testing.T) {
	want := decode.Tone(220, 50*time.Millisecond, 8000)
	c, _ := newTestContext(t, WithDecoder(func(string) (decode.Decoder, error) {
		return decode.Raw{SampleRate: 8000, Channels: 1, BitDepth: 16}, nil
	}))

	path := filepath.Join(t.TempDir(), "raw.pcm")
	if err := os.WriteFile(path, make([]byte, 2*want.Frames()), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	clip, err := c.LoadClip(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if clip.Duration != want.Duration() {
		t.Errorf("expected %v, got %v", want.Duration(), clip.Duration)
	}
}

func TestClipFromPCMFault(t *testing.T) {
	c, _ := newTestContext(t)

	_, err := c.ClipFromPCM("surround", &audio.PCM{SampleRate: 8000, Channels: 6})
	if !errors.Is(err, engine.ErrBackendFault) {
		t.Errorf("expected ErrBackendFault, got %v", err)
	}
}

func TestUnloadClip(t *testing.T) {
	c, b := newTestContext(t)
	clip := toneClip(t, c, time.Second)

	h, _ := c.PlayLooping(clip, audio.ChannelAmbient, 1)
	c.UnloadClip(clip)

	if h.Valid() {
		t.Error("voices of an unloaded clip should be released")
	}
	if b.BufferCount() != 0 {
		t.Errorf("expected buffer deleted, got %d", b.BufferCount())
	}

	h, err := c.PlayOneShot(clip, audio.ChannelSFX, 1)
	if h != nil || err != nil {
		t.Error("unloaded clip should be rejected as invalid input")
	}
}

func TestSaveConfigPersistsVolumes(t *testing.T) {
	c, _ := newTestContext(t)
	c.SetChannelVolume(audio.ChannelAmbient, 0.25)

	path := filepath.Join(t.TempDir(), "voicemix.yaml")
	if err := c.SaveConfig(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := loaded.ChannelVolume(audio.ChannelAmbient); got != 0.25 {
		t.Errorf("expected 0.25 after reload, got %f", got)
	}
}
