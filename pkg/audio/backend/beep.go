// ABOUTME: Beep-based backend implementation
// ABOUTME: Each voice is a Ctrl/Gain/Pan/Resampler chain on the beep speaker
package backend

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

type beepVoice struct {
	buffer    audio.BufferID
	cur       *cursor
	resampler *beep.Resampler
	pan       *effects.Pan
	gain      *effects.Gain
	ctrl      *beep.Ctrl
	ratio     float64

	volume  float64
	atten   float64
	spatial bool
	pos     audio.Vec3
	att     audio.Attenuation

	started bool
	paused  bool
	stopped bool
	done    atomic.Bool // set from the speaker goroutine
}

// Beep plays voices through the beep speaker
type Beep struct {
	opts       Options
	sampleRate beep.SampleRate
	buffers    map[audio.BufferID]*audio.PCM
	voices     map[VoiceID]*beepVoice
	nextBuffer uint32
	nextVoice  uint32
	listener   Listener
	logger     *slog.Logger
	closed     bool
}

// NewBeep initializes the speaker
func NewBeep(opts Options, logger *slog.Logger) (*Beep, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	sr := beep.SampleRate(opts.SampleRate)
	if err := speaker.Init(sr, sr.N(opts.BufferSize)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}

	logger.Info("Audio output initialized",
		slog.String("backend", "beep"),
		slog.Int("sample_rate", opts.SampleRate))

	return &Beep{
		opts:       opts,
		sampleRate: sr,
		buffers:    make(map[audio.BufferID]*audio.PCM),
		voices:     make(map[VoiceID]*beepVoice),
		listener:   DefaultListener(),
		logger:     logger.With("component", "backend.beep"),
	}, nil
}

func (b *Beep) CreateBuffer(pcm *audio.PCM) (audio.BufferID, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if pcm == nil || pcm.Channels < 1 || pcm.Channels > 2 {
		return 0, ErrUnsupportedChannel
	}

	b.nextBuffer++
	id := audio.BufferID(b.nextBuffer)
	b.buffers[id] = pcm
	return id, nil
}

func (b *Beep) DeleteBuffer(id audio.BufferID) {
	delete(b.buffers, id)
}

func (b *Beep) CreateVoice() (VoiceID, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if b.opts.MaxVoices > 0 && len(b.voices) >= b.opts.MaxVoices {
		return 0, fmt.Errorf("%d streamers in use: %w", len(b.voices), ErrResourceExhausted)
	}

	b.nextVoice++
	id := VoiceID(b.nextVoice)
	b.voices[id] = &beepVoice{volume: 1, atten: 1}
	return id, nil
}

func (b *Beep) DeleteVoice(id VoiceID) {
	if _, ok := b.voices[id]; !ok {
		return
	}
	b.Stop(id)
	delete(b.voices, id)
}

func (b *Beep) BindBuffer(id VoiceID, buf audio.BufferID) error {
	v, ok := b.voices[id]
	if !ok {
		return ErrUnknownVoice
	}
	pcm, ok := b.buffers[buf]
	if !ok {
		return ErrUnknownBuffer
	}
	if v.started {
		b.Stop(id)
	}

	// The cursor runs at the source rate; the resampler handles rate and pitch
	v.buffer = buf
	v.cur = newCursor(pcm, pcm.SampleRate)
	v.ratio = float64(pcm.SampleRate) / float64(b.sampleRate)
	v.resampler = beep.ResampleRatio(4, v.ratio, &cursorStreamer{cur: v.cur})
	v.pan = &effects.Pan{Streamer: v.resampler, Pan: 0}
	v.gain = &effects.Gain{Streamer: v.pan, Gain: 0}
	v.ctrl = &beep.Ctrl{Streamer: v.gain}
	v.started = false
	v.paused = false
	v.stopped = false
	v.done.Store(false)
	b.applyVolume(v)
	return nil
}

func (b *Beep) Play(id VoiceID) {
	v, ok := b.voices[id]
	if !ok || v.ctrl == nil {
		return
	}

	if v.started && !v.stopped && !v.done.Load() {
		speaker.Lock()
		v.ctrl.Paused = false
		speaker.Unlock()
		v.paused = false
		return
	}

	if v.stopped || v.done.Load() {
		v.cur.seek(0)
	}

	speaker.Lock()
	v.ctrl.Streamer = v.gain
	v.ctrl.Paused = false
	speaker.Unlock()

	v.started = true
	v.paused = false
	v.stopped = false
	v.done.Store(false)

	speaker.Play(beep.Seq(v.ctrl, beep.Callback(func() {
		v.done.Store(true)
	})))
}

func (b *Beep) Pause(id VoiceID) {
	v, ok := b.voices[id]
	if !ok || !b.IsPlaying(id) {
		return
	}
	speaker.Lock()
	v.ctrl.Paused = true
	speaker.Unlock()
	v.paused = true
}

func (b *Beep) Stop(id VoiceID) {
	v, ok := b.voices[id]
	if !ok || v.ctrl == nil {
		return
	}
	// A Ctrl without a streamer ends, so the sequence reaches its callback
	speaker.Lock()
	v.ctrl.Streamer = nil
	v.ctrl.Paused = false
	speaker.Unlock()
	v.paused = false
	v.stopped = true
}

func (b *Beep) IsPlaying(id VoiceID) bool {
	v, ok := b.voices[id]
	return ok && v.started && !v.stopped && !v.paused && !v.done.Load()
}

func (b *Beep) IsPaused(id VoiceID) bool {
	v, ok := b.voices[id]
	return ok && v.paused && !v.stopped && !v.done.Load()
}

func (b *Beep) SetVolume(id VoiceID, volume float64) {
	v, ok := b.voices[id]
	if !ok {
		return
	}
	v.volume = volume
	b.applyVolume(v)
}

func (b *Beep) SetPitch(id VoiceID, pitch float64) {
	v, ok := b.voices[id]
	if !ok || v.resampler == nil {
		return
	}
	if pitch <= 0 {
		pitch = 1
	}
	speaker.Lock()
	v.resampler.SetRatio(v.ratio * pitch)
	speaker.Unlock()
}

func (b *Beep) SetLooping(id VoiceID, loop bool) {
	if v, ok := b.voices[id]; ok && v.cur != nil {
		v.cur.setLoop(loop)
	}
}

func (b *Beep) SetPosition(id VoiceID, pos audio.Vec3) {
	v, ok := b.voices[id]
	if !ok {
		return
	}
	v.spatial = true
	v.pos = pos
	b.spatialize(v)
}

func (b *Beep) SetAttenuation(id VoiceID, att audio.Attenuation) {
	v, ok := b.voices[id]
	if !ok {
		return
	}
	v.att = att
	b.spatialize(v)
}

func (b *Beep) Offset(id VoiceID) time.Duration {
	if v, ok := b.voices[id]; ok && v.cur != nil {
		return v.cur.offset()
	}
	return 0
}

func (b *Beep) SetOffset(id VoiceID, offset time.Duration) {
	if v, ok := b.voices[id]; ok && v.cur != nil {
		v.cur.seek(offset)
	}
}

func (b *Beep) SetListenerPosition(pos audio.Vec3) {
	b.listener.Position = pos
	b.respatialize()
}

func (b *Beep) SetListenerOrientation(forward, up audio.Vec3) {
	b.listener.Forward = forward
	b.listener.Up = up
	b.respatialize()
}

func (b *Beep) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	speaker.Clear()
	speaker.Close()

	b.voices = make(map[VoiceID]*beepVoice)
	b.buffers = make(map[audio.BufferID]*audio.PCM)
	return nil
}

func (b *Beep) respatialize() {
	for _, v := range b.voices {
		if v.spatial {
			b.spatialize(v)
		}
	}
}

func (b *Beep) spatialize(v *beepVoice) {
	if !v.spatial || v.pan == nil {
		return
	}
	gain, pan := b.listener.Spatialize(v.pos, v.att)
	v.atten = gain

	speaker.Lock()
	v.pan.Pan = pan
	speaker.Unlock()

	b.applyVolume(v)
}

func (b *Beep) applyVolume(v *beepVoice) {
	if v.gain == nil {
		return
	}
	// effects.Gain scales by (1 + Gain)
	speaker.Lock()
	v.gain.Gain = v.volume*v.atten - 1
	speaker.Unlock()
}

// cursorStreamer adapts a cursor to beep.Streamer
type cursorStreamer struct {
	cur *cursor
}

func (s *cursorStreamer) Stream(samples [][2]float64) (int, bool) {
	s.cur.mu.Lock()
	defer s.cur.mu.Unlock()

	n := 0
	for n < len(samples) {
		l, r, ok := s.cur.next()
		if !ok {
			break
		}
		samples[n][0] = l
		samples[n][1] = r
		n++
	}
	if n == 0 {
		return 0, false
	}
	return n, true
}

func (s *cursorStreamer) Err() error { return nil }
