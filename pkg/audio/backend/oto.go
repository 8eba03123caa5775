// ABOUTME: Oto-based backend implementation
// ABOUTME: One oto player per voice, fed by a resampling PCM reader
package backend

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

type otoVoice struct {
	buffer  audio.BufferID
	cur     *cursor
	reader  *otoReader
	player  *oto.Player
	volume  float64
	gain    float64 // distance attenuation
	spatial bool
	pos     audio.Vec3
	att     audio.Attenuation
	paused  bool
	stopped bool
}

// Oto plays voices through an oto context
type Oto struct {
	opts       Options
	ctx        *oto.Context
	buffers    map[audio.BufferID]*audio.PCM
	voices     map[VoiceID]*otoVoice
	nextBuffer uint32
	nextVoice  uint32
	listener   Listener
	logger     *slog.Logger
	closed     bool
}

// NewOto opens the oto context. Oto allows one context per process.
func NewOto(opts Options, logger *slog.Logger) (*Oto, error) {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	op := &oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: opts.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   opts.BufferSize,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	logger.Info("Audio output initialized",
		slog.String("backend", "oto"),
		slog.Int("sample_rate", opts.SampleRate),
		slog.Int("channels", opts.Channels))

	return &Oto{
		opts:     opts,
		ctx:      ctx,
		buffers:  make(map[audio.BufferID]*audio.PCM),
		voices:   make(map[VoiceID]*otoVoice),
		listener: DefaultListener(),
		logger:   logger.With("component", "backend.oto"),
	}, nil
}

func (o *Oto) CreateBuffer(pcm *audio.PCM) (audio.BufferID, error) {
	if o.closed {
		return 0, ErrClosed
	}
	if pcm == nil || pcm.Channels < 1 || pcm.Channels > 2 {
		return 0, ErrUnsupportedChannel
	}

	o.nextBuffer++
	id := audio.BufferID(o.nextBuffer)
	o.buffers[id] = pcm
	return id, nil
}

func (o *Oto) DeleteBuffer(id audio.BufferID) {
	delete(o.buffers, id)
}

func (o *Oto) CreateVoice() (VoiceID, error) {
	if o.closed {
		return 0, ErrClosed
	}
	if o.opts.MaxVoices > 0 && len(o.voices) >= o.opts.MaxVoices {
		return 0, fmt.Errorf("%d players in use: %w", len(o.voices), ErrResourceExhausted)
	}

	o.nextVoice++
	id := VoiceID(o.nextVoice)
	o.voices[id] = &otoVoice{volume: 1, gain: 1}
	return id, nil
}

func (o *Oto) DeleteVoice(id VoiceID) {
	v, ok := o.voices[id]
	if !ok {
		return
	}
	o.closePlayer(v)
	delete(o.voices, id)
}

func (o *Oto) BindBuffer(id VoiceID, buf audio.BufferID) error {
	v, ok := o.voices[id]
	if !ok {
		return ErrUnknownVoice
	}
	pcm, ok := o.buffers[buf]
	if !ok {
		return ErrUnknownBuffer
	}

	o.closePlayer(v)

	v.buffer = buf
	v.cur = newCursor(pcm, o.opts.SampleRate)
	v.reader = &otoReader{cur: v.cur, channels: o.opts.Channels}
	v.player = o.ctx.NewPlayer(v.reader)
	v.player.SetVolume(0)
	v.paused = false
	v.stopped = false
	return nil
}

func (o *Oto) Play(id VoiceID) {
	v, ok := o.voices[id]
	if !ok || v.player == nil {
		return
	}
	if v.stopped {
		// Drop anything oto buffered before the stop
		if _, err := v.player.Seek(0, io.SeekCurrent); err != nil {
			o.logger.Debug("Rewind failed", slog.Any("error", err))
		}
		v.stopped = false
	}
	v.paused = false
	o.applyVolume(v)
	v.player.Play()
}

func (o *Oto) Pause(id VoiceID) {
	v, ok := o.voices[id]
	if !ok || v.player == nil || !v.player.IsPlaying() {
		return
	}
	v.player.Pause()
	v.paused = true
}

func (o *Oto) Stop(id VoiceID) {
	v, ok := o.voices[id]
	if !ok || v.player == nil {
		return
	}
	v.player.Pause()
	v.cur.seek(0)
	v.paused = false
	v.stopped = true
}

func (o *Oto) IsPlaying(id VoiceID) bool {
	v, ok := o.voices[id]
	return ok && v.player != nil && !v.stopped && v.player.IsPlaying()
}

func (o *Oto) IsPaused(id VoiceID) bool {
	v, ok := o.voices[id]
	return ok && v.paused && !v.stopped
}

func (o *Oto) SetVolume(id VoiceID, volume float64) {
	v, ok := o.voices[id]
	if !ok {
		return
	}
	v.volume = volume
	o.applyVolume(v)
}

func (o *Oto) SetPitch(id VoiceID, pitch float64) {
	if v, ok := o.voices[id]; ok && v.cur != nil {
		v.cur.setPitch(pitch)
	}
}

func (o *Oto) SetLooping(id VoiceID, loop bool) {
	if v, ok := o.voices[id]; ok && v.cur != nil {
		v.cur.setLoop(loop)
	}
}

func (o *Oto) SetPosition(id VoiceID, pos audio.Vec3) {
	v, ok := o.voices[id]
	if !ok {
		return
	}
	v.spatial = true
	v.pos = pos
	o.spatialize(v)
}

func (o *Oto) SetAttenuation(id VoiceID, att audio.Attenuation) {
	v, ok := o.voices[id]
	if !ok {
		return
	}
	v.att = att
	o.spatialize(v)
}

func (o *Oto) Offset(id VoiceID) time.Duration {
	if v, ok := o.voices[id]; ok && v.cur != nil {
		return v.cur.offset()
	}
	return 0
}

func (o *Oto) SetOffset(id VoiceID, offset time.Duration) {
	v, ok := o.voices[id]
	if !ok || v.player == nil {
		return
	}
	v.cur.seek(offset)
	// A zero relative seek keeps the cursor and flushes oto's buffer
	if _, err := v.player.Seek(0, io.SeekCurrent); err != nil {
		o.logger.Debug("Seek failed", slog.Any("error", err))
	}
}

func (o *Oto) SetListenerPosition(pos audio.Vec3) {
	o.listener.Position = pos
	o.respatialize()
}

func (o *Oto) SetListenerOrientation(forward, up audio.Vec3) {
	o.listener.Forward = forward
	o.listener.Up = up
	o.respatialize()
}

func (o *Oto) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true

	var errs []error
	for id, v := range o.voices {
		if err := o.closePlayer(v); err != nil {
			errs = append(errs, err)
		}
		delete(o.voices, id)
	}
	o.buffers = make(map[audio.BufferID]*audio.PCM)

	if err := o.ctx.Suspend(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (o *Oto) closePlayer(v *otoVoice) error {
	if v.player == nil {
		return nil
	}
	v.player.Pause()
	err := v.player.Close()
	v.player = nil
	return err
}

func (o *Oto) respatialize() {
	for _, v := range o.voices {
		if v.spatial {
			o.spatialize(v)
		}
	}
}

func (o *Oto) spatialize(v *otoVoice) {
	if !v.spatial || v.cur == nil {
		return
	}
	gain, pan := o.listener.Spatialize(v.pos, v.att)
	v.gain = gain
	v.cur.setPan(pan)
	o.applyVolume(v)
}

func (o *Oto) applyVolume(v *otoVoice) {
	if v.player == nil {
		return
	}
	vol := v.volume * v.gain
	if vol > 1 {
		vol = 1
	}
	if vol < 0 {
		vol = 0
	}
	v.player.SetVolume(vol)
}

// otoReader renders cursor frames as interleaved int16 little-endian bytes
type otoReader struct {
	cur      *cursor
	channels int
}

func (r *otoReader) Read(p []byte) (int, error) {
	frameSize := 2 * r.channels

	r.cur.mu.Lock()
	defer r.cur.mu.Unlock()

	lg, rg := panGains(r.cur.pan)

	n := 0
	for n+frameSize <= len(p) {
		left, right, ok := r.cur.next()
		if !ok {
			break
		}
		if r.channels == 1 {
			putSample(p[n:], (left+right)/2)
		} else {
			putSample(p[n:], left*lg)
			putSample(p[n+2:], right*rg)
		}
		n += frameSize
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Seek implements io.Seeker in output byte space so oto can flush
func (r *otoReader) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		if offset < 0 {
			return 0, fmt.Errorf("negative offset: %d", offset)
		}
		r.cur.seekFrames(offset / int64(2*r.channels))
		return offset, nil
	case io.SeekCurrent:
		if offset != 0 {
			return 0, fmt.Errorf("relative seek not supported: %d", offset)
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported whence: %d", whence)
	}
}

func putSample(b []byte, v float64) {
	s := audio.SampleToInt16(audio.SampleFromFloat(v))
	binary.LittleEndian.PutUint16(b, uint16(s))
}
