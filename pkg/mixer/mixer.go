// ABOUTME: Hierarchical volume mixer
// ABOUTME: Composes master, channel and source volume and routes channel commands
package mixer

import (
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/Resonate-Protocol/voicemix/pkg/config"
)

// Mixer owns one Bus per channel
type Mixer struct {
	buses [audio.ChannelCount]*Bus
	cfg   *config.Config
}

// New creates a mixer seeded from cfg. Instant volume changes are written
// back into cfg.
func New(cfg *config.Config) *Mixer {
	if cfg == nil {
		cfg = config.Default()
	}

	m := &Mixer{cfg: cfg}
	for _, ch := range audio.Channels() {
		m.buses[ch] = NewBus(ch, cfg.ChannelVolume(ch))
	}
	return m
}

// Bus returns the bus for ch, or nil for an unknown channel
func (m *Mixer) Bus(ch audio.Channel) *Bus {
	if !ch.Valid() {
		return nil
	}
	return m.buses[ch]
}

// Master returns the master bus
func (m *Mixer) Master() *Bus {
	return m.buses[audio.ChannelMaster]
}

// FinalVolume composes master × channel × source. It is 0 whenever the
// master or the channel is muted. Sources on the Master channel get
// master × source; the master volume is not applied twice.
func (m *Mixer) FinalVolume(ch audio.Channel, source float64) float64 {
	master := m.Master()
	if master.Muted() {
		return 0
	}
	if ch == audio.ChannelMaster {
		return master.Volume() * source
	}

	bus := m.Bus(ch)
	if bus == nil || bus.Muted() {
		return 0
	}
	return master.Volume() * bus.Volume() * source
}

// FinalVolumeAttenuated is FinalVolume scaled by an externally computed
// distance attenuation factor
func (m *Mixer) FinalVolumeAttenuated(ch audio.Channel, source, attenuation float64) float64 {
	return m.FinalVolume(ch, source) * attenuation
}

// SetVolume sets a channel volume instantly, cancels its fade and stores
// the value in the config
func (m *Mixer) SetVolume(ch audio.Channel, v float64) {
	bus := m.Bus(ch)
	if bus == nil {
		return
	}
	bus.SetVolume(v)
	m.cfg.SetChannelVolume(ch, bus.Volume())
}

// Volume returns the raw channel volume
func (m *Mixer) Volume(ch audio.Channel) float64 {
	bus := m.Bus(ch)
	if bus == nil {
		return 0
	}
	return bus.Volume()
}

// FadeVolume starts a channel fade. The config is not touched.
func (m *Mixer) FadeVolume(ch audio.Channel, target float64, duration time.Duration, onComplete func()) {
	bus := m.Bus(ch)
	if bus == nil {
		return
	}
	bus.FadeTo(target, duration, onComplete)
}

// Mute silences a channel without touching its volume
func (m *Mixer) Mute(ch audio.Channel) { m.setMuted(ch, true) }

// Unmute clears the channel mute flag
func (m *Mixer) Unmute(ch audio.Channel) { m.setMuted(ch, false) }

// ToggleMute flips the mute flag and returns the new state
func (m *Mixer) ToggleMute(ch audio.Channel) bool {
	bus := m.Bus(ch)
	if bus == nil {
		return false
	}
	bus.SetMuted(!bus.Muted())
	return bus.Muted()
}

// IsMuted reports the channel mute flag
func (m *Mixer) IsMuted(ch audio.Channel) bool {
	bus := m.Bus(ch)
	return bus != nil && bus.Muted()
}

// PauseChannel sets the channel pause flag. Voices are not touched here.
func (m *Mixer) PauseChannel(ch audio.Channel) { m.setPaused(ch, true) }

// ResumeChannel clears the channel pause flag
func (m *Mixer) ResumeChannel(ch audio.Channel) { m.setPaused(ch, false) }

// IsPaused reports the channel pause flag
func (m *Mixer) IsPaused(ch audio.Channel) bool {
	bus := m.Bus(ch)
	return bus != nil && bus.Paused()
}

// Update advances every bus fade, in channel order
func (m *Mixer) Update(dt time.Duration) {
	for _, bus := range m.buses {
		bus.Update(dt)
	}
}

// Config returns the config the mixer writes to
func (m *Mixer) Config() *config.Config {
	return m.cfg
}

func (m *Mixer) setMuted(ch audio.Channel, muted bool) {
	if bus := m.Bus(ch); bus != nil {
		bus.SetMuted(muted)
	}
}

func (m *Mixer) setPaused(ch audio.Channel, paused bool) {
	if bus := m.Bus(ch); bus != nil {
		bus.SetPaused(paused)
	}
}
