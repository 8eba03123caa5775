// ABOUTME: Bubbletea model for the mixer board
// ABOUTME: Drives a voicemix Context from keyboard input and a frame ticker
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/Resonate-Protocol/voicemix/pkg/voicemix"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	volumeStep  = 0.05
	fadeEpsilon = 0.001
)

// Model represents the board state
type Model struct {
	ctx   *voicemix.Context
	clips map[audio.Channel]*audio.Clip

	// Frame clock
	frame    time.Duration
	lastTick time.Time

	// Board
	selected int
	status   string
	quitting bool

	// Dimensions
	width  int
	height int
}

type tickMsg time.Time

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the frame ticker
func (m Model) Init() tea.Cmd {
	return tickEvery(m.frame)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.tick(time.Time(msg))
		return m, tickEvery(m.frame)
	}

	return m, nil
}

// tick advances the audio context by the real time since the last frame
func (m *Model) tick(now time.Time) {
	dt := m.frame
	if !m.lastTick.IsZero() {
		dt = now.Sub(m.lastTick)
	}
	m.lastTick = now
	m.ctx.Update(dt)
}

func (m Model) channel() audio.Channel {
	return audio.Channels()[m.selected]
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ch := m.channel()
	count := len(audio.Channels())

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.ctx.StopAll()
		return m, tea.Quit
	case "up", "k":
		m.selected = (m.selected + count - 1) % count
	case "down", "j":
		m.selected = (m.selected + 1) % count
	case "right", "+", "=":
		m.ctx.SetChannelVolume(ch, m.ctx.ChannelVolume(ch)+volumeStep)
	case "left", "-":
		m.ctx.SetChannelVolume(ch, m.ctx.ChannelVolume(ch)-volumeStep)
	case "m":
		if m.ctx.ToggleMute(ch) {
			m.status = fmt.Sprintf("%s muted", ch)
		} else {
			m.status = fmt.Sprintf("%s unmuted", ch)
		}
	case "p":
		if m.ctx.IsChannelPaused(ch) {
			m.ctx.ResumeChannel(ch)
			m.status = fmt.Sprintf("%s resumed", ch)
		} else {
			m.ctx.PauseChannel(ch)
			m.status = fmt.Sprintf("%s paused", ch)
		}
	case "f":
		m.fade(ch)
	case " ", "enter":
		m.play(ch)
	case "s":
		m.ctx.StopChannel(ch)
		m.status = fmt.Sprintf("%s stopped", ch)
	case "S":
		m.ctx.StopAll()
		m.status = "all voices stopped"
	}

	return m, nil
}

// fade toggles a channel between silence and its stored volume
func (m *Model) fade(ch audio.Channel) {
	cfg := m.ctx.Config()
	target := 0.0
	if m.ctx.ChannelVolume(ch) < fadeEpsilon {
		target = cfg.ChannelVolume(ch)
	}
	m.ctx.FadeChannel(ch, target, cfg.CrossfadeDuration, nil)
	m.status = fmt.Sprintf("%s fading to %.0f%%", ch, target*100)
}

func (m *Model) play(ch audio.Channel) {
	clip := m.clips[ch]
	if clip == nil {
		m.status = fmt.Sprintf("no test sound for %s", ch)
		return
	}

	h, err := m.ctx.PlayOneShot(clip, ch, 1.0)
	switch {
	case err != nil:
		m.status = fmt.Sprintf("playback failed: %v", err)
	case h == nil:
		m.status = "voice pool full"
	default:
		m.status = fmt.Sprintf("playing %s on %s", clip.Name, ch)
	}
}

// View renders the board
func (m Model) View() string {
	if m.quitting {
		return "Stopping audio...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250"))

	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("220"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("voicemix board"))
	b.WriteString("\n\n")

	for i, ch := range audio.Channels() {
		b.WriteString(m.renderChannel(ch, i == m.selected, selectedStyle, valueStyle))
		b.WriteString("\n")
	}

	stats := m.ctx.Stats()
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Voices: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d/%d", m.activeVoices(), m.ctx.Config().MaxSimultaneousSounds)))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Stats:  "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("admitted %d  stolen %d  rejected %d  faults %d",
		stats.Admitted, stats.Stolen, stats.Rejected, stats.Faults)))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(valueStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(
		"↑/↓:Channel  ←/→:Volume  m:Mute  p:Pause  f:Fade  space:Play  s:Stop  q:Quit"))

	return b.String()
}

func (m Model) renderChannel(ch audio.Channel, selected bool, selStyle, valStyle lipgloss.Style) string {
	cursor := "  "
	name := fmt.Sprintf("%-8s", ch)
	if selected {
		cursor = "> "
		name = selStyle.Render(name)
	}

	volume := int(m.ctx.ChannelVolume(ch)*100 + 0.5)

	var flags []string
	if m.ctx.IsMuted(ch) {
		flags = append(flags, "muted")
	}
	if m.ctx.IsChannelPaused(ch) {
		flags = append(flags, "paused")
	}
	if bus := m.ctx.Mixer().Bus(ch); bus != nil && bus.Fading() {
		flags = append(flags, "fading")
	}

	voices := ""
	if ch != audio.ChannelMaster {
		voices = fmt.Sprintf("%2d voices", m.ctx.Engine().ChannelCount(ch))
	}

	return fmt.Sprintf("%s%s [%s] %3d%% %s %s",
		cursor, name, renderBar(volume, 100, 20), volume,
		valStyle.Render(voices), strings.Join(flags, " "))
}

func (m Model) activeVoices() int {
	return m.ctx.Engine().ActiveCount()
}

func renderBar(value, max, width int) string {
	filled := (value * width) / max
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
