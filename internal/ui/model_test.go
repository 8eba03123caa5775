// ABOUTME: Tests for the mixer board model
// ABOUTME: Tests key handling, frame ticks and rendering against a Null backend
package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/Resonate-Protocol/voicemix/pkg/audio/backend"
	"github.com/Resonate-Protocol/voicemix/pkg/audio/decode"
	"github.com/Resonate-Protocol/voicemix/pkg/config"
	"github.com/Resonate-Protocol/voicemix/pkg/voicemix"
	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	ctx := voicemix.New(config.Default(), backend.NewNull(0))
	if err := ctx.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	clip, err := ctx.ClipFromPCM("beep", decode.Tone(880, time.Second, 8000))
	if err != nil {
		t.Fatalf("failed to load clip: %v", err)
	}
	clips := map[audio.Channel]*audio.Clip{audio.ChannelSFX: clip}
	return NewModel(ctx, clips, 0)
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

// selectChannel moves the cursor to ch
func selectChannel(m Model, ch audio.Channel) Model {
	for m.channel() != ch {
		m = press(m, "down")
	}
	return m
}

func TestNewModel(t *testing.T) {
	model := newTestModel(t)

	if model.frame != DefaultFrame {
		t.Errorf("expected default frame %v, got %v", DefaultFrame, model.frame)
	}
	if model.channel() != audio.ChannelMaster {
		t.Errorf("expected master selected, got %s", model.channel())
	}
	if model.quitting {
		t.Error("expected quitting to be false initially")
	}
}

func TestSelectionWraps(t *testing.T) {
	model := newTestModel(t)

	model = press(model, "up")
	if model.channel() != audio.ChannelUI {
		t.Errorf("expected wrap to last channel, got %s", model.channel())
	}

	model = press(model, "down")
	if model.channel() != audio.ChannelMaster {
		t.Errorf("expected wrap to master, got %s", model.channel())
	}
}

func TestVolumeKeys(t *testing.T) {
	model := selectChannel(newTestModel(t), audio.ChannelMusic)

	model = press(model, "right")
	if got := model.ctx.ChannelVolume(audio.ChannelMusic); got < 0.849 || got > 0.851 {
		t.Errorf("expected 0.85, got %f", got)
	}

	for i := 0; i < 30; i++ {
		model = press(model, "left")
	}
	if got := model.ctx.ChannelVolume(audio.ChannelMusic); got != 0 {
		t.Errorf("expected clamp to 0, got %f", got)
	}
}

func TestMuteKey(t *testing.T) {
	model := selectChannel(newTestModel(t), audio.ChannelSFX)

	model = press(model, "m")
	if !model.ctx.IsMuted(audio.ChannelSFX) {
		t.Error("expected sfx muted")
	}
	if model.status != "sfx muted" {
		t.Errorf("unexpected status %q", model.status)
	}

	model = press(model, "m")
	if model.ctx.IsMuted(audio.ChannelSFX) {
		t.Error("expected sfx unmuted")
	}
}

func TestPlayAndPauseKeys(t *testing.T) {
	model := selectChannel(newTestModel(t), audio.ChannelSFX)

	model = press(model, "space")
	if model.ctx.Engine().ChannelCount(audio.ChannelSFX) != 1 {
		t.Fatal("space should play the channel test sound")
	}

	model = press(model, "p")
	if !model.ctx.IsChannelPaused(audio.ChannelSFX) {
		t.Error("expected sfx paused")
	}

	model = press(model, "p")
	if model.ctx.IsChannelPaused(audio.ChannelSFX) {
		t.Error("expected sfx resumed")
	}
}

func TestPlayWithoutClip(t *testing.T) {
	model := selectChannel(newTestModel(t), audio.ChannelVoice)

	model = press(model, "space")
	if !strings.Contains(model.status, "no test sound") {
		t.Errorf("unexpected status %q", model.status)
	}
}

func TestStopKeyDefersToTick(t *testing.T) {
	model := selectChannel(newTestModel(t), audio.ChannelSFX)
	model = press(model, "space")
	model = press(model, "s")

	if model.ctx.Engine().ChannelCount(audio.ChannelSFX) != 1 {
		t.Error("stopped voices stay tracked until the next frame")
	}

	next, _ := model.Update(tickMsg(time.Now()))
	model = next.(Model)
	if model.ctx.Engine().ChannelCount(audio.ChannelSFX) != 0 {
		t.Error("tick should prune stopped voices")
	}
}

func TestFadeKeyAdvancesWithTicks(t *testing.T) {
	model := selectChannel(newTestModel(t), audio.ChannelAmbient)
	model = press(model, "f")

	start := time.Now()
	next, _ := model.Update(tickMsg(start))
	model = next.(Model)
	next, _ = model.Update(tickMsg(start.Add(3 * time.Second)))
	model = next.(Model)

	if got := model.ctx.ChannelVolume(audio.ChannelAmbient); got != 0 {
		t.Errorf("expected fade to silence, got %f", got)
	}

	// A second press fades back to the stored volume
	model = press(model, "f")
	next, _ = model.Update(tickMsg(start.Add(6 * time.Second)))
	model = next.(Model)
	if got := model.ctx.ChannelVolume(audio.ChannelAmbient); got != 0.7 {
		t.Errorf("expected fade back to 0.7, got %f", got)
	}
}

func TestTickReturnsNextTick(t *testing.T) {
	model := newTestModel(t)

	_, cmd := model.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
}

func TestQuitKey(t *testing.T) {
	model := newTestModel(t)

	next, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !next.(Model).quitting {
		t.Error("expected quitting state")
	}
	if next.(Model).View() != "Stopping audio...\n" {
		t.Error("unexpected quitting view")
	}
}

func TestViewListsChannels(t *testing.T) {
	model := newTestModel(t)
	view := model.View()

	for _, ch := range audio.Channels() {
		if !strings.Contains(view, ch.String()) {
			t.Errorf("view missing channel %s", ch)
		}
	}
	if !strings.Contains(view, "0/32") {
		t.Error("view should show voice budget")
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{0, "░░░░░░░░░░"},
		{50, "█████░░░░░"},
		{100, "██████████"},
		{150, "██████████"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, 100, 10); got != tt.want {
			t.Errorf("renderBar(%d) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
