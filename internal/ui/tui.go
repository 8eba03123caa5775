// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the mixer board
package ui

import (
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/Resonate-Protocol/voicemix/pkg/voicemix"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultFrame is the board's update interval
const DefaultFrame = 16 * time.Millisecond

// NewModel creates a board for an initialized context. clips maps each
// channel to the test sound played by the space key.
func NewModel(ctx *voicemix.Context, clips map[audio.Channel]*audio.Clip, frame time.Duration) Model {
	if frame <= 0 {
		frame = DefaultFrame
	}
	if clips == nil {
		clips = make(map[audio.Channel]*audio.Clip)
	}
	return Model{
		ctx:   ctx,
		clips: clips,
		frame: frame,
	}
}

// Run shows the board until the user quits
func Run(ctx *voicemix.Context, clips map[audio.Channel]*audio.Clip) error {
	if !ctx.IsInitialized() {
		return voicemix.ErrNotInitialized
	}
	p := tea.NewProgram(NewModel(ctx, clips, DefaultFrame), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
