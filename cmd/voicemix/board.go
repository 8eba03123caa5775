// ABOUTME: Interactive mixer board command
// ABOUTME: Runs the bubbletea board with a test tone per channel
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Resonate-Protocol/voicemix/internal/logger"
	"github.com/Resonate-Protocol/voicemix/internal/ui"
	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/Resonate-Protocol/voicemix/pkg/audio/decode"
	"github.com/Resonate-Protocol/voicemix/pkg/voicemix"
	"github.com/spf13/cobra"
)

var boardLogFile string

// Test tone per channel, roughly a major chord so channels are audible apart
var boardTones = map[audio.Channel]float64{
	audio.ChannelMusic:   261.63,
	audio.ChannelSFX:     329.63,
	audio.ChannelVoice:   392.00,
	audio.ChannelAmbient: 196.00,
	audio.ChannelUI:      523.25,
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive mixer board",
	Long:  "Open a terminal mixer board with per-channel volume, mute, pause and fade controls.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The board owns the terminal, so logs go to a file
		f, err := os.OpenFile(boardLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log := logger.New(f, cfg.Logging.Level, cfg.Logging.Format)

		b, err := openBackend(log)
		if err != nil {
			return err
		}

		ctx := voicemix.New(cfg, b, voicemix.WithLogger(log))
		if err := ctx.Initialize(); err != nil {
			return err
		}
		defer ctx.Destroy()

		clips := make(map[audio.Channel]*audio.Clip)
		for ch, freq := range boardTones {
			clip, err := ctx.ClipFromPCM(ch.String()+"-tone", decode.Tone(freq, 750*time.Millisecond, cfg.Backend.SampleRate))
			if err != nil {
				return err
			}
			clips[ch] = clip
		}

		return ui.Run(ctx, clips)
	},
}

func init() {
	boardCmd.Flags().StringVar(&boardLogFile, "log-file", "voicemix.log", "log file path")
}
