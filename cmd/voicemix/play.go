// ABOUTME: Play command
// ABOUTME: Plays audio files through the voice engine until they finish
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/voicemix/internal/logger"
	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/Resonate-Protocol/voicemix/pkg/engine"
	"github.com/Resonate-Protocol/voicemix/pkg/voicemix"
	"github.com/spf13/cobra"
)

var (
	playChannel  string
	playVolume   float64
	playPitch    float64
	playLoop     bool
	playPriority int
	playDelay    time.Duration
	playStagger  time.Duration
	playPosition []float64
)

var playCmd = &cobra.Command{
	Use:   "play FILE...",
	Short: "Play audio files",
	Long: `Play one or more audio files (mp3, wav, ogg, flac) through the voice engine.

Each file becomes one voice. Use --stagger to space out the starts and
--at x,y,z to place mono sounds in 3D space.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&playChannel, "channel", "c", "sfx", "mixer channel")
	playCmd.Flags().Float64Var(&playVolume, "volume", 1.0, "source volume")
	playCmd.Flags().Float64Var(&playPitch, "pitch", 1.0, "pitch multiplier")
	playCmd.Flags().BoolVar(&playLoop, "loop", false, "loop until interrupted")
	playCmd.Flags().IntVar(&playPriority, "priority", audio.PriorityDefault, "priority, 0 highest to 255 lowest")
	playCmd.Flags().DurationVar(&playDelay, "delay", 0, "delay before the first voice starts")
	playCmd.Flags().DurationVar(&playStagger, "stagger", 0, "extra delay between consecutive files")
	playCmd.Flags().Float64SliceVar(&playPosition, "at", nil, "3D position x,y,z")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ch, err := audio.ParseChannel(playChannel)
	if err != nil {
		return err
	}
	if playPosition != nil && len(playPosition) != 3 {
		return fmt.Errorf("--at needs exactly 3 values, got %d", len(playPosition))
	}

	log := logger.WithComponent("play")
	b, err := openBackend(slog.Default())
	if err != nil {
		return err
	}

	actx := voicemix.New(cfg, b)
	if err := actx.Initialize(); err != nil {
		return err
	}
	defer actx.Destroy()

	for i, path := range args {
		clip, err := actx.LoadClip(path)
		if err != nil {
			return err
		}

		builder := audio.NewRequest().
			Channel(ch).
			Volume(playVolume).
			Pitch(playPitch).
			Loop(playLoop).
			Priority(playPriority).
			Delay(playDelay + time.Duration(i)*playStagger).
			Rolloff(cfg.DefaultRolloff)
		if playPosition != nil {
			builder.At(audio.Vec3{X: playPosition[0], Y: playPosition[1], Z: playPosition[2]})
		}

		before := actx.Stats()
		h, err := actx.Play(clip, builder.Build())
		if err != nil {
			return err
		}
		if h == nil {
			log.Warn("Skipping file", "file", path, "reason", dropReason(before, actx.Stats()))
			continue
		}
		log.Info("Playing", "file", path, "duration", clip.Duration, "channel", ch)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runFrames(sigCtx, actx)
}

// dropReason explains why Play returned no handle
func dropReason(before, after engine.Stats) string {
	switch {
	case after.Rejected > before.Rejected:
		return "voice pool full"
	case after.Invalid > before.Invalid:
		return "invalid request"
	default:
		return "not started"
	}
}

// runFrames ticks the context until every voice has finished or ctx ends
func runFrames(ctx context.Context, actx *voicemix.Context) error {
	const frame = 16 * time.Millisecond

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Interrupted, stopping playback")
			return nil
		case now := <-ticker.C:
			actx.Update(now.Sub(last))
			last = now
			if actx.Engine().ActiveCount() == 0 {
				return nil
			}
		}
	}
}
