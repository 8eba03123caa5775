// ABOUTME: Configuration commands
// ABOUTME: Shows, validates and writes voicemix configuration
package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Commands for inspecting and writing voicemix configuration.",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the configuration values from file, environment and flags.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Current Configuration:")
		fmt.Fprintf(out, "  Mixer:\n")
		fmt.Fprintf(out, "    Master: %.2f\n", cfg.MasterVolume)

		names := make([]string, 0, len(cfg.ChannelVolumes))
		for name := range cfg.ChannelVolumes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "    %s: %.2f\n", name, cfg.ChannelVolumes[name])
		}

		fmt.Fprintf(out, "  Engine:\n")
		fmt.Fprintf(out, "    Max simultaneous sounds: %d\n", cfg.MaxSimultaneousSounds)
		fmt.Fprintf(out, "    Default rolloff: %.2f\n", cfg.DefaultRolloff)
		fmt.Fprintf(out, "    Crossfade: %s\n", cfg.CrossfadeDuration)
		fmt.Fprintf(out, "    Reverb: %t\n", cfg.ReverbEnabled)
		fmt.Fprintf(out, "  Backend:\n")
		fmt.Fprintf(out, "    Name: %s\n", cfg.Backend.Name)
		fmt.Fprintf(out, "    Sample rate: %d\n", cfg.Backend.SampleRate)
		fmt.Fprintf(out, "    Channels: %d\n", cfg.Backend.Channels)
		fmt.Fprintf(out, "    Buffer: %s\n", cfg.Backend.BufferSize)
		fmt.Fprintf(out, "    Max voices: %d\n", cfg.Backend.MaxVoices)
		fmt.Fprintf(out, "  Logging:\n")
		fmt.Fprintf(out, "    Level: %s\n", cfg.Logging.Level)
		fmt.Fprintf(out, "    Format: %s\n", cfg.Logging.Format)
		return nil
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save PATH",
	Short: "Write the current configuration",
	Long:  "Write the effective configuration to a YAML file, optionally setting channel volumes first.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		volumes, err := cmd.Flags().GetStringToString("volume")
		if err != nil {
			return err
		}
		for name, raw := range volumes {
			ch, err := audio.ParseChannel(name)
			if err != nil {
				return err
			}
			var v float64
			if _, err := fmt.Sscanf(raw, "%g", &v); err != nil {
				return fmt.Errorf("invalid volume for %s: %q", name, raw)
			}
			cfg.SetChannelVolume(ch, v)
		}

		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(args[0]); err != nil {
			return err
		}

		slog.Info("Configuration written", "path", args[0])
		return nil
	},
}

func init() {
	configSaveCmd.Flags().StringToString("volume", nil, "channel volumes, e.g. music=0.5,sfx=0.9")
	configCmd.AddCommand(configShowCmd, configSaveCmd)
}
