// ABOUTME: Root command and shared setup
// ABOUTME: Loads configuration and logging for every subcommand
package main

import (
	"fmt"
	"log/slog"

	"github.com/Resonate-Protocol/voicemix/internal/logger"
	"github.com/Resonate-Protocol/voicemix/internal/version"
	"github.com/Resonate-Protocol/voicemix/pkg/audio/backend"
	"github.com/Resonate-Protocol/voicemix/pkg/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	backendName string
	logLevel    string
	logFormat   string

	// Set by the root pre-run
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   version.Product,
	Short: "Game audio voice engine and mixer",
	Long: `voicemix plays sounds through a priority-based voice engine and a
channel mixer with master, music, sfx, voice, ambient and ui buses.

Use "board" for an interactive mixer or "play" to play files from the shell.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("backend") {
			loaded.Backend.Name = backendName
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			loaded.Logging.Format = logFormat
		}

		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		cfg = loaded
		logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./voicemix.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "oto", "audio backend (oto, beep, null)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(boardCmd, playCmd, configCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

// openBackend opens the configured backend
func openBackend(log *slog.Logger) (backend.Backend, error) {
	opts := backend.Options{
		SampleRate: cfg.Backend.SampleRate,
		Channels:   cfg.Backend.Channels,
		BufferSize: cfg.Backend.BufferSize,
		MaxVoices:  cfg.Backend.MaxVoices,
	}

	b, err := backend.Open(cfg.Backend.Name, opts, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio backend: %w", err)
	}
	return b, nil
}
