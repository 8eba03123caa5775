// ABOUTME: Durable audio configuration
// ABOUTME: Loads and saves volume defaults and engine limits with viper
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Resonate-Protocol/voicemix/pkg/audio"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix (VOICEMIX_MASTER_VOLUME, ...)
const EnvPrefix = "VOICEMIX"

// Config holds the persisted audio settings
type Config struct {
	MasterVolume          float64            `mapstructure:"master_volume"`
	ChannelVolumes        map[string]float64 `mapstructure:"channel_volumes"`
	MaxSimultaneousSounds int                `mapstructure:"max_simultaneous_sounds"`
	DefaultRolloff        float64            `mapstructure:"default_rolloff"`
	CrossfadeDuration     time.Duration      `mapstructure:"crossfade_duration"`
	ReverbEnabled         bool               `mapstructure:"reverb_enabled"`

	// Backend configuration
	Backend BackendConfig `mapstructure:"backend"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// BackendConfig selects and tunes the platform backend
type BackendConfig struct {
	Name       string        `mapstructure:"name"` // oto, beep or null
	SampleRate int           `mapstructure:"sample_rate"`
	Channels   int           `mapstructure:"channels"`
	BufferSize time.Duration `mapstructure:"buffer_size"`
	MaxVoices  int           `mapstructure:"max_voices"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		MasterVolume: 1.0,
		ChannelVolumes: map[string]float64{
			audio.ChannelMusic.String():   0.8,
			audio.ChannelSFX.String():     1.0,
			audio.ChannelVoice.String():   1.0,
			audio.ChannelAmbient.String(): 0.7,
			audio.ChannelUI.String():      1.0,
		},
		MaxSimultaneousSounds: 32,
		DefaultRolloff:        1.0,
		CrossfadeDuration:     2 * time.Second,
		ReverbEnabled:         false,
		Backend: BackendConfig{
			Name:       "oto",
			SampleRate: 44100,
			Channels:   2,
			BufferSize: 50 * time.Millisecond,
			MaxVoices:  64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ChannelVolume returns the stored default volume for a channel
func (c *Config) ChannelVolume(ch audio.Channel) float64 {
	if ch == audio.ChannelMaster {
		return c.MasterVolume
	}
	if v, ok := c.ChannelVolumes[ch.String()]; ok {
		return v
	}
	return 1.0
}

// SetChannelVolume stores a channel volume so it survives persistence
func (c *Config) SetChannelVolume(ch audio.Channel, v float64) {
	if ch == audio.ChannelMaster {
		c.MasterVolume = v
		return
	}
	if c.ChannelVolumes == nil {
		c.ChannelVolumes = make(map[string]float64)
	}
	c.ChannelVolumes[ch.String()] = v
}

// Load reads configuration from path (optional), environment and defaults
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("voicemix")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.voicemix")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		slog.Debug("No config file found, using defaults and environment variables")
	} else {
		slog.Info("Using config file", slog.String("file", v.ConfigFileUsed()))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path. The format follows the file extension.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.Set("master_volume", c.MasterVolume)
	v.Set("channel_volumes", c.ChannelVolumes)
	v.Set("max_simultaneous_sounds", c.MaxSimultaneousSounds)
	v.Set("default_rolloff", c.DefaultRolloff)
	v.Set("crossfade_duration", c.CrossfadeDuration.String())
	v.Set("reverb_enabled", c.ReverbEnabled)
	v.Set("backend.name", c.Backend.Name)
	v.Set("backend.sample_rate", c.Backend.SampleRate)
	v.Set("backend.channels", c.Backend.Channels)
	v.Set("backend.buffer_size", c.Backend.BufferSize.String())
	v.Set("backend.max_voices", c.Backend.MaxVoices)
	v.Set("logging.level", c.Logging.Level)
	v.Set("logging.format", c.Logging.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the configuration for out-of-range values
func (c *Config) Validate() error {
	if c.MasterVolume < 0 || c.MasterVolume > 1 {
		return &ConfigError{Field: "master_volume", Message: "must be within [0, 1]"}
	}
	for name, v := range c.ChannelVolumes {
		if _, err := audio.ParseChannel(name); err != nil {
			return &ConfigError{Field: "channel_volumes." + name, Message: "unknown channel"}
		}
		if v < 0 || v > 1 {
			return &ConfigError{Field: "channel_volumes." + name, Message: "must be within [0, 1]"}
		}
	}
	if c.MaxSimultaneousSounds <= 0 {
		return &ConfigError{Field: "max_simultaneous_sounds", Message: "must be positive"}
	}
	if c.DefaultRolloff < 0 {
		return &ConfigError{Field: "default_rolloff", Message: "must not be negative"}
	}
	if c.CrossfadeDuration < 0 {
		return &ConfigError{Field: "crossfade_duration", Message: "must not be negative"}
	}
	switch strings.ToLower(c.Backend.Name) {
	case "oto", "beep", "null":
	default:
		return &ConfigError{Field: "backend.name", Message: "must be one of oto, beep, null"}
	}
	if c.Backend.SampleRate <= 0 {
		return &ConfigError{Field: "backend.sample_rate", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// newViper returns a viper instance seeded with defaults and env bindings
func newViper() *viper.Viper {
	d := Default()
	v := viper.New()

	v.SetDefault("master_volume", d.MasterVolume)
	v.SetDefault("channel_volumes", d.ChannelVolumes)
	v.SetDefault("max_simultaneous_sounds", d.MaxSimultaneousSounds)
	v.SetDefault("default_rolloff", d.DefaultRolloff)
	v.SetDefault("crossfade_duration", d.CrossfadeDuration.String())
	v.SetDefault("reverb_enabled", d.ReverbEnabled)
	v.SetDefault("backend.name", d.Backend.Name)
	v.SetDefault("backend.sample_rate", d.Backend.SampleRate)
	v.SetDefault("backend.channels", d.Backend.Channels)
	v.SetDefault("backend.buffer_size", d.Backend.BufferSize.String())
	v.SetDefault("backend.max_voices", d.Backend.MaxVoices)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}
