package config

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	ErrInvalidChunkSize   = errors.New("chunk size must be greater than 0")
	ErrInvalidDisplayMode = errors.New("display mode must be one of: line, bar, none")
	ErrInvalidColorMode   = errors.New("color mode must be one of: auto, always, never")
	ErrInvalidLogLevel    = errors.New("log level is not a valid logrus level")
)

// Display modes
const (
	DisplayLine = "line"
	DisplayBar  = "bar"
	DisplayNone = "none"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultChunkSize is the size of a single read/write during a copy (1 MiB).
const DefaultChunkSize = 1024 * 1024

// Config holds all application configuration
type Config struct {
	Transfer TransferConfig `mapstructure:"transfer"`
	Display  DisplayConfig  `mapstructure:"display"`
	Log      LogConfig      `mapstructure:"log"`
}

// TransferConfig holds copy engine configuration
type TransferConfig struct {
	ChunkSize int `mapstructure:"chunk_size"`
	// Strict makes a run with per-file failures exit non-zero.
	Strict bool `mapstructure:"strict"`
}

// DisplayConfig holds console output configuration
type DisplayConfig struct {
	Mode  string `mapstructure:"mode"`
	Color string `mapstructure:"color"`
}

// LogConfig holds diagnostic logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Transfer: TransferConfig{
			ChunkSize: DefaultChunkSize,
			Strict:    false,
		},
		Display: DisplayConfig{
			Mode:  DisplayLine,
			Color: ColorAuto,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// SetDefaults registers the default configuration values on v so that
// environment variables are picked up for every key.
func SetDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("transfer.chunk_size", d.Transfer.ChunkSize)
	v.SetDefault("transfer.strict", d.Transfer.Strict)
	v.SetDefault("display.mode", d.Display.Mode)
	v.SetDefault("display.color", d.Display.Color)
	v.SetDefault("log.level", d.Log.Level)
}

// Load builds a Config from v and validates it
func Load(v *viper.Viper) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	if c.Transfer.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	switch c.Display.Mode {
	case DisplayLine, DisplayBar, DisplayNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDisplayMode, c.Display.Mode)
	}
	switch c.Display.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColorMode, c.Display.Color)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return nil
}

// LogLevel returns the parsed logrus level. Validate must have succeeded.
func (c *Config) LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}
