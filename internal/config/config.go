// Package config provides the csharp-ls TOML configuration with hot-reload
// of the log level.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is the config file looked up in the current working
// directory when no explicit path is given.
const DefaultFileName = "csharp-ls.toml"

// Config is the csharp-ls server configuration.
type Config struct {
	// Solution is an optional .sln/.csproj path hint.
	Solution string `toml:"solution"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

// DiagnosticsConfig controls the coalescing diagnostics timer.
type DiagnosticsConfig struct {
	IntervalMS     int `toml:"interval_ms"`
	InitialDelayMS int `toml:"initial_delay_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Diagnostics: DiagnosticsConfig{
			IntervalMS:     250,
			InitialDelayMS: 1000,
		},
	}
}

// Load reads a TOML config file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.Diagnostics.IntervalMS < 0 || c.Diagnostics.InitialDelayMS < 0 {
		return fmt.Errorf("diagnostics intervals must be non-negative")
	}
	return nil
}

// Level converts the configured log level to a slog level.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
