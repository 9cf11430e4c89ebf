package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvLoggingLevel  = "INVOICER_LOG_LEVEL"
	EnvLoggingFormat = "INVOICER_LOG_FORMAT"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LoggingConfig selects the root slog handler.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LevelValue returns Level as a slog.Level.
func (c *LoggingConfig) LevelValue() slog.Level {
	var l slog.Level
	l.UnmarshalText([]byte(c.Level))
	return l
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

func (c *LoggingConfig) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatText
	}
}

func (c *LoggingConfig) loadEnv() {
	if v := os.Getenv(EnvLoggingLevel); v != "" {
		c.Level = v
	}
	if v := os.Getenv(EnvLoggingFormat); v != "" {
		c.Format = strings.ToLower(v)
	}
}

func (c *LoggingConfig) validate() error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch c.Format {
	case FormatText, FormatJSON:
		return nil
	}
	return fmt.Errorf("invalid format %q: want text or json", c.Format)
}
