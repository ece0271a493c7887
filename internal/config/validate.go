package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Player.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("player: %w", err))
	}
	if err := c.Media.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("media: %w", err))
	}
	if err := c.Embed.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("embed: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks PlayerConfig for errors.
func (c *PlayerConfig) Validate() error {
	if c.Volume < 0 || c.Volume > 100 {
		return errors.New("volume must be between 0 and 100")
	}
	if c.PollInterval < 0 {
		return errors.New("poll_interval must be non-negative")
	}
	return nil
}

// Validate checks MediaConfig for errors.
func (c *MediaConfig) Validate() error {
	if c.SampleRate < 0 {
		return errors.New("sample_rate must be non-negative")
	}
	if c.BufferMs < 0 {
		return errors.New("buffer_ms must be non-negative")
	}
	return nil
}

// Validate checks EmbedConfig for errors.
func (c *EmbedConfig) Validate() error {
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	if c.FocusMinutes < 0 || c.BreakMinutes < 0 {
		return errors.New("focus_minutes and break_minutes must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
