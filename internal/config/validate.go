package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlayer(); err != nil {
		return err
	}
	if err := c.validateTerminal(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePlayer() error {
	factor := c.Player.CorrectionFactor
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("player.correction_factor must be positive, got %v", factor)
	}
	if c.Player.DefaultFrameDelayMS <= 0 {
		return errors.New("player.default_frame_delay_ms must be positive")
	}
	return nil
}

func (c *Config) validateTerminal() error {
	t := c.Terminal
	if t.Width < 0 || t.Height < 0 {
		return errors.New("terminal.width and terminal.height must not be negative")
	}
	if (t.Width == 0) != (t.Height == 0) {
		return errors.New("terminal.width and terminal.height must be set together")
	}
	if t.FallbackWidth <= 0 || t.FallbackHeight <= 0 {
		return errors.New("terminal.fallback_width and terminal.fallback_height must be positive")
	}
	if t.ReservedRows < 0 {
		return errors.New("terminal.reserved_rows must not be negative")
	}
	if t.ReservedRows >= t.FallbackHeight {
		return errors.New("terminal.reserved_rows must be smaller than terminal.fallback_height")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
