package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizePlayer()
	c.normalizeLogging()
	return c.normalizePaths()
}

func (c *Config) normalizePlayer() {
	c.Player.FFmpegBinary = strings.TrimSpace(c.Player.FFmpegBinary)
	if c.Player.FFmpegBinary == "" {
		c.Player.FFmpegBinary = defaultFFmpegBinary
	}
	c.Player.FFprobeBinary = strings.TrimSpace(c.Player.FFprobeBinary)
	if c.Player.FFprobeBinary == "" {
		c.Player.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
}

func (c *Config) normalizePaths() error {
	var err error
	c.Logging.Dir = strings.TrimSpace(c.Logging.Dir)
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.log_dir: %w", err)
	}
	return nil
}
