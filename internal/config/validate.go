package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Progress.IntervalMS <= 0 {
		return errors.New("progress.interval_ms must be positive")
	}
	if err := c.validatePreview(); err != nil {
		return err
	}
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func (c *Config) validatePreview() error {
	if c.Preview.FrameWindow <= 0 {
		return errors.New("preview.frame_window must be positive")
	}
	if c.Preview.FrameWindow%2 == 0 {
		return errors.New("preview.frame_window must be odd so the target frame is centred")
	}
	if c.Preview.DefaultFrameRate <= 0 {
		return errors.New("preview.default_frame_rate must be positive")
	}
	return nil
}
