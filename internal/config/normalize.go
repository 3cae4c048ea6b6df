package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	if c.Progress.IntervalMS == 0 {
		c.Progress.IntervalMS = defaultProgressInterval
	}
	if c.Preview.FrameWindow == 0 {
		c.Preview.FrameWindow = defaultFrameWindow
	}
	if c.Preview.DefaultFrameRate == 0 {
		c.Preview.DefaultFrameRate = defaultFrameRate
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DepsDir) == "" {
		if value, ok := os.LookupEnv("VAPOURBOX_DEPS_DIR"); ok {
			c.Paths.DepsDir = strings.TrimSpace(value)
		}
	}
	if c.Paths.DepsDir, err = expandPath(strings.TrimSpace(c.Paths.DepsDir)); err != nil {
		return fmt.Errorf("paths.deps_dir: %w", err)
	}

	dirs := make([]string, 0, len(c.Paths.TemplateDirs))
	seen := make(map[string]struct{}, len(c.Paths.TemplateDirs))
	for _, dir := range c.Paths.TemplateDirs {
		trimmed := strings.TrimSpace(dir)
		if trimmed == "" {
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("paths.template_dirs: %w", err)
		}
		if _, exists := seen[expanded]; exists {
			continue
		}
		seen[expanded] = struct{}{}
		dirs = append(dirs, expanded)
	}
	c.Paths.TemplateDirs = dirs

	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = filepath.Join(os.TempDir(), defaultTempDirName)
	}
	if c.Paths.TempDir, err = expandPath(strings.TrimSpace(c.Paths.TempDir)); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
