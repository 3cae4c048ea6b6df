package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vapourbox/internal/config"
	"vapourbox/internal/deps"
	"vapourbox/internal/history"
	"vapourbox/internal/logging"
	"vapourbox/internal/pipeline"
	"vapourbox/internal/progress"
	"vapourbox/internal/script"
	"vapourbox/internal/services"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "", "prepare directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// newLogger builds the stderr logger. It falls back to defaults when the
// configuration failed to load so the failure itself can be logged.
func (c *commandContext) newLogger(w io.Writer) *slog.Logger {
	cfg := config.Default()
	if loaded, err := c.ensureConfig(); err == nil && loaded != nil {
		cfg = *loaded
	}
	if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
		cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
	}
	logger, err := logging.NewFromConfig(&cfg, w, shouldColorize(w))
	if err != nil {
		fallback, _ := logging.New(logging.Options{Output: w, Level: cfg.Logging.Level})
		if fallback == nil {
			return logging.NewNop()
		}
		fallback.Warn("logger configuration rejected; using console defaults", logging.Error(err))
		return fallback
	}
	return logger
}

func (c *commandContext) debugEnabled() bool {
	level := ""
	if c.logLevelFlag != nil {
		level = *c.logLevelFlag
	}
	if strings.TrimSpace(level) == "" {
		if cfg, err := c.ensureConfig(); err == nil {
			level = cfg.Logging.Level
		}
	}
	return logging.ParseLevel(level) <= slog.LevelDebug
}

func (c *commandContext) locator() *deps.Locator {
	var depsDir string
	if cfg, err := c.ensureConfig(); err == nil {
		depsDir = cfg.Paths.DepsDir
	}
	return deps.NewLocator(depsDir)
}

func (c *commandContext) generator(logger *slog.Logger) (*script.Generator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return script.NewGenerator(script.Options{
		TemplateDirs: cfg.Paths.TemplateDirs,
		TempDir:      cfg.Paths.TempDir,
		Logger:       logger,
	})
}

func (c *commandContext) controller(scripts pipeline.ScriptWriter, reporter *progress.Reporter, logger *slog.Logger) (*pipeline.Controller, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.NewController(pipeline.Options{
		Resolver:         c.locator(),
		Scripts:          scripts,
		Reporter:         reporter,
		Logger:           logger,
		ProgressInterval: cfg.Progress.Interval(),
		PreviewWindow:    cfg.Preview.FrameWindow,
		DefaultFrameRate: cfg.Preview.DefaultFrameRate,
		TempDir:          cfg.Paths.TempDir,
	})
}

// openHistory returns nil without error when history is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
