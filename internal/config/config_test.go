package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vapourbox/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VAPOURBOX_DEPS_DIR", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "vapourbox", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantHistory := filepath.Join(tempHome, ".local", "share", "vapourbox", "history.db")
	if cfg.History.Path != wantHistory {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.Path, wantHistory)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Paths.TempDir != filepath.Join(os.TempDir(), "vapourbox") {
		t.Fatalf("unexpected temp dir: %q", cfg.Paths.TempDir)
	}
	if cfg.Paths.DepsDir != "" {
		t.Fatalf("expected empty deps dir, got %q", cfg.Paths.DepsDir)
	}
	if cfg.Progress.Interval().Milliseconds() != 500 {
		t.Fatalf("unexpected progress interval: %s", cfg.Progress.Interval())
	}
	if cfg.Preview.FrameWindow != 11 || cfg.Preview.DefaultFrameRate != 29.97 {
		t.Fatalf("unexpected preview defaults: %+v", cfg.Preview)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.LogFile() != "" {
		t.Fatalf("expected no log file by default, got %q", cfg.LogFile())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "vapourbox.toml")

	type payload struct {
		Paths struct {
			DepsDir      string   `toml:"deps_dir"`
			TemplateDirs []string `toml:"template_dirs"`
			TempDir      string   `toml:"temp_dir"`
			LogDir       string   `toml:"log_dir"`
		} `toml:"paths"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
		Progress struct {
			IntervalMS int `toml:"interval_ms"`
		} `toml:"progress"`
		History struct {
			Enabled bool `toml:"enabled"`
		} `toml:"history"`
	}
	custom := payload{}
	custom.Paths.DepsDir = filepath.Join(tempDir, "deps")
	custom.Paths.TemplateDirs = []string{filepath.Join(tempDir, "tpl"), " ", filepath.Join(tempDir, "tpl")}
	custom.Paths.TempDir = filepath.Join(tempDir, "scratch")
	custom.Paths.LogDir = filepath.Join(tempDir, "logs")
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "Debug"
	custom.Progress.IntervalMS = 250
	custom.History.Enabled = false
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.DepsDir != filepath.Join(tempDir, "deps") {
		t.Fatalf("unexpected deps dir: %q", cfg.Paths.DepsDir)
	}
	if len(cfg.Paths.TemplateDirs) != 1 || cfg.Paths.TemplateDirs[0] != filepath.Join(tempDir, "tpl") {
		t.Fatalf("expected deduplicated template dirs, got %v", cfg.Paths.TemplateDirs)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
	if cfg.Progress.IntervalMS != 250 {
		t.Fatalf("expected interval 250, got %d", cfg.Progress.IntervalMS)
	}
	if cfg.History.Enabled {
		t.Fatal("expected history disabled")
	}
	if cfg.LogFile() != filepath.Join(tempDir, "logs", "vapourbox-worker.log") {
		t.Fatalf("unexpected log file: %q", cfg.LogFile())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.TempDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestDepsDirFallsBackToEnv(t *testing.T) {
	depsDir := t.TempDir()
	t.Setenv("VAPOURBOX_DEPS_DIR", depsDir)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.DepsDir != depsDir {
		t.Fatalf("expected deps dir from env, got %q", cfg.Paths.DepsDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"logging.level":              func(c *config.Config) { c.Logging.Level = "verbose" },
		"progress.interval_ms":       func(c *config.Config) { c.Progress.IntervalMS = -1 },
		"preview.frame_window":       func(c *config.Config) { c.Preview.FrameWindow = 10 },
		"preview.default_frame_rate": func(c *config.Config) { c.Preview.DefaultFrameRate = -5 },
		"history.path":               func(c *config.Config) { c.History.Path = "" },
	}
	for key, mutate := range cases {
		cfg := config.Default()
		mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", key)
		}
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("%s: error %q does not name the key", key, err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Preview.FrameWindow != 11 {
		t.Fatalf("unexpected frame window from sample: %d", cfg.Preview.FrameWindow)
	}

	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(encoded), "interval_ms = 500") {
		t.Fatalf("encoded config missing progress interval:\n%s", encoded)
	}
}
