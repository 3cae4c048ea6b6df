package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"vapourbox/internal/deps"
)

type cliTestEnv struct {
	baseDir     string
	configPath  string
	platformDir string
	historyPath string
	tempDir     string
}

// setupCLITestEnv builds a fake dependency bundle whose vspipe and ffmpeg
// are shell scripts, plus a config pointing every path into a temp dir.
func setupCLITestEnv(t *testing.T, vspipeBody, ffmpegBody string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("VAPOURBOX_DEPS_DIR", "")

	env := &cliTestEnv{
		baseDir:     base,
		configPath:  filepath.Join(base, "config.toml"),
		platformDir: filepath.Join(base, "deps", deps.Platform(runtime.GOOS, runtime.GOARCH)),
		historyPath: filepath.Join(base, "data", "history.db"),
		tempDir:     filepath.Join(base, "tmp"),
	}
	writeExecutable(t, filepath.Join(env.platformDir, "vapoursynth", "vspipe"), vspipeBody)
	writeExecutable(t, filepath.Join(env.platformDir, "ffmpeg", "ffmpeg"), ffmpegBody)
	if err := os.MkdirAll(deps.NewLocator(filepath.Join(base, "deps")).PluginPath(), 0o755); err != nil {
		t.Fatalf("mkdir plugins: %v", err)
	}

	cfg := fmt.Sprintf(`[paths]
deps_dir = %q
temp_dir = %q

[logging]
level = "info"

[progress]
interval_ms = 1

[history]
enabled = true
path = %q
`, filepath.Join(base, "deps"), env.tempDir, env.historyPath)
	if err := os.WriteFile(env.configPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func writeExecutable(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func (e *cliTestEnv) writeJob(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(e.baseDir, "job.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write job: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), nil, args, configPath)
}

// runCLIContext runs the root command with ctx. When stdout is non-nil it
// receives the command's standard output.
func runCLIContext(t *testing.T, ctx context.Context, stdout *eventBuffer, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	if stdout == nil {
		stdout = &eventBuffer{}
	}
	var stderr bytes.Buffer
	cmd.SetOut(stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// eventBuffer collects stdout and calls onProgress after the first
// progress event is written.
type eventBuffer struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	onProgress func()
	fired      bool
}

func (b *eventBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	n, err := b.buf.Write(p)
	fire := !b.fired && b.onProgress != nil && bytes.Contains(p, []byte(`"type":"progress"`))
	if fire {
		b.fired = true
	}
	b.mu.Unlock()
	if fire {
		b.onProgress()
	}
	return n, err
}

func (b *eventBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func decodeEvents(t *testing.T, out string) []map[string]any {
	t.Helper()
	var events []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var event map[string]any
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("decode event %q: %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func lastEvent(t *testing.T, out string) map[string]any {
	t.Helper()
	events := decodeEvents(t, out)
	if len(events) == 0 {
		t.Fatalf("no events in %q", out)
	}
	return events[len(events)-1]
}

func hasLogMessage(events []map[string]any, message string) bool {
	for _, event := range events {
		if event["type"] == "log" && event["message"] == message {
			return true
		}
	}
	return false
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
