package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vapourbox/internal/config"
	"vapourbox/internal/logging"
)

func TestConsoleLoggerFormatsComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "pipeline").Info("encode started",
		logging.String("output", "/media/out file.mp4"),
		logging.Int("frames", 1000),
	)

	line := buf.String()
	for _, want := range []string{"INFO pipeline: encode started", `output="/media/out file.mp4"`, "frames=1000"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no colour codes, got %q", line)
	}
}

func TestConsoleLoggerLiftsStageAndJobIntoPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "pipeline").Debug("terminating process",
		logging.String(logging.FieldStage, "ffmpeg"),
		logging.String(logging.FieldJobID, "3f2a9c1e-7d4b-4c1a-9e2f-0123456789ab"),
		logging.Int("pid", 42),
	)

	line := buf.String()
	if !strings.Contains(line, "DEBUG pipeline[ffmpeg] 3f2a9c1e: terminating process") {
		t.Fatalf("unexpected prefix in %q", line)
	}
	if strings.Contains(line, "stage=") || strings.Contains(line, "job_id=") {
		t.Fatalf("expected lifted attrs to be removed, got %q", line)
	}
	if !strings.Contains(line, "pid=42") {
		t.Fatalf("expected remaining attrs, got %q", line)
	}
}

func TestConsoleLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "WARN shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConsoleLoggerColour(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Output: &buf, Color: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Error("boom", logging.Error(errors.New("bad")))
	if !strings.Contains(buf.String(), "\x1b[31mERROR\x1b[0m") {
		t.Fatalf("expected coloured level, got %q", buf.String())
	}
}

func TestJSONLoggerWritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("ready", logging.String(logging.FieldJobID, "abc"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v (%q)", err, buf.String())
	}
	if record["msg"] != "ready" || record["level"] != "info" || record["job_id"] != "abc" {
		t.Fatalf("unexpected record: %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigTeesToLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg, io.Discard, false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("persisted message")

	content, err := os.ReadFile(cfg.LogFile())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"msg":"persisted message"`) {
		t.Fatalf("expected JSON record in log file, got %q", content)
	}
}

func TestTeeHandlerCollapsesNil(t *testing.T) {
	if _, ok := logging.TeeHandler(nil, nil).(logging.NoopHandler); !ok {
		t.Fatal("expected noop handler when no handlers remain")
	}
	logger := logging.NewNop()
	logger.Info("discarded")
}
