package progress_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"

	"vapourbox/internal/progress"
)

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var event map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("line %q is not JSON: %v", scanner.Text(), err)
		}
		out = append(out, event)
	}
	return out
}

func TestReporterEventShapes(t *testing.T) {
	var buf bytes.Buffer
	r := progress.NewReporter(&buf, nil)

	r.Progress(progress.Info{Frame: 500, TotalFrames: 2000, FPS: 25, ETA: 60})
	r.Log(progress.LevelInfo, "Starting processing")
	r.Error("vspipe not found")
	r.Complete(true, "/videos/out.mp4")
	r.Complete(false, "")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	want := []string{
		`{"type":"progress","frame":500,"totalFrames":2000,"fps":25,"eta":60}`,
		`{"type":"log","level":"info","message":"Starting processing"}`,
		`{"type":"error","message":"vspipe not found"}`,
		`{"type":"complete","success":true,"outputPath":"/videos/out.mp4"}`,
		`{"type":"complete","success":false}`,
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %s, want %s", i, lines[i], want[i])
		}
	}
}

func TestReporterSanitizesNonFiniteNumbers(t *testing.T) {
	var buf bytes.Buffer
	r := progress.NewReporter(&buf, nil)
	r.Progress(progress.Info{Frame: 1, FPS: math.Inf(1), ETA: math.NaN()})

	events := decodeLines(t, buf.Bytes())
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0]["fps"] != 0.0 || events[0]["eta"] != 0.0 {
		t.Fatalf("expected zeroed numbers, got %+v", events[0])
	}
}

func TestReporterMirrorsLogsToLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := progress.NewReporter(&bytes.Buffer{}, logger)

	r.Log(progress.LevelWarning, "low disk")
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "low disk") {
		t.Fatalf("expected mirrored warning, got %q", logs.String())
	}
}

func TestReporterConcurrentLinesStayIntact(t *testing.T) {
	var buf bytes.Buffer
	r := progress.NewReporter(&buf, nil)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			for j := range 25 {
				r.Progress(progress.Info{Frame: i*100 + j, TotalFrames: 5000})
			}
		})
	}
	wg.Wait()

	if events := decodeLines(t, buf.Bytes()); len(events) != 500 {
		t.Fatalf("expected 500 events, got %d", len(events))
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestReporterRecordsWriteError(t *testing.T) {
	r := progress.NewReporter(failingWriter{}, nil)
	r.Complete(true, "")
	if r.Err() == nil {
		t.Fatal("expected write error to be recorded")
	}
}

func TestInfoPercent(t *testing.T) {
	cases := []struct {
		info progress.Info
		want int
	}{
		{progress.Info{Frame: 500, TotalFrames: 1000}, 50},
		{progress.Info{Frame: 10, TotalFrames: 0}, 0},
		{progress.Info{Frame: 3000, TotalFrames: 2000}, 100},
		{progress.Info{Frame: 0, TotalFrames: 2000}, 0},
	}
	for _, tc := range cases {
		if got := tc.info.Percent(); got != tc.want {
			t.Fatalf("%+v: Percent() = %d, want %d", tc.info, got, tc.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	cases := map[float64]string{
		0:      "--",
		-5:     "--",
		20:     "20s",
		90:     "1m30s",
		3600:   "1h0m",
		5025.4: "1h23m45s",
	}
	for in, want := range cases {
		if got := progress.FormatETA(in); got != want {
			t.Fatalf("FormatETA(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatFPS(t *testing.T) {
	if got := progress.FormatFPS(25); got != "25.0 fps" {
		t.Fatalf("unexpected fps: %q", got)
	}
	if got := progress.FormatFPS(0); got != "-- fps" {
		t.Fatalf("unexpected zero fps: %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	if progress.ParseLevel("WARN") != progress.LevelWarning {
		t.Fatal("expected warn to map to warning")
	}
	if progress.ParseLevel("") != progress.LevelInfo {
		t.Fatal("expected default info")
	}
}
