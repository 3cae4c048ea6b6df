package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"

	"vapourbox/internal/logging"
)

// Level is the severity carried by a log event.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// ParseLevel maps free-form level names onto event levels, defaulting to info.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarning
	case "error", "fatal":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Event types on the wire.
const (
	TypeProgress = "progress"
	TypeLog      = "log"
	TypeError    = "error"
	TypeComplete = "complete"
)

type progressEvent struct {
	Type        string  `json:"type"`
	Frame       int     `json:"frame"`
	TotalFrames int     `json:"totalFrames"`
	FPS         float64 `json:"fps"`
	ETA         float64 `json:"eta"`
}

type logEvent struct {
	Type    string `json:"type"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type completeEvent struct {
	Type       string `json:"type"`
	Success    bool   `json:"success"`
	OutputPath string `json:"outputPath,omitempty"`
}

// Reporter serializes events to a writer, one JSON object per line.
// It is safe for concurrent use.
type Reporter struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
	err    error
}

// NewReporter creates a reporter writing to w. A nil logger disables
// mirroring.
func NewReporter(w io.Writer, logger *slog.Logger) *Reporter {
	if w == nil {
		w = io.Discard
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reporter{w: w, logger: logging.NewComponentLogger(logger, "progress")}
}

// Progress emits a progress sample.
func (r *Reporter) Progress(info Info) {
	r.emit(progressEvent{
		Type:        TypeProgress,
		Frame:       info.Frame,
		TotalFrames: info.TotalFrames,
		FPS:         finite(info.FPS),
		ETA:         finite(info.ETA),
	})
}

// Log emits a log event and mirrors it to the logger.
func (r *Reporter) Log(level Level, message string) {
	r.logger.Log(context.Background(), level.slogLevel(), message)
	r.emit(logEvent{Type: TypeLog, Level: level, Message: message})
}

// Logf is Log with formatting.
func (r *Reporter) Logf(level Level, format string, args ...any) {
	r.Log(level, fmt.Sprintf(format, args...))
}

// Error emits a fatal error event.
func (r *Reporter) Error(message string) {
	r.logger.Error(message)
	r.emit(errorEvent{Type: TypeError, Message: message})
}

// Complete emits the terminal event. outputPath is omitted when empty.
func (r *Reporter) Complete(success bool, outputPath string) {
	r.emit(completeEvent{Type: TypeComplete, Success: success, OutputPath: outputPath})
}

// Err returns the first write error, if any.
func (r *Reporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Reporter) emit(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Warn("encode event failed", logging.Error(err))
		return
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.w.Write(data); err != nil && r.err == nil {
		r.err = err
		r.logger.Warn("write event failed", logging.Error(err))
	}
}

// finite replaces NaN and infinities, which JSON cannot encode.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
