package pipeline

import (
	"sync/atomic"
	"time"

	"vapourbox/internal/progress"
)

// tracker folds encoder diagnostics into progress samples. The reported
// total is written by the frame-engine reader and read here, so it is the
// only shared field.
type tracker struct {
	reported   atomic.Int64
	fallback   int
	doubleRate bool
	interval   time.Duration
	frame      int
	fps        float64
	lastEmit   time.Time
}

func newTracker(fallback int, doubleRate bool, interval time.Duration, now time.Time) *tracker {
	return &tracker{
		fallback:   fallback,
		doubleRate: doubleRate,
		interval:   interval,
		lastEmit:   now,
	}
}

func (t *tracker) setReported(frames int) {
	t.reported.Store(int64(frames))
}

// observe updates counters from one encoder line.
func (t *tracker) observe(line string) {
	if frame, ok := parseFrame(line); ok {
		t.frame = frame
	}
	if fps, ok := parseFPS(line); ok {
		t.fps = fps
	}
}

// total returns the frame engine's count, doubled for double-rate output,
// or the caller-supplied count when the engine has not reported yet.
func (t *tracker) total() int {
	if reported := int(t.reported.Load()); reported > 0 {
		if t.doubleRate {
			return reported * 2
		}
		return reported
	}
	return t.fallback
}

func (t *tracker) sample() progress.Info {
	total := t.total()
	var eta float64
	if t.fps > 0 && total > t.frame {
		eta = float64(total-t.frame) / t.fps
	}
	return progress.Info{Frame: t.frame, TotalFrames: total, FPS: t.fps, ETA: eta}
}

// due reports whether a progress event should be emitted at now, and
// starts the next interval when it does.
func (t *tracker) due(now time.Time) bool {
	if now.Sub(t.lastEmit) < t.interval {
		return false
	}
	t.lastEmit = now
	return true
}
