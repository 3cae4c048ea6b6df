package progress

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Info is a single progress sample.
type Info struct {
	Frame       int
	TotalFrames int
	FPS         float64
	// ETA is the estimated remaining time in seconds.
	ETA float64
}

// Fraction returns progress in the range [0, 1]. Unknown totals report 0.
func (i Info) Fraction() float64 {
	if i.TotalFrames <= 0 || i.Frame <= 0 {
		return 0
	}
	return math.Min(float64(i.Frame)/float64(i.TotalFrames), 1)
}

// Percent returns progress as a whole percentage.
func (i Info) Percent() int {
	return int(i.Fraction() * 100)
}

// FormatETA renders remaining seconds as e.g. "1h2m3s", or "--" when the
// estimate is unknown.
func FormatETA(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return "--"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	secs := d / time.Second
	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if secs > 0 || (hours == 0 && minutes == 0) {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	return strings.Join(parts, "")
}

// FormatFPS renders a processing rate with one decimal.
func FormatFPS(fps float64) string {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return "-- fps"
	}
	return fmt.Sprintf("%.1f fps", fps)
}

// String summarizes the sample for status lines.
func (i Info) String() string {
	if i.TotalFrames > 0 {
		return fmt.Sprintf("%d/%d frames (%d%%) %s ETA %s", i.Frame, i.TotalFrames, i.Percent(), FormatFPS(i.FPS), FormatETA(i.ETA))
	}
	return fmt.Sprintf("%d frames %s", i.Frame, FormatFPS(i.FPS))
}
