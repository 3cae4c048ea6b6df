package pipeline

import (
	"strconv"
	"strings"
)

const (
	inputInfoPrefix = "INPUT_INFO:"
	framePrefix     = "frame="
	fpsToken        = "fps="
)

// inputInfo is the source description the frame engine prints once the
// clip is open.
type inputInfo struct {
	Frames int
	FPSNum int
	FPSDen int
}

// parseInputInfo parses "INPUT_INFO:frames=1234,fps_num=25,fps_den=1".
// Unknown keys and malformed values are ignored.
func parseInputInfo(line string) (inputInfo, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), inputInfoPrefix)
	if !ok {
		return inputInfo{}, false
	}
	var info inputInfo
	for part := range strings.SplitSeq(rest, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		switch key {
		case "frames":
			info.Frames = n
		case "fps_num":
			info.FPSNum = n
		case "fps_den":
			info.FPSDen = n
		}
	}
	return info, true
}

// parseFrame reads the frame counter from lines beginning with "frame=".
// Both "frame=500" and the padded stats form "frame=  500 fps=..." match.
func parseFrame(line string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), framePrefix)
	if !ok {
		return 0, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseFPS reads the first "fps=" token anywhere in the line.
func parseFPS(line string) (float64, bool) {
	_, rest, ok := strings.Cut(line, fpsToken)
	if !ok {
		return 0, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
