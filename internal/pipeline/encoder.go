package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"vapourbox/internal/models"
)

// frameEngineArgs builds the vspipe command line. A non-negative frame
// limits output to that single frame.
func frameEngineArgs(scriptPath string, frame int) []string {
	args := make([]string, 0, 8)
	if frame >= 0 {
		n := strconv.Itoa(frame)
		args = append(args, "--start", n, "--end", n)
	}
	return append(args, "-c", "y4m", scriptPath, "-")
}

// EncoderArgs builds the ffmpeg command line for a full run. Video comes
// from the y4m pipe; audio, when present, is mapped from the original input.
func EncoderArgs(job models.Job) []string {
	settings := job.Encoding
	args := []string{
		"-hide_banner",
		"-f", "yuv4mpegpipe", "-i", "-",
		"-i", job.InputPath,
		"-map", "0:v:0", "-map", "1:a?",
		"-progress", "pipe:2",
		"-c:v", settings.Codec.FFmpegCodec(),
	}

	switch {
	case settings.Codec.IsProRes():
		profile, _ := settings.Codec.ProResProfile()
		args = append(args, "-profile:v", strconv.Itoa(profile))
	case settings.Codec.IsFFV1():
		args = append(args, "-level", "3")
	default:
		args = append(args, "-crf", strconv.Itoa(settings.Quality))
		if preset := strings.TrimSpace(settings.EncoderPreset); preset != "" {
			args = append(args, "-preset", preset)
		}
	}

	if settings.AudioCopy {
		args = append(args, "-c:a", "copy")
	} else {
		codec := strings.TrimSpace(settings.AudioCodec)
		if codec == "" {
			codec = "aac"
		}
		args = append(args, "-c:a", codec)
		if settings.AudioBitrate > 0 {
			args = append(args, "-b:a", fmt.Sprintf("%dk", settings.AudioBitrate))
		}
	}

	args = append(args, strings.Fields(settings.CustomArgs)...)
	return append(args, "-y", job.OutputPath)
}

// stillEncoderArgs converts the first piped frame to a full-range PNG on
// stdout.
func stillEncoderArgs() []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "yuv4mpegpipe", "-i", "-",
		"-vframes", "1",
		"-vf", "scale=in_range=tv:out_range=pc",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}
}

// extractArgs cuts a lossless clip of frames frames starting at start
// seconds.
func extractArgs(input string, start float64, frames int, output string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(start, 'f', 3, 64),
		"-i", input,
		"-vframes", strconv.Itoa(frames),
		"-c:v", "ffv1", "-level", "1",
		"-an",
		"-y", output,
	}
}
