package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// VideoCodec is the encoder selection. ProRes values carry their profile in
// the wire string.
type VideoCodec string

const (
	CodecH264        VideoCodec = "libx264"
	CodecH265        VideoCodec = "libx265"
	CodecFFV1        VideoCodec = "ffv1"
	CodecProResProxy VideoCodec = "prores_ks -profile:v 0"
	CodecProResLT    VideoCodec = "prores_ks -profile:v 1"
	CodecProRes422   VideoCodec = "prores_ks -profile:v 2"
	CodecProResHQ    VideoCodec = "prores_ks -profile:v 3"
)

// FFmpegCodec returns the -c:v value.
func (c VideoCodec) FFmpegCodec() string {
	if c.IsProRes() {
		return "prores_ks"
	}
	if c == "" {
		return string(CodecH264)
	}
	return string(c)
}

// ProResProfile returns the profile index for ProRes codecs.
func (c VideoCodec) ProResProfile() (int, bool) {
	switch c {
	case CodecProResProxy:
		return 0, true
	case CodecProResLT:
		return 1, true
	case CodecProRes422:
		return 2, true
	case CodecProResHQ:
		return 3, true
	default:
		return 0, false
	}
}

func (c VideoCodec) IsProRes() bool {
	_, ok := c.ProResProfile()
	return ok
}

func (c VideoCodec) IsFFV1() bool {
	return c == CodecFFV1
}

// PreferredContainer is the container the codec is usually written to.
func (c VideoCodec) PreferredContainer() Container {
	switch {
	case c.IsProRes():
		return ContainerMOV
	case c.IsFFV1():
		return ContainerAVI
	default:
		return ContainerMP4
	}
}

func (c VideoCodec) DisplayName() string {
	switch c {
	case CodecH264:
		return "H.264"
	case CodecH265:
		return "H.265 (HEVC)"
	case CodecFFV1:
		return "FFV1 (Lossless)"
	case CodecProResProxy:
		return "ProRes Proxy"
	case CodecProResLT:
		return "ProRes LT"
	case CodecProRes422:
		return "ProRes 422"
	case CodecProResHQ:
		return "ProRes 422 HQ"
	default:
		return string(c)
	}
}

// Container is the output file container.
type Container string

const (
	ContainerMP4 Container = "mp4"
	ContainerMOV Container = "mov"
	ContainerMKV Container = "mkv"
	ContainerAVI Container = "avi"
)

// Extension returns the file extension including the leading dot.
func (c Container) Extension() string {
	if c == "" {
		return ".mp4"
	}
	return "." + strings.ToLower(string(c))
}

// EncodingSettings drives the encoder command line.
type EncodingSettings struct {
	Codec         VideoCodec `json:"codec" yaml:"codec"`
	EncoderPreset string     `json:"encoderPreset" yaml:"encoderPreset"`
	Quality       int        `json:"quality" yaml:"quality"`
	AudioCopy     bool       `json:"audioCopy" yaml:"audioCopy"`
	AudioCodec    string     `json:"audioCodec" yaml:"audioCodec"`
	AudioBitrate  int        `json:"audioBitrate" yaml:"audioBitrate"`
	CustomArgs    string     `json:"customFfmpegArgs" yaml:"customFfmpegArgs"`
	Container     Container  `json:"container" yaml:"container"`
}

// OutputContainer returns the configured container, or the codec's usual
// one when the job leaves it empty.
func (e EncodingSettings) OutputContainer() Container {
	if strings.TrimSpace(string(e.Container)) != "" {
		return Container(strings.ToLower(strings.TrimSpace(string(e.Container))))
	}
	return e.Codec.PreferredContainer()
}

// MatchesOutput reports whether path carries the output container's
// extension. ffmpeg picks the muxer from the extension, so a mismatch means
// the container setting is silently ignored.
func (e EncodingSettings) MatchesOutput(path string) bool {
	return strings.EqualFold(filepath.Ext(path), e.OutputContainer().Extension())
}

// Summary describes the encoder selection for display.
func (e EncodingSettings) Summary() string {
	var b strings.Builder
	b.WriteString(e.Codec.DisplayName())
	switch {
	case e.Codec.IsProRes(), e.Codec.IsFFV1():
	default:
		fmt.Fprintf(&b, " crf %d", e.Quality)
		if preset := strings.TrimSpace(e.EncoderPreset); preset != "" {
			b.WriteString(", preset " + preset)
		}
	}
	if e.AudioCopy {
		b.WriteString(", audio copy")
	} else if e.AudioBitrate > 0 {
		fmt.Fprintf(&b, ", audio %s %dk", e.AudioCodec, e.AudioBitrate)
	} else {
		b.WriteString(", audio " + e.AudioCodec)
	}
	b.WriteString(", " + string(e.OutputContainer()))
	return b.String()
}

func DefaultEncodingSettings() EncodingSettings {
	return EncodingSettings{
		Codec:         CodecH264,
		EncoderPreset: "medium",
		Quality:       18,
		AudioCopy:     true,
		AudioCodec:    "aac",
		AudioBitrate:  192,
		Container:     ContainerMP4,
	}
}
