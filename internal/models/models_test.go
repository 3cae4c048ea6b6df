package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseJobAppliesDefaults(t *testing.T) {
	job, err := ParseJob([]byte(`{
		"id": "0f8fad5b-d9cb-469f-a165-70867728950e",
		"inputPath": "/in.mkv",
		"outputPath": "/out.mp4",
		"qtgmcParameters": {"preset": "fast"}
	}`), "json")
	require.NoError(t, err)

	require.Equal(t, PresetFast, job.Deinterlace.Preset)
	require.True(t, job.Deinterlace.Enabled)
	require.Equal(t, 1, job.Deinterlace.FPSDivisor)
	require.Equal(t, 640, job.Deinterlace.ThSAD1)
	require.Equal(t, "medium", job.Encoding.EncoderPreset)
	require.Equal(t, 18, job.Encoding.Quality)
	require.True(t, job.Encoding.AudioCopy)
	require.Nil(t, job.Pipeline)
}

func TestParseJobAssignsIDWhenMissing(t *testing.T) {
	job, err := ParseJob([]byte(`{"inputPath": "/in.mkv", "outputPath": "/out.mp4"}`), "")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, job.ID)
}

func TestParseJobRejectsMissingPaths(t *testing.T) {
	_, err := ParseJob([]byte(`{"inputPath": ""}`), "json")
	require.Error(t, err)
	require.Contains(t, err.Error(), "inputPath is required")
	require.Contains(t, err.Error(), "outputPath is required")
}

func TestParseJobRejectsUnknownPreset(t *testing.T) {
	_, err := ParseJob([]byte(`{"inputPath": "a", "outputPath": "b", "qtgmcParameters": {"preset": "Warp"}}`), "json")
	require.Error(t, err)
}

func TestNormalizeQTGMCPreset(t *testing.T) {
	cases := map[string]QTGMCPreset{
		"":           PresetSlower,
		"very slow":  PresetVerySlow,
		"VERY-SLOW":  PresetVerySlow,
		"ultrafast":  PresetUltraFast,
		"Super Fast": PresetSuperFast,
		"draft":      PresetDraft,
	}
	for input, want := range cases {
		got, err := NormalizeQTGMCPreset(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}
}

func TestLoadJobYAMLNestedDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	doc := `
inputPath: /media/tape.avi
outputPath: /media/tape.mp4
restorationPipeline:
  deinterlace:
    enabled: false
  dehalo:
    enabled: true
    method: YAHR
  cropResize:
    enabled: true
    resizeEnabled: true
    targetWidth: 1280
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	job, err := LoadJob(path)
	require.NoError(t, err)
	require.NotNil(t, job.Pipeline)

	p := job.EffectivePipeline()
	require.False(t, p.Deinterlace.Enabled)
	require.Equal(t, DehaloYAHR, p.Dehalo.Method)
	require.Equal(t, 2.0, p.Dehalo.Rx)
	require.Equal(t, 32, p.Dehalo.YAHRDepth)
	require.Equal(t, KernelSpline36, p.CropResize.Kernel)
	require.True(t, p.CropResize.MaintainAspect)
	require.Equal(t, []Stage{StageDehalo, StageResize}, p.EnabledStages())
}

func TestEffectivePipelineFromLegacy(t *testing.T) {
	job := NewJob("/in", "/out")
	job.Deinterlace.Preset = PresetFast

	p := job.EffectivePipeline()
	require.Equal(t, PresetFast, p.Deinterlace.Preset)
	require.Equal(t, []Stage{StageDeinterlace}, p.EnabledStages())
	require.True(t, p.DoubleRate())
}

func TestEffectivePipelineUsesDetectedFieldOrder(t *testing.T) {
	job := NewJob("/in", "/out")
	order := FieldOrderBFF
	job.DetectedFieldOrder = &order

	p := job.EffectivePipeline()
	require.NotNil(t, p.Deinterlace.TFF)
	require.False(t, *p.Deinterlace.TFF)
	require.Nil(t, job.Deinterlace.TFF, "job must not be mutated")

	tff := true
	job.Deinterlace.TFF = &tff
	p = job.EffectivePipeline()
	require.True(t, *p.Deinterlace.TFF)
}

func TestEnabledStagesOrder(t *testing.T) {
	p := DefaultPipeline()
	p.CropResize.Enabled = true
	p.CropResize.CropEnabled = true
	p.CropResize.ResizeEnabled = true
	w := 1920
	p.CropResize.TargetWidth = &w
	p.NoiseReduction.Enabled = true
	p.Sharpen.Enabled = true
	p.Deband.Enabled = true
	p.Deblock.Enabled = true
	p.Dehalo.Enabled = true
	p.ColorCorrection.Enabled = true
	p.ChromaFixes.Enabled = true
	p.ChromaFixes.ApplyVinverse = true

	require.Equal(t, StageOrder, p.EnabledStages())
}

func TestChromaFixesNeedASubToggle(t *testing.T) {
	p := PipelineFromLegacy(DefaultQTGMC())
	p.ChromaFixes.Enabled = true
	require.False(t, p.StageEnabled(StageChromaFixes))
	p.ChromaFixes.ApplyDeCrawl = true
	require.True(t, p.StageEnabled(StageChromaFixes))
}

func TestVideoCodecMapping(t *testing.T) {
	profile, ok := CodecProResHQ.ProResProfile()
	require.True(t, ok)
	require.Equal(t, 3, profile)
	require.Equal(t, "prores_ks", CodecProResLT.FFmpegCodec())
	require.Equal(t, "libx265", CodecH265.FFmpegCodec())
	require.Equal(t, ContainerAVI, CodecFFV1.PreferredContainer())
	require.Equal(t, ContainerMOV, CodecProResProxy.PreferredContainer())
	_, ok = CodecH264.ProResProfile()
	require.False(t, ok)
}

func TestEncodingSettingsContainer(t *testing.T) {
	e := DefaultEncodingSettings()
	require.Equal(t, ContainerMP4, e.OutputContainer())
	require.True(t, e.MatchesOutput("/videos/OUT.MP4"))
	require.False(t, e.MatchesOutput("/videos/out.mkv"))
	require.Equal(t, "H.264 crf 18, preset medium, audio copy, mp4", e.Summary())

	e = EncodingSettings{Codec: CodecProResHQ, AudioCodec: "pcm_s16le"}
	require.Equal(t, ContainerMOV, e.OutputContainer())
	require.True(t, e.MatchesOutput("clip.mov"))
	require.Equal(t, "ProRes 422 HQ, audio pcm_s16le, mov", e.Summary())

	e = EncodingSettings{Codec: CodecFFV1, Container: " MKV ", AudioCodec: "flac", AudioBitrate: 0}
	require.Equal(t, ContainerMKV, e.OutputContainer())
	require.Equal(t, "FFV1 (Lossless), audio flac, mkv", e.Summary())
}

func TestQTGMCFieldBased(t *testing.T) {
	q := DefaultQTGMC()
	require.Equal(t, 1, q.FieldBased())
	tff := true
	q.TFF = &tff
	require.Equal(t, 2, q.FieldBased())
}
