package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// QTGMCPreset names a QTGMC speed/quality preset exactly as havsfunc expects it.
type QTGMCPreset string

const (
	PresetPlacebo   QTGMCPreset = "Placebo"
	PresetVerySlow  QTGMCPreset = "Very Slow"
	PresetSlower    QTGMCPreset = "Slower"
	PresetSlow      QTGMCPreset = "Slow"
	PresetMedium    QTGMCPreset = "Medium"
	PresetFast      QTGMCPreset = "Fast"
	PresetFaster    QTGMCPreset = "Faster"
	PresetVeryFast  QTGMCPreset = "Very Fast"
	PresetSuperFast QTGMCPreset = "Super Fast"
	PresetUltraFast QTGMCPreset = "Ultra Fast"
	PresetDraft     QTGMCPreset = "Draft"
)

var qtgmcPresets = []QTGMCPreset{
	PresetPlacebo, PresetVerySlow, PresetSlower, PresetSlow, PresetMedium,
	PresetFast, PresetFaster, PresetVeryFast, PresetSuperFast, PresetUltraFast, PresetDraft,
}

var presetTitle = cases.Title(language.English)

// NormalizeQTGMCPreset canonicalizes loosely written preset names
// ("very slow", "VERY-SLOW", "veryslow") to the havsfunc spelling.
func NormalizeQTGMCPreset(value string) (QTGMCPreset, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return PresetSlower, nil
	}
	titled := presetTitle.String(strings.ReplaceAll(strings.ReplaceAll(trimmed, "-", " "), "_", " "))
	compact := strings.ReplaceAll(titled, " ", "")
	for _, preset := range qtgmcPresets {
		if string(preset) == titled || strings.EqualFold(strings.ReplaceAll(string(preset), " ", ""), compact) {
			return preset, nil
		}
	}
	return "", fmt.Errorf("unknown QTGMC preset %q", value)
}

// QTGMC holds the deinterlace stage tunables. Pointer fields are optional and
// fall back to the preset's own choice when nil; value fields carry the
// havsfunc default and are only rendered when changed.
type QTGMC struct {
	Enabled    bool        `json:"enabled" yaml:"enabled"`
	Preset     QTGMCPreset `json:"preset" yaml:"preset"`
	InputType  int         `json:"inputType" yaml:"inputType"`
	TFF        *bool       `json:"tff,omitempty" yaml:"tff,omitempty"`
	FPSDivisor int         `json:"fpsDivisor" yaml:"fpsDivisor"`

	// Temporal radii and repair.
	TR0       *int `json:"tr0,omitempty" yaml:"tr0,omitempty"`
	TR1       *int `json:"tr1,omitempty" yaml:"tr1,omitempty"`
	TR2       *int `json:"tr2,omitempty" yaml:"tr2,omitempty"`
	Rep0      *int `json:"rep0,omitempty" yaml:"rep0,omitempty"`
	Rep1      int  `json:"rep1" yaml:"rep1"`
	Rep2      *int `json:"rep2,omitempty" yaml:"rep2,omitempty"`
	RepChroma bool `json:"repChroma" yaml:"repChroma"`

	// Interpolation.
	EdiMode   *string `json:"ediMode,omitempty" yaml:"ediMode,omitempty"`
	NNSize    *int    `json:"nnSize,omitempty" yaml:"nnSize,omitempty"`
	NNeurons  *int    `json:"nnNeurons,omitempty" yaml:"nnNeurons,omitempty"`
	EdiQual   int     `json:"ediQual" yaml:"ediQual"`
	EdiMaxD   *int    `json:"ediMaxD,omitempty" yaml:"ediMaxD,omitempty"`
	ChromaEdi string  `json:"chromaEdi" yaml:"chromaEdi"`

	// Motion analysis.
	BlockSize    *int  `json:"blockSize,omitempty" yaml:"blockSize,omitempty"`
	Overlap      *int  `json:"overlap,omitempty" yaml:"overlap,omitempty"`
	Search       *int  `json:"search,omitempty" yaml:"search,omitempty"`
	SearchParam  *int  `json:"searchParam,omitempty" yaml:"searchParam,omitempty"`
	PelSearch    *int  `json:"pelSearch,omitempty" yaml:"pelSearch,omitempty"`
	ChromaMotion *bool `json:"chromaMotion,omitempty" yaml:"chromaMotion,omitempty"`
	TrueMotion   bool  `json:"trueMotion" yaml:"trueMotion"`
	Lambda       *int  `json:"lambda,omitempty" yaml:"lambda,omitempty"`
	LSAD         *int  `json:"lsad,omitempty" yaml:"lsad,omitempty"`
	PNew         *int  `json:"pNew,omitempty" yaml:"pNew,omitempty"`
	PLevel       *int  `json:"pLevel,omitempty" yaml:"pLevel,omitempty"`
	GlobalMotion bool  `json:"globalMotion" yaml:"globalMotion"`
	DCT          int   `json:"dct" yaml:"dct"`
	SubPel       *int  `json:"subPel,omitempty" yaml:"subPel,omitempty"`
	SubPelInterp int   `json:"subPelInterp" yaml:"subPelInterp"`

	// Thresholds.
	ThSAD1 int `json:"thSad1" yaml:"thSad1"`
	ThSAD2 int `json:"thSad2" yaml:"thSad2"`
	ThSCD1 int `json:"thScd1" yaml:"thScd1"`
	ThSCD2 int `json:"thScd2" yaml:"thScd2"`

	// Sharpening.
	Sharpness  *float64 `json:"sharpness,omitempty" yaml:"sharpness,omitempty"`
	SMode      *int     `json:"sMode,omitempty" yaml:"sMode,omitempty"`
	SLMode     *int     `json:"slMode,omitempty" yaml:"slMode,omitempty"`
	SLRad      *int     `json:"slRad,omitempty" yaml:"slRad,omitempty"`
	SOvs       int      `json:"sOvs" yaml:"sOvs"`
	SVThin     float64  `json:"svThin" yaml:"svThin"`
	SBB        *int     `json:"sbb,omitempty" yaml:"sbb,omitempty"`
	SrchClipPP *int     `json:"srchClipPp,omitempty" yaml:"srchClipPp,omitempty"`

	// Noise processing.
	NoiseProcess   *int     `json:"noiseProcess,omitempty" yaml:"noiseProcess,omitempty"`
	EZDenoise      *float64 `json:"ezDenoise,omitempty" yaml:"ezDenoise,omitempty"`
	EZKeepGrain    *float64 `json:"ezKeepGrain,omitempty" yaml:"ezKeepGrain,omitempty"`
	NoisePreset    string   `json:"noisePreset" yaml:"noisePreset"`
	Denoiser       *string  `json:"denoiser,omitempty" yaml:"denoiser,omitempty"`
	FFTThreads     int      `json:"fftThreads" yaml:"fftThreads"`
	DenoiseMC      *bool    `json:"denoiseMc,omitempty" yaml:"denoiseMc,omitempty"`
	NoiseTR        *int     `json:"noiseTr,omitempty" yaml:"noiseTr,omitempty"`
	Sigma          *float64 `json:"sigma,omitempty" yaml:"sigma,omitempty"`
	ChromaNoise    bool     `json:"chromaNoise" yaml:"chromaNoise"`
	ShowNoise      float64  `json:"showNoise" yaml:"showNoise"`
	GrainRestore   *float64 `json:"grainRestore,omitempty" yaml:"grainRestore,omitempty"`
	NoiseRestore   *float64 `json:"noiseRestore,omitempty" yaml:"noiseRestore,omitempty"`
	NoiseDeint     *string  `json:"noiseDeint,omitempty" yaml:"noiseDeint,omitempty"`
	StabilizeNoise *bool    `json:"stabilizeNoise,omitempty" yaml:"stabilizeNoise,omitempty"`

	// Source matching.
	SourceMatch  int     `json:"sourceMatch" yaml:"sourceMatch"`
	MatchPreset  *string `json:"matchPreset,omitempty" yaml:"matchPreset,omitempty"`
	MatchEdi     *string `json:"matchEdi,omitempty" yaml:"matchEdi,omitempty"`
	MatchPreset2 *string `json:"matchPreset2,omitempty" yaml:"matchPreset2,omitempty"`
	MatchEdi2    *string `json:"matchEdi2,omitempty" yaml:"matchEdi2,omitempty"`
	MatchTR2     int     `json:"matchTr2" yaml:"matchTr2"`
	MatchEnhance float64 `json:"matchEnhance" yaml:"matchEnhance"`
	Lossless     int     `json:"lossless" yaml:"lossless"`

	// Advanced.
	Border       bool    `json:"border" yaml:"border"`
	Precise      *bool   `json:"precise,omitempty" yaml:"precise,omitempty"`
	ForceTR      int     `json:"forceTr" yaml:"forceTr"`
	Str          float64 `json:"str" yaml:"str"`
	Amp          float64 `json:"amp" yaml:"amp"`
	FastMA       bool    `json:"fastMa" yaml:"fastMa"`
	ESearchP     bool    `json:"eSearchP" yaml:"eSearchP"`
	RefineMotion bool    `json:"refineMotion" yaml:"refineMotion"`

	// GPU.
	OpenCL bool `json:"opencl" yaml:"opencl"`
	Device *int `json:"device,omitempty" yaml:"device,omitempty"`
}

// DefaultQTGMC returns the havsfunc defaults with the stage enabled.
func DefaultQTGMC() QTGMC {
	return QTGMC{
		Enabled:      true,
		Preset:       PresetSlower,
		FPSDivisor:   1,
		RepChroma:    true,
		EdiQual:      1,
		GlobalMotion: true,
		SubPelInterp: 2,
		ThSAD1:       640,
		ThSAD2:       256,
		ThSCD1:       180,
		ThSCD2:       98,
		NoisePreset:  "Fast",
		FFTThreads:   1,
		MatchTR2:     1,
		MatchEnhance: 0.5,
		Str:          2.0,
		Amp:          0.0625,
	}
}

// DoubleRate reports whether QTGMC outputs one frame per field.
func (q QTGMC) DoubleRate() bool {
	return q.Enabled && q.FPSDivisor == 1
}

// FieldBased returns the VapourSynth _FieldBased code implied by the TFF flag:
// 2 for top field first, 1 otherwise.
func (q QTGMC) FieldBased() int {
	if q.TFF != nil && *q.TFF {
		return 2
	}
	return 1
}

func (q *QTGMC) normalize() error {
	preset, err := NormalizeQTGMCPreset(string(q.Preset))
	if err != nil {
		return err
	}
	q.Preset = preset
	if q.FPSDivisor < 1 {
		return fmt.Errorf("deinterlace fpsDivisor must be >= 1, got %d", q.FPSDivisor)
	}
	return nil
}
