package models

// NoiseReductionMethod selects the temporal denoiser.
type NoiseReductionMethod string

const (
	NoiseSMDegrain         NoiseReductionMethod = "smDegrain"
	NoiseMCTemporalDenoise NoiseReductionMethod = "mcTemporalDenoise"
	NoiseQTGMCBuiltin      NoiseReductionMethod = "qtgmcBuiltin"
)

// Preset names shared by the stages that expose UI presets. Presets are
// informational here: the concrete tunables are always authoritative.
type Preset string

const (
	PresetOff    Preset = "off"
	PresetCustom Preset = "custom"
)

// NoiseReduction configures the denoise stage.
type NoiseReduction struct {
	Enabled bool                 `json:"enabled" yaml:"enabled"`
	Preset  Preset               `json:"preset" yaml:"preset"`
	Method  NoiseReductionMethod `json:"method" yaml:"method"`

	SMDegrainTR        int  `json:"smDegrainTr" yaml:"smDegrainTr"`
	SMDegrainThSAD     int  `json:"smDegrainThSAD" yaml:"smDegrainThSAD"`
	SMDegrainThSADC    int  `json:"smDegrainThSADC" yaml:"smDegrainThSADC"`
	SMDegrainRefine    bool `json:"smDegrainRefine" yaml:"smDegrainRefine"`
	SMDegrainPrefilter int  `json:"smDegrainPrefilter" yaml:"smDegrainPrefilter"`

	MCTemporalSigma   float64 `json:"mcTemporalSigma" yaml:"mcTemporalSigma"`
	MCTemporalRadius  int     `json:"mcTemporalRadius" yaml:"mcTemporalRadius"`
	MCTemporalProfile string  `json:"mcTemporalProfile" yaml:"mcTemporalProfile"`

	QTGMCEZDenoise   float64 `json:"qtgmcEzDenoise" yaml:"qtgmcEzDenoise"`
	QTGMCEZKeepGrain float64 `json:"qtgmcEzKeepGrain" yaml:"qtgmcEzKeepGrain"`
}

func DefaultNoiseReduction() NoiseReduction {
	return NoiseReduction{
		Preset:             PresetOff,
		Method:             NoiseSMDegrain,
		SMDegrainTR:        2,
		SMDegrainThSAD:     300,
		SMDegrainThSADC:    150,
		SMDegrainRefine:    true,
		SMDegrainPrefilter: 2,
		MCTemporalSigma:    4.0,
		MCTemporalRadius:   2,
		MCTemporalProfile:  "fast",
	}
}

// DehaloMethod selects the halo removal filter.
type DehaloMethod string

const (
	DehaloAlpha DehaloMethod = "DeHalo_alpha"
	DehaloFine  DehaloMethod = "FineDehalo"
	DehaloYAHR  DehaloMethod = "YAHR"
)

// Dehalo configures the halo removal stage. Rx, Ry, DarkStr and BrightStr are
// shared by DeHalo_alpha and FineDehalo.
type Dehalo struct {
	Enabled   bool         `json:"enabled" yaml:"enabled"`
	Method    DehaloMethod `json:"method" yaml:"method"`
	Rx        float64      `json:"rx" yaml:"rx"`
	Ry        float64      `json:"ry" yaml:"ry"`
	DarkStr   float64      `json:"darkStr" yaml:"darkStr"`
	BrightStr float64      `json:"brightStr" yaml:"brightStr"`

	LowThreshold  int `json:"lowThreshold" yaml:"lowThreshold"`
	HighThreshold int `json:"highThreshold" yaml:"highThreshold"`

	YAHRBlur  int `json:"yahrBlur" yaml:"yahrBlur"`
	YAHRDepth int `json:"yahrDepth" yaml:"yahrDepth"`
}

func DefaultDehalo() Dehalo {
	return Dehalo{
		Method:        DehaloAlpha,
		Rx:            2.0,
		Ry:            2.0,
		DarkStr:       1.0,
		BrightStr:     1.0,
		LowThreshold:  50,
		HighThreshold: 100,
		YAHRBlur:      2,
		YAHRDepth:     32,
	}
}

// DeblockMethod selects the deblocking filter.
type DeblockMethod string

const (
	DeblockQED      DeblockMethod = "Deblock_QED"
	DeblockStandard DeblockMethod = "Deblock"
)

type Deblock struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Method  DeblockMethod `json:"method" yaml:"method"`

	Quant1   int `json:"quant1" yaml:"quant1"`
	Quant2   int `json:"quant2" yaml:"quant2"`
	AOffset1 int `json:"aOffset1" yaml:"aOffset1"`
	AOffset2 int `json:"aOffset2" yaml:"aOffset2"`

	BlockSize int `json:"blockSize" yaml:"blockSize"`
	Overlap   int `json:"overlap" yaml:"overlap"`
}

func DefaultDeblock() Deblock {
	return Deblock{
		Method:    DeblockQED,
		Quant1:    24,
		Quant2:    26,
		AOffset1:  1,
		AOffset2:  1,
		BlockSize: 8,
		Overlap:   4,
	}
}

// Deband configures f3kdb.
type Deband struct {
	Enabled      bool `json:"enabled" yaml:"enabled"`
	Range        int  `json:"range" yaml:"range"`
	Y            int  `json:"y" yaml:"y"`
	Cb           int  `json:"cb" yaml:"cb"`
	Cr           int  `json:"cr" yaml:"cr"`
	GrainY       int  `json:"grainY" yaml:"grainY"`
	GrainC       int  `json:"grainC" yaml:"grainC"`
	DynamicGrain bool `json:"dynamicGrain" yaml:"dynamicGrain"`
	OutputDepth  int  `json:"outputDepth" yaml:"outputDepth"`
}

func DefaultDeband() Deband {
	return Deband{
		Range:        15,
		Y:            32,
		Cb:           32,
		Cr:           32,
		GrainY:       24,
		GrainC:       24,
		DynamicGrain: true,
		OutputDepth:  16,
	}
}

// SharpenMethod selects the sharpener.
type SharpenMethod string

const (
	SharpenLSFmod SharpenMethod = "LSFmod"
	SharpenCAS    SharpenMethod = "CAS"
)

type Sharpen struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Method  SharpenMethod `json:"method" yaml:"method"`

	Strength   int `json:"strength" yaml:"strength"`
	Overshoot  int `json:"overshoot" yaml:"overshoot"`
	Undershoot int `json:"undershoot" yaml:"undershoot"`
	SoftEdge   int `json:"softEdge" yaml:"softEdge"`

	CASSharpness float64 `json:"casSharpness" yaml:"casSharpness"`
}

func DefaultSharpen() Sharpen {
	return Sharpen{
		Method:       SharpenLSFmod,
		Strength:     100,
		Overshoot:    1,
		Undershoot:   1,
		CASSharpness: 0.5,
	}
}

// ChromaFix bundles the three independent chroma repairs.
type ChromaFix struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Preset  Preset `json:"preset" yaml:"preset"`

	ApplyChromaBleedingFix bool    `json:"applyChromaBleedingFix" yaml:"applyChromaBleedingFix"`
	ChromaBleedCx          int     `json:"chromaBleedCx" yaml:"chromaBleedCx"`
	ChromaBleedCy          int     `json:"chromaBleedCy" yaml:"chromaBleedCy"`
	ChromaBleedCBlur       float64 `json:"chromaBleedCBlur" yaml:"chromaBleedCBlur"`
	ChromaBleedStrength    float64 `json:"chromaBleedStrength" yaml:"chromaBleedStrength"`

	ApplyDeCrawl   bool `json:"applyDeCrawl" yaml:"applyDeCrawl"`
	DeCrawlYThresh int  `json:"deCrawlYThresh" yaml:"deCrawlYThresh"`
	DeCrawlCThresh int  `json:"deCrawlCThresh" yaml:"deCrawlCThresh"`
	DeCrawlMaxDiff int  `json:"deCrawlMaxDiff" yaml:"deCrawlMaxDiff"`

	ApplyVinverse bool    `json:"applyVinverse" yaml:"applyVinverse"`
	VinverseSstr  float64 `json:"vinverseSstr" yaml:"vinverseSstr"`
	VinverseAmnt  int     `json:"vinverseAmnt" yaml:"vinverseAmnt"`
	VinverseScl   int     `json:"vinverseScl" yaml:"vinverseScl"`
}

func DefaultChromaFix() ChromaFix {
	return ChromaFix{
		Preset:              PresetOff,
		ChromaBleedCx:       4,
		ChromaBleedCy:       4,
		ChromaBleedCBlur:    0.7,
		ChromaBleedStrength: 1.0,
		DeCrawlYThresh:      10,
		DeCrawlCThresh:      10,
		DeCrawlMaxDiff:      50,
		VinverseSstr:        2.7,
		VinverseAmnt:        255,
		VinverseScl:         12,
	}
}

// ColorCorrection configures Tweak plus optional levels.
type ColorCorrection struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Preset  Preset `json:"preset" yaml:"preset"`

	Brightness float64 `json:"brightness" yaml:"brightness"`
	Contrast   float64 `json:"contrast" yaml:"contrast"`
	Hue        float64 `json:"hue" yaml:"hue"`
	Saturation float64 `json:"saturation" yaml:"saturation"`
	Coring     bool    `json:"coring" yaml:"coring"`

	ApplyLevels bool    `json:"applyLevels" yaml:"applyLevels"`
	InputLow    int     `json:"inputLow" yaml:"inputLow"`
	InputHigh   int     `json:"inputHigh" yaml:"inputHigh"`
	OutputLow   int     `json:"outputLow" yaml:"outputLow"`
	OutputHigh  int     `json:"outputHigh" yaml:"outputHigh"`
	Gamma       float64 `json:"gamma" yaml:"gamma"`
}

func DefaultColorCorrection() ColorCorrection {
	return ColorCorrection{
		Preset:     PresetOff,
		Contrast:   1.0,
		Saturation: 1.0,
		InputHigh:  255,
		OutputHigh: 255,
		Gamma:      1.0,
	}
}

// ResizeKernel names an arbitrary-size resampler.
type ResizeKernel string

const (
	KernelSpline36 ResizeKernel = "spline36"
	KernelLanczos  ResizeKernel = "lanczos"
	KernelBicubic  ResizeKernel = "bicubic"
	KernelBilinear ResizeKernel = "bilinear"
	KernelNNEDI3   ResizeKernel = "nnedi3"
	KernelEEDI3    ResizeKernel = "eedi3"
)

// Standard reports whether the kernel is a plain core.resize function.
func (k ResizeKernel) Standard() bool {
	switch k {
	case KernelNNEDI3, KernelEEDI3:
		return false
	default:
		return true
	}
}

// VSFunction returns the VapourSynth resize function for standard kernels.
func (k ResizeKernel) VSFunction() string {
	switch k {
	case KernelLanczos:
		return "Lanczos"
	case KernelBicubic:
		return "Bicubic"
	case KernelBilinear:
		return "Bilinear"
	default:
		return "Spline36"
	}
}

// UpscaleMethod names an integer-factor upscaler.
type UpscaleMethod string

const (
	UpscaleNNEDI3   UpscaleMethod = "nnedi3Rpow2"
	UpscaleEEDI3    UpscaleMethod = "eedi3Rpow2"
	UpscaleSpline36 UpscaleMethod = "spline36"
)

// CropResize configures the crop pre-pass and the resize post-pass.
type CropResize struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Preset  Preset `json:"preset" yaml:"preset"`

	CropEnabled bool `json:"cropEnabled" yaml:"cropEnabled"`
	CropLeft    int  `json:"cropLeft" yaml:"cropLeft"`
	CropRight   int  `json:"cropRight" yaml:"cropRight"`
	CropTop     int  `json:"cropTop" yaml:"cropTop"`
	CropBottom  int  `json:"cropBottom" yaml:"cropBottom"`

	ResizeEnabled  bool         `json:"resizeEnabled" yaml:"resizeEnabled"`
	TargetWidth    *int         `json:"targetWidth,omitempty" yaml:"targetWidth,omitempty"`
	TargetHeight   *int         `json:"targetHeight,omitempty" yaml:"targetHeight,omitempty"`
	Kernel         ResizeKernel `json:"kernel" yaml:"kernel"`
	MaintainAspect bool         `json:"maintainAspect" yaml:"maintainAspect"`

	UseIntegerUpscale bool          `json:"useIntegerUpscale" yaml:"useIntegerUpscale"`
	UpscaleMethod     UpscaleMethod `json:"upscaleMethod" yaml:"upscaleMethod"`
	UpscaleFactor     int           `json:"upscaleFactor" yaml:"upscaleFactor"`
}

func DefaultCropResize() CropResize {
	return CropResize{
		Preset:         PresetOff,
		Kernel:         KernelSpline36,
		MaintainAspect: true,
		UpscaleMethod:  UpscaleNNEDI3,
		UpscaleFactor:  2,
	}
}

// CropActive reports whether the crop pre-pass runs.
func (c CropResize) CropActive() bool {
	return c.Enabled && c.CropEnabled
}

// ResizeActive reports whether the resize post-pass runs.
func (c CropResize) ResizeActive() bool {
	if !c.Enabled || !c.ResizeEnabled {
		return false
	}
	if c.UseIntegerUpscale {
		return c.UpscaleFactor > 1
	}
	return c.TargetWidth != nil || c.TargetHeight != nil
}
