package models

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Stage identifies one restoration pass.
type Stage string

const (
	StageCrop            Stage = "crop"
	StageDeinterlace     Stage = "deinterlace"
	StageNoiseReduction  Stage = "noiseReduction"
	StageDehalo          Stage = "dehalo"
	StageDeblock         Stage = "deblock"
	StageDeband          Stage = "deband"
	StageSharpen         Stage = "sharpen"
	StageChromaFixes     Stage = "chromaFixes"
	StageColorCorrection Stage = "colorCorrection"
	StageResize          Stage = "resize"
)

// StageOrder is the fixed processing order. Crop must see the source
// resolution and resize must run after every analysis stage.
var StageOrder = []Stage{
	StageCrop,
	StageDeinterlace,
	StageNoiseReduction,
	StageDehalo,
	StageDeblock,
	StageDeband,
	StageSharpen,
	StageChromaFixes,
	StageColorCorrection,
	StageResize,
}

// DisplayName returns a human label for the stage.
func (s Stage) DisplayName() string {
	switch s {
	case StageCrop:
		return "Crop"
	case StageDeinterlace:
		return "Deinterlace"
	case StageNoiseReduction:
		return "Noise Reduction"
	case StageDehalo:
		return "Dehalo"
	case StageDeblock:
		return "Deblock"
	case StageDeband:
		return "Deband"
	case StageSharpen:
		return "Sharpen"
	case StageChromaFixes:
		return "Chroma Fixes"
	case StageColorCorrection:
		return "Color Correction"
	case StageResize:
		return "Resize"
	default:
		return string(s)
	}
}

// Pipeline aggregates every stage parameter set.
type Pipeline struct {
	Deinterlace     QTGMC           `json:"deinterlace" yaml:"deinterlace"`
	NoiseReduction  NoiseReduction  `json:"noiseReduction" yaml:"noiseReduction"`
	Dehalo          Dehalo          `json:"dehalo" yaml:"dehalo"`
	Deblock         Deblock         `json:"deblock" yaml:"deblock"`
	Deband          Deband          `json:"deband" yaml:"deband"`
	Sharpen         Sharpen         `json:"sharpen" yaml:"sharpen"`
	ChromaFixes     ChromaFix       `json:"chromaFixes" yaml:"chromaFixes"`
	ColorCorrection ColorCorrection `json:"colorCorrection" yaml:"colorCorrection"`
	CropResize      CropResize      `json:"cropResize" yaml:"cropResize"`
}

// DefaultPipeline returns a pipeline with deinterlacing on and every other
// stage off.
func DefaultPipeline() Pipeline {
	return Pipeline{
		Deinterlace:     DefaultQTGMC(),
		NoiseReduction:  DefaultNoiseReduction(),
		Dehalo:          DefaultDehalo(),
		Deblock:         DefaultDeblock(),
		Deband:          DefaultDeband(),
		Sharpen:         DefaultSharpen(),
		ChromaFixes:     DefaultChromaFix(),
		ColorCorrection: DefaultColorCorrection(),
		CropResize:      DefaultCropResize(),
	}
}

// PipelineFromLegacy wraps a single deinterlace parameter set.
func PipelineFromLegacy(q QTGMC) Pipeline {
	p := DefaultPipeline()
	p.Deinterlace = q
	p.NoiseReduction.Enabled = false
	p.Dehalo.Enabled = false
	p.Deblock.Enabled = false
	p.Deband.Enabled = false
	p.Sharpen.Enabled = false
	p.ChromaFixes.Enabled = false
	p.ColorCorrection.Enabled = false
	p.CropResize.Enabled = false
	return p
}

// StageEnabled reports whether a stage contributes to the script.
func (p Pipeline) StageEnabled(stage Stage) bool {
	switch stage {
	case StageCrop:
		return p.CropResize.CropActive()
	case StageDeinterlace:
		return p.Deinterlace.Enabled
	case StageNoiseReduction:
		return p.NoiseReduction.Enabled
	case StageDehalo:
		return p.Dehalo.Enabled
	case StageDeblock:
		return p.Deblock.Enabled
	case StageDeband:
		return p.Deband.Enabled
	case StageSharpen:
		return p.Sharpen.Enabled
	case StageChromaFixes:
		return p.ChromaFixes.Enabled &&
			(p.ChromaFixes.ApplyChromaBleedingFix || p.ChromaFixes.ApplyDeCrawl || p.ChromaFixes.ApplyVinverse)
	case StageColorCorrection:
		return p.ColorCorrection.Enabled
	case StageResize:
		return p.CropResize.ResizeActive()
	default:
		return false
	}
}

// EnabledStages returns the active stages in processing order.
func (p Pipeline) EnabledStages() []Stage {
	stages := make([]Stage, 0, len(StageOrder))
	for _, stage := range StageOrder {
		if p.StageEnabled(stage) {
			stages = append(stages, stage)
		}
	}
	return stages
}

// DoubleRate reports whether the deinterlacer emits one frame per field.
func (p Pipeline) DoubleRate() bool {
	return p.Deinterlace.DoubleRate()
}

func (p *Pipeline) normalize() error {
	if !p.Deinterlace.Enabled {
		return nil
	}
	return p.Deinterlace.normalize()
}

type pipelineAlias Pipeline

func (p *Pipeline) UnmarshalJSON(data []byte) error {
	decoded := pipelineAlias(DefaultPipeline())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = Pipeline(decoded)
	return nil
}

func (p *Pipeline) UnmarshalYAML(node *yaml.Node) error {
	decoded := pipelineAlias(DefaultPipeline())
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*p = Pipeline(decoded)
	return nil
}
