package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// FieldOrder is the detected interlacing order of the source.
type FieldOrder string

const (
	FieldOrderTFF         FieldOrder = "tff"
	FieldOrderBFF         FieldOrder = "bff"
	FieldOrderProgressive FieldOrder = "progressive"
	FieldOrderUnknown     FieldOrder = "unknown"
)

// TFF converts the field order to the deinterlacer flag; ok is false when the
// order does not determine it.
func (f FieldOrder) TFF() (value bool, ok bool) {
	switch f {
	case FieldOrderTFF:
		return true, true
	case FieldOrderBFF:
		return false, true
	default:
		return false, false
	}
}

// Job is one processing request.
type Job struct {
	ID                 uuid.UUID        `json:"id" yaml:"id"`
	InputPath          string           `json:"inputPath" yaml:"inputPath"`
	OutputPath         string           `json:"outputPath" yaml:"outputPath"`
	Deinterlace        QTGMC            `json:"qtgmcParameters" yaml:"qtgmcParameters"`
	Pipeline           *Pipeline        `json:"restorationPipeline,omitempty" yaml:"restorationPipeline,omitempty"`
	Encoding           EncodingSettings `json:"encodingSettings" yaml:"encodingSettings"`
	DetectedFieldOrder *FieldOrder      `json:"detectedFieldOrder,omitempty" yaml:"detectedFieldOrder,omitempty"`
	TotalFrames        *int             `json:"totalFrames,omitempty" yaml:"totalFrames,omitempty"`
	InputFrameRate     *float64         `json:"inputFrameRate,omitempty" yaml:"inputFrameRate,omitempty"`
}

// NewJob returns a job with a fresh identifier and default settings.
func NewJob(inputPath, outputPath string) Job {
	return Job{
		ID:          uuid.New(),
		InputPath:   inputPath,
		OutputPath:  outputPath,
		Deinterlace: DefaultQTGMC(),
		Encoding:    DefaultEncodingSettings(),
	}
}

// EffectivePipeline returns the multi-stage pipeline, synthesizing one from
// the legacy deinterlace set when none was supplied. A detected field order
// fills in the TFF flag when the job leaves it unset.
func (j Job) EffectivePipeline() Pipeline {
	var p Pipeline
	if j.Pipeline != nil {
		p = *j.Pipeline
	} else {
		p = PipelineFromLegacy(j.Deinterlace)
	}
	if p.Deinterlace.TFF == nil && j.DetectedFieldOrder != nil {
		if tff, ok := j.DetectedFieldOrder.TFF(); ok {
			p.Deinterlace.TFF = &tff
		}
	}
	return p
}

// FrameRate returns the known input frame rate or fallback.
func (j Job) FrameRate(fallback float64) float64 {
	if j.InputFrameRate != nil && *j.InputFrameRate > 0 {
		return *j.InputFrameRate
	}
	return fallback
}

// KnownTotalFrames returns the caller-supplied frame count, or 0.
func (j Job) KnownTotalFrames() int {
	if j.TotalFrames == nil || *j.TotalFrames < 0 {
		return 0
	}
	return *j.TotalFrames
}

// Validate checks the fields every run needs.
func (j Job) Validate() error {
	var problems []string
	if j.ID == uuid.Nil {
		problems = append(problems, "id is required")
	}
	if strings.TrimSpace(j.InputPath) == "" {
		problems = append(problems, "inputPath is required")
	}
	if strings.TrimSpace(j.OutputPath) == "" {
		problems = append(problems, "outputPath is required")
	}
	if j.Encoding.Quality < 0 {
		problems = append(problems, "encodingSettings.quality must be >= 0")
	}
	if j.Encoding.AudioBitrate < 0 {
		problems = append(problems, "encodingSettings.audioBitrate must be >= 0")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid job: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Normalize canonicalizes free-form values such as preset names.
func (j *Job) Normalize() error {
	if j.Deinterlace.Enabled {
		if err := j.Deinterlace.normalize(); err != nil {
			return fmt.Errorf("qtgmcParameters: %w", err)
		}
	}
	if j.Pipeline != nil {
		if err := j.Pipeline.normalize(); err != nil {
			return fmt.Errorf("restorationPipeline: %w", err)
		}
	}
	return nil
}

type jobAlias Job

func defaultJobAlias() jobAlias {
	return jobAlias{
		Deinterlace: DefaultQTGMC(),
		Encoding:    DefaultEncodingSettings(),
	}
}

func (j *Job) UnmarshalJSON(data []byte) error {
	decoded := defaultJobAlias()
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*j = Job(decoded)
	return nil
}

func (j *Job) UnmarshalYAML(node *yaml.Node) error {
	decoded := defaultJobAlias()
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*j = Job(decoded)
	return nil
}

// ParseJob decodes a job document. format is "json" or "yaml"; an empty
// format sniffs the first non-space byte.
func ParseJob(data []byte, format string) (Job, error) {
	var job Job
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return job, errors.New("job document is empty")
	}
	if format == "" {
		format = "yaml"
		if trimmed[0] == '{' {
			format = "json"
		}
	}
	switch format {
	case "json":
		if err := json.Unmarshal(trimmed, &job); err != nil {
			return job, fmt.Errorf("decode job json: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(trimmed, &job); err != nil {
			return job, fmt.Errorf("decode job yaml: %w", err)
		}
	default:
		return job, fmt.Errorf("unsupported job format %q", format)
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if err := job.Normalize(); err != nil {
		return job, err
	}
	if err := job.Validate(); err != nil {
		return job, err
	}
	return job, nil
}

// LoadJob reads a job file; the extension selects the decoder.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read job file: %w", err)
	}
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = "json"
	case ".yaml", ".yml":
		format = "yaml"
	}
	return ParseJob(data, format)
}
