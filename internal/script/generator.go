package script

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vapourbox/internal/fileutil"
	"vapourbox/internal/logging"
	"vapourbox/internal/models"
)

//go:embed templates/*.vpy
var embeddedTemplates embed.FS

var (
	// ErrTemplateLoad marks failures to obtain a template from disk or the
	// embedded fallback.
	ErrTemplateLoad = errors.New("template load failed")
	// ErrWrite marks failures to persist a rendered script.
	ErrWrite = errors.New("script write failed")
)

// stagesPlaceholder is expanded to the restoration stages template when a
// loaded entry template contains it.
const stagesPlaceholder = "{{RESTORATION_STAGES}}"

// Kind identifies a template entry point.
type Kind string

const (
	KindPipeline Kind = "pipeline"
	KindPreview  Kind = "preview"
	KindStages   Kind = "stages"
)

func (k Kind) fileNames() []string {
	switch k {
	case KindPipeline:
		return []string{"pipeline.vpy", "qtgmc_template.vpy"}
	case KindPreview:
		return []string{"preview.vpy", "preview_template.vpy"}
	default:
		return []string{"stages.vpy"}
	}
}

// Options configures template discovery and output placement.
type Options struct {
	// TemplateDirs are searched before the built-in locations.
	TemplateDirs []string
	// SkipDefaultSearch restricts discovery to TemplateDirs and the
	// embedded templates.
	SkipDefaultSearch bool
	// TempDir receives generated scripts; os.TempDir() when empty.
	TempDir string
	Logger  *slog.Logger
}

// PreviewParams are the job-independent values for a preview render.
type PreviewParams struct {
	ClipPath   string
	FPSNum     int
	FPSDen     int
	FieldBased int
}

// Generator renders VapourSynth scripts. Templates are loaded once in
// NewGenerator and never change afterwards.
type Generator struct {
	pipeline string
	preview  string
	sources  map[Kind]string
	tempDir  string
	logger   *slog.Logger
}

// NewGenerator resolves all templates.
func NewGenerator(opts Options) (*Generator, error) {
	logger := logging.NewComponentLogger(opts.Logger, "script")
	dirs := SearchDirs(opts.TemplateDirs, !opts.SkipDefaultSearch)

	g := &Generator{
		sources: make(map[Kind]string, 3),
		tempDir: opts.TempDir,
		logger:  logger,
	}
	if strings.TrimSpace(g.tempDir) == "" {
		g.tempDir = os.TempDir()
	}

	stages, err := g.load(KindStages, dirs)
	if err != nil {
		return nil, err
	}
	pipeline, err := g.load(KindPipeline, dirs)
	if err != nil {
		return nil, err
	}
	preview, err := g.load(KindPreview, dirs)
	if err != nil {
		return nil, err
	}
	g.pipeline = strings.ReplaceAll(pipeline, stagesPlaceholder, stages)
	g.preview = strings.ReplaceAll(preview, stagesPlaceholder, stages)
	return g, nil
}

// SearchDirs lists template directories in lookup order.
func SearchDirs(extra []string, includeDefaults bool) []string {
	dirs := make([]string, 0, len(extra)+6)
	for _, dir := range extra {
		if strings.TrimSpace(dir) != "" {
			dirs = append(dirs, dir)
		}
	}
	if !includeDefaults {
		return dirs
	}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		dirs = append(dirs,
			filepath.Join(exeDir, "templates"),
			filepath.Join(exeDir, "Templates"),
			filepath.Join(exeDir, "..", "..", "templates"),
			filepath.Join(exeDir, "..", "..", "..", "templates"),
		)
	}
	return append(dirs, "templates", filepath.Join("worker", "templates"))
}

func (g *Generator) load(kind Kind, dirs []string) (string, error) {
	for _, dir := range dirs {
		for _, name := range kind.fileNames() {
			path := filepath.Join(dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					g.logger.Debug("template unreadable, skipping", logging.String("path", path), logging.Error(err))
				}
				continue
			}
			g.sources[kind] = path
			g.logger.Debug("template loaded", logging.String("kind", string(kind)), logging.String("path", path))
			return string(data), nil
		}
	}

	data, err := embeddedTemplates.ReadFile("templates/" + kind.fileNames()[0])
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplateLoad, kind, err)
	}
	g.sources[kind] = "embedded"
	g.logger.Debug("using embedded template", logging.String("kind", string(kind)))
	return string(data), nil
}

// Source reports where a template came from: a file path or "embedded".
func (g *Generator) Source(kind Kind) string {
	return g.sources[kind]
}

// Render returns the full-run script for job.
func (g *Generator) Render(job models.Job) string {
	p := job.EffectivePipeline()
	script := applyFields(g.pipeline, sourceFields(job, p))
	script = applyFields(script, []field{gate("TRIM", false), field{name: "TRIM_START"}, field{name: "TRIM_END"}})
	return applyFields(script, stageFields(p))
}

// RenderRange returns the full-run script restricted to source frames
// [start, end).
func (g *Generator) RenderRange(job models.Job, start, end int) string {
	p := job.EffectivePipeline()
	script := applyFields(g.pipeline, sourceFields(job, p))
	script = applyFields(script, []field{
		gate("TRIM", true),
		intAlways("TRIM_START", start),
		intAlways("TRIM_END", end),
	})
	return applyFields(script, stageFields(p))
}

// RenderPreview returns the preview script for an extracted clip. The
// clip values are substituted before any stage logic.
func (g *Generator) RenderPreview(job models.Job, params PreviewParams) string {
	script := applyFields(g.preview, []field{
		stringAlways("PREVIEW_PATH", params.ClipPath),
		intAlways("FPS_NUM", params.FPSNum),
		intAlways("FPS_DEN", params.FPSDen),
		intAlways("FIELD_BASED", params.FieldBased),
	})
	return applyFields(script, stageFields(job.EffectivePipeline()))
}

// Generate writes the full-run script to <TempDir>/<job id>.vpy.
func (g *Generator) Generate(job models.Job) (string, error) {
	return g.write(job.ID.String()+".vpy", g.Render(job))
}

// GenerateRange writes a range-limited script next to the full-run one.
func (g *Generator) GenerateRange(job models.Job, start, end int) (string, error) {
	return g.write(fmt.Sprintf("%s_range_%d_%d.vpy", job.ID, start, end), g.RenderRange(job, start, end))
}

// GeneratePreview writes the preview script.
func (g *Generator) GeneratePreview(job models.Job, params PreviewParams) (string, error) {
	return g.write(job.ID.String()+"_preview.vpy", g.RenderPreview(job, params))
}

func (g *Generator) write(name, content string) (string, error) {
	path := filepath.Join(g.tempDir, name)
	if err := fileutil.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}
	g.logger.Debug("script written", logging.String("path", path), logging.Int("bytes", len(content)))
	return path, nil
}

func sourceFields(job models.Job, p models.Pipeline) []field {
	fieldBased := field{name: "FIELD_BASED"}
	if p.Deinterlace.Enabled && p.Deinterlace.TFF != nil {
		fieldBased = intAlways("FIELD_BASED", p.Deinterlace.FieldBased())
	}
	return []field{
		stringAlways("INPUT_PATH", job.InputPath),
		fieldBased,
	}
}
