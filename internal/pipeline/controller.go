package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"vapourbox/internal/fileutil"
	"vapourbox/internal/logging"
	"vapourbox/internal/models"
	"vapourbox/internal/progress"
	"vapourbox/internal/script"
	"vapourbox/internal/services"
)

// Resolver provides the external binaries and the environment they run
// under.
type Resolver interface {
	VSPipePath() (string, error)
	FFmpegPath() (string, error)
	Environment() []string
}

// ScriptWriter writes the preview scripts the controller runs.
type ScriptWriter interface {
	GenerateRange(job models.Job, start, end int) (string, error)
	GeneratePreview(job models.Job, params script.PreviewParams) (string, error)
}

// Defaults applied when Options leaves a value unset.
const (
	DefaultPreviewWindow    = 11
	DefaultFrameRate        = 29.97
	DefaultProgressInterval = 500 * time.Millisecond
)

const tailLines = 8

// Options configures a Controller.
type Options struct {
	Resolver Resolver
	Scripts  ScriptWriter
	Reporter *progress.Reporter
	Logger   *slog.Logger
	// ProgressInterval is the minimum spacing between progress events.
	// Negative values emit on every encoder line.
	ProgressInterval time.Duration
	// PreviewWindow is the number of source frames around a preview target.
	PreviewWindow int
	// DefaultFrameRate is used when the job does not carry one.
	DefaultFrameRate float64
	// TempDir holds preview work directories.
	TempDir string
}

// Controller drives vspipe | ffmpeg runs. It runs one job at a time.
type Controller struct {
	resolver    Resolver
	scripts     ScriptWriter
	reporter    *progress.Reporter
	logger      *slog.Logger
	interval    time.Duration
	window      int
	defaultRate float64
	tempDir     string

	mu     sync.Mutex
	active map[*process]struct{}
	closed bool
}

// NewController validates opts and applies defaults.
func NewController(opts Options) (*Controller, error) {
	if opts.Resolver == nil {
		return nil, errors.New("pipeline: resolver is required")
	}
	logger := logging.NewComponentLogger(opts.Logger, "pipeline")
	reporter := opts.Reporter
	if reporter == nil {
		reporter = progress.NewReporter(io.Discard, logger)
	}
	interval := opts.ProgressInterval
	switch {
	case interval == 0:
		interval = DefaultProgressInterval
	case interval < 0:
		interval = 0
	}
	window := opts.PreviewWindow
	if window <= 0 {
		window = DefaultPreviewWindow
	}
	rate := opts.DefaultFrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	return &Controller{
		resolver:    opts.Resolver,
		scripts:     opts.Scripts,
		reporter:    reporter,
		logger:      logger,
		interval:    interval,
		window:      window,
		defaultRate: rate,
		tempDir:     opts.TempDir,
		active:      make(map[*process]struct{}),
	}, nil
}

// Close kills any process still running. The controller cannot start new
// runs afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.closed = true
	procs := make([]*process, 0, len(c.active))
	for p := range c.active {
		procs = append(procs, p)
	}
	c.mu.Unlock()

	for _, p := range procs {
		c.logger.Debug("terminating process", logging.String(logging.FieldStage, p.name))
		p.kill()
	}
	return nil
}

func (c *Controller) track(name string, cmd *exec.Cmd) *process {
	p := &process{name: name, cmd: cmd}
	c.mu.Lock()
	c.active[p] = struct{}{}
	closed := c.closed
	c.mu.Unlock()
	if closed {
		p.kill()
	}
	return p
}

func (c *Controller) untrack(p *process) {
	c.mu.Lock()
	delete(c.active, p)
	c.mu.Unlock()
}

func (c *Controller) binaries() (vspipe, ffmpeg string, env []string, err error) {
	if vspipe, err = c.resolver.VSPipePath(); err != nil {
		return "", "", nil, err
	}
	if ffmpeg, err = c.resolver.FFmpegPath(); err != nil {
		return "", "", nil, err
	}
	return vspipe, ffmpeg, c.resolver.Environment(), nil
}

func cancelled(op string, cause error) error {
	return services.Wrap(services.ErrCancelled, "", op, "job cancelled", cause)
}

// Execute runs scriptPath through vspipe into ffmpeg with the job's
// encoding settings, emitting progress events until both processes exit.
// Cancelling ctx kills both processes and returns an error that satisfies
// services.IsCancelled.
func (c *Controller) Execute(ctx context.Context, scriptPath string, job models.Job) error {
	if err := ctx.Err(); err != nil {
		return cancelled("execute", err)
	}
	vspipe, ffmpeg, env, err := c.binaries()
	if err != nil {
		return err
	}
	c.reporter.Logf(progress.LevelDebug, "vspipe: %s, ffmpeg: %s", vspipe, ffmpeg)

	encodeArgs := EncoderArgs(job)
	c.logger.Debug("starting pipeline",
		logging.String(logging.FieldJobID, job.ID.String()),
		logging.String("script", scriptPath),
		logging.String("encoder_args", strings.Join(encodeArgs, " ")),
	)

	ch, err := c.startChain(chainSpec{
		vspipe:     vspipe,
		frameArgs:  frameEngineArgs(scriptPath, -1),
		ffmpeg:     ffmpeg,
		encodeArgs: encodeArgs,
		env:        env,
	})
	if err != nil {
		return err
	}
	defer c.release(ch)
	stop := context.AfterFunc(ctx, ch.kill)
	defer stop()

	tr := newTracker(job.KnownTotalFrames(), job.EffectivePipeline().DoubleRate(), c.interval, time.Now())
	frameTail := newLineTail(tailLines)
	encodeTail := newLineTail(tailLines)

	var g errgroup.Group
	g.Go(func() error {
		return c.readFrameEngine(ch.frameStderr, tr, frameTail, ch.kill)
	})

	streamErr := c.readEncoder(ctx, ch.encodeStderr, tr, encodeTail)
	if streamErr != nil {
		ch.kill()
	}
	readErr := g.Wait()
	frameWait := ch.frame.wait()
	encodeWait := ch.encode.wait()

	// The reader killed the chain itself; ctx may have expired meanwhile.
	if readErr != nil {
		return services.Wrap(services.ErrStream, StageFrameEngine, "read diagnostics", "", readErr)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		c.logger.Info("pipeline cancelled", logging.String(logging.FieldJobID, job.ID.String()))
		return cancelled("execute", ctxErr)
	}
	if streamErr != nil {
		return services.Wrap(services.ErrStream, StageEncoder, "read diagnostics", "", streamErr)
	}
	if err := checkExit(StageFrameEngine, frameWait, frameTail.String()); err != nil {
		return err
	}
	if err := checkExit(StageEncoder, encodeWait, encodeTail.String()); err != nil {
		return err
	}
	if info := tr.sample(); info.Frame > 0 {
		c.reporter.Progress(info)
	}
	return nil
}

// readFrameEngine forwards frame-engine diagnostics and captures the
// reported frame count. tr may be nil. When reading fails nothing drains
// the pipe any more, so abort is called to stop both processes before the
// error is returned.
func (c *Controller) readFrameEngine(r io.Reader, tr *tracker, tail *lineTail, abort func()) error {
	scanner := newLineScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		c.reporter.Log(progress.LevelDebug, "vspipe stderr: "+line)
		if info, ok := parseInputInfo(line); ok {
			if tr != nil && info.Frames > 0 {
				tr.setReported(info.Frames)
			}
			c.logger.Debug("source opened",
				logging.Int("frames", info.Frames),
				logging.Int("fps_num", info.FPSNum),
				logging.Int("fps_den", info.FPSDen),
			)
			continue
		}
		tail.add(line)
	}
	if err := scanner.Err(); err != nil {
		abort()
		return err
	}
	return nil
}

// readEncoder consumes encoder diagnostics on the calling goroutine. It is
// the only place cancellation is polled between lines.
func (c *Controller) readEncoder(ctx context.Context, r io.Reader, tr *tracker, tail *lineTail) error {
	scanner := newLineScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		tr.observe(line)
		if !isProgressLine(line) {
			tail.add(line)
		}
		if tr.due(time.Now()) {
			c.reporter.Progress(tr.sample())
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return scanner.Err()
}

// Preview renders the frame nearest to seconds through the job's pipeline
// and returns it as PNG. A short lossless clip around the target is
// extracted first so temporal filters have neighbours to work with.
func (c *Controller) Preview(ctx context.Context, job models.Job, seconds float64) ([]byte, error) {
	if c.scripts == nil {
		return nil, errors.New("pipeline: preview requires a script writer")
	}
	if seconds < 0 {
		return nil, services.Wrap(services.ErrValidation, "", "preview", fmt.Sprintf("negative time %.3f", seconds), nil)
	}
	vspipe, ffmpeg, env, err := c.binaries()
	if err != nil {
		return nil, err
	}

	workDir, cleanup, err := fileutil.MakeWorkDir(c.tempDir, "preview-*")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	rate := job.FrameRate(c.defaultRate)
	start := math.Max(0, seconds-float64(c.window)/2/rate)
	clip := filepath.Join(workDir, "preview_clip.mkv")
	c.logger.Debug("extracting preview clip",
		logging.Int("frames", c.window),
		logging.Float64("start_seconds", start),
	)
	if err := c.extractClip(ctx, ffmpeg, env, job.InputPath, start, clip); err != nil {
		return nil, err
	}

	scriptPath, err := c.scripts.GeneratePreview(job, script.PreviewParams{
		ClipPath:   clip,
		FPSNum:     int(math.Round(rate * 1000)),
		FPSDen:     1000,
		FieldBased: job.EffectivePipeline().Deinterlace.FieldBased(),
	})
	if err != nil {
		return nil, err
	}
	defer c.removeScript(scriptPath)

	return c.runStill(ctx, chainSpec{
		vspipe:     vspipe,
		frameArgs:  frameEngineArgs(scriptPath, -1),
		ffmpeg:     ffmpeg,
		encodeArgs: stillEncoderArgs(),
		env:        env,
	})
}

// PreviewFrame renders source frame directly from the input through a
// range-limited script, without extracting a clip.
func (c *Controller) PreviewFrame(ctx context.Context, job models.Job, frame int) ([]byte, error) {
	if c.scripts == nil {
		return nil, errors.New("pipeline: preview requires a script writer")
	}
	if frame < 0 {
		return nil, services.Wrap(services.ErrValidation, "", "preview", fmt.Sprintf("negative frame %d", frame), nil)
	}
	if total := job.KnownTotalFrames(); total > 0 && frame >= total {
		return nil, services.Wrap(services.ErrValidation, "", "preview", fmt.Sprintf("frame %d beyond last frame %d", frame, total-1), nil)
	}
	vspipe, ffmpeg, env, err := c.binaries()
	if err != nil {
		return nil, err
	}

	start, end, target := previewRange(frame, c.window, job.KnownTotalFrames())
	if job.EffectivePipeline().DoubleRate() {
		target *= 2
	}
	scriptPath, err := c.scripts.GenerateRange(job, start, end)
	if err != nil {
		return nil, err
	}
	defer c.removeScript(scriptPath)

	return c.runStill(ctx, chainSpec{
		vspipe:     vspipe,
		frameArgs:  frameEngineArgs(scriptPath, target),
		ffmpeg:     ffmpeg,
		encodeArgs: stillEncoderArgs(),
		env:        env,
	})
}

// previewRange centres a window of source frames on frame. end is
// exclusive; target is frame's index inside the window.
func previewRange(frame, window, total int) (start, end, target int) {
	half := window / 2
	start = max(0, frame-half)
	end = frame + half + 1
	if total > 0 {
		end = min(end, total)
	}
	return start, end, frame - start
}

func (c *Controller) extractClip(ctx context.Context, ffmpeg string, env []string, input string, start float64, clip string) error {
	cmd := exec.CommandContext(ctx, ffmpeg, extractArgs(input, start, c.window, clip)...) //nolint:gosec
	cmd.Env = env
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cancelled("extract preview clip", ctxErr)
		}
		return services.Wrap(services.ErrProcessExit, StageEncoder, "extract preview clip", strings.TrimSpace(stderr.String()), err)
	}
	if info, err := os.Stat(clip); err != nil || info.Size() == 0 {
		return services.Wrap(services.ErrProcessExit, StageEncoder, "extract preview clip", "no clip produced", err)
	}
	return nil
}

// runStill runs a chain whose encoder writes one image to stdout.
func (c *Controller) runStill(ctx context.Context, spec chainSpec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, cancelled("preview", err)
	}
	spec.captureStdout = true
	ch, err := c.startChain(spec)
	if err != nil {
		return nil, err
	}
	defer c.release(ch)
	stop := context.AfterFunc(ctx, ch.kill)
	defer stop()

	frameTail := newLineTail(tailLines)
	encodeTail := newLineTail(tailLines)
	var g errgroup.Group
	g.Go(func() error {
		return c.readFrameEngine(ch.frameStderr, nil, frameTail, ch.kill)
	})
	g.Go(func() error {
		scanner := newLineScanner(ch.encodeStderr)
		for scanner.Scan() {
			encodeTail.add(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			ch.kill()
			return err
		}
		return nil
	})

	image, readErr := io.ReadAll(ch.encodeStdout)
	if readErr != nil {
		ch.kill()
	}
	streamErr := g.Wait()
	frameWait := ch.frame.wait()
	encodeWait := ch.encode.wait()

	if streamErr != nil {
		return nil, services.Wrap(services.ErrStream, "", "read diagnostics", "", streamErr)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, cancelled("preview", ctxErr)
	}
	if readErr != nil {
		return nil, services.Wrap(services.ErrStream, StageEncoder, "read image", "", readErr)
	}
	if err := checkExit(StageFrameEngine, frameWait, frameTail.String()); err != nil {
		return nil, err
	}
	if err := checkExit(StageEncoder, encodeWait, encodeTail.String()); err != nil {
		return nil, err
	}
	if len(image) == 0 {
		detail := frameTail.String()
		if detail == "" {
			detail = "encoder produced no image"
		}
		return nil, services.Wrap(services.ErrProcessExit, StageEncoder, "preview", detail, nil)
	}
	return image, nil
}

func (c *Controller) removeScript(path string) {
	if err := fileutil.RemoveIfExists(path); err != nil {
		c.logger.Warn("failed to remove preview script", logging.String("path", path), logging.Error(err))
	}
}
