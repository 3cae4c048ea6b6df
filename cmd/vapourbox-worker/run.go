package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vapourbox/internal/fileutil"
	"vapourbox/internal/history"
	"vapourbox/internal/logging"
	"vapourbox/internal/models"
	"vapourbox/internal/progress"
	"vapourbox/internal/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jobPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a job and stream progress events to stdout",
		// Configuration is loaded inside RunE so failures reach the host as
		// events instead of a bare stderr message.
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.newLogger(cmd.ErrOrStderr())
			reporter := progress.NewReporter(cmd.OutOrStdout(), logger)
			return runJob(cmd.Context(), ctx, jobPath, reporter, logger)
		},
	}
	cmd.Flags().StringVarP(&jobPath, "job", "j", "", "Job file (JSON or YAML)")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

// fail reports err to the host and ends the run with the matching status.
func fail(reporter *progress.Reporter, err error) error {
	reporter.Error(err.Error())
	reporter.Complete(false, "")
	return &exitError{code: services.ExitCode(err), err: err, reported: true}
}

func runJob(parent context.Context, ctx *commandContext, jobPath string, reporter *progress.Reporter, logger *slog.Logger) error {
	if _, err := ctx.ensureConfig(); err != nil {
		return fail(reporter, err)
	}

	job, err := models.LoadJob(strings.TrimSpace(jobPath))
	if err != nil {
		return fail(reporter, services.Wrap(services.ErrValidation, "", "load job", "", err))
	}
	logger = logger.With(logging.String(logging.FieldJobID, job.ID.String()))

	lock, err := fileutil.LockOutput(job.OutputPath)
	if err != nil {
		if errors.Is(err, fileutil.ErrLocked) {
			err = services.Wrap(services.ErrValidation, "", "lock output", "another worker is writing "+job.OutputPath, err)
		}
		return fail(reporter, err)
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.Warn("release output lock failed", logging.Error(releaseErr))
		}
	}()

	recorder := newRunRecorder(ctx, job, logger)
	defer recorder.close()

	generator, err := ctx.generator(logger)
	if err != nil {
		recorder.finish(err)
		return fail(reporter, services.Wrap(services.ErrConfiguration, "", "load templates", "", err))
	}
	scriptPath, err := generator.Generate(job)
	if err != nil {
		recorder.finish(err)
		return fail(reporter, services.Wrap(services.ErrConfiguration, "", "write script", "", err))
	}
	if ctx.debugEnabled() {
		reporter.Logf(progress.LevelDebug, "script kept at %s", scriptPath)
	} else {
		defer func() { _ = fileutil.RemoveIfExists(scriptPath) }()
	}

	controller, err := ctx.controller(generator, reporter, logger)
	if err != nil {
		recorder.finish(err)
		return fail(reporter, err)
	}
	defer controller.Close()

	if !job.Encoding.MatchesOutput(job.OutputPath) {
		reporter.Logf(progress.LevelWarning, "output %s does not use the %s container extension; ffmpeg will choose the muxer from the file name",
			job.OutputPath, job.Encoding.OutputContainer())
	}
	reporter.Logf(progress.LevelDebug, "encoding: %s", job.Encoding.Summary())
	reporter.Log(progress.LevelInfo, "Starting processing")
	runErr := controller.Execute(parent, scriptPath, job)
	recorder.finish(runErr)

	switch {
	case runErr == nil:
		reporter.Log(progress.LevelInfo, "Processing complete")
		reporter.Complete(true, job.OutputPath)
		return nil
	case services.IsCancelled(runErr):
		reporter.Log(progress.LevelInfo, "Job cancelled by user")
		if removeErr := fileutil.RemoveIfExists(job.OutputPath); removeErr != nil {
			logger.Warn("remove partial output failed", logging.Error(removeErr))
		}
		reporter.Complete(false, "")
		return &exitError{code: services.ExitCancelled, err: runErr, reported: true}
	default:
		return fail(reporter, runErr)
	}
}

// runRecorder writes the run to history when it is enabled. History
// failures are logged and never fail the job.
type runRecorder struct {
	store  *history.Store
	id     int64
	logger *slog.Logger
}

func newRunRecorder(ctx *commandContext, job models.Job, logger *slog.Logger) *runRecorder {
	r := &runRecorder{logger: logger}
	store, err := ctx.openHistory()
	if err != nil {
		logger.Warn("history unavailable", logging.Error(err))
		return r
	}
	if store == nil {
		return r
	}
	id, err := store.Start(context.Background(), job.ID.String(), job.InputPath, job.OutputPath)
	if err != nil {
		logger.Warn("record run start failed", logging.Error(err))
		_ = store.Close()
		return r
	}
	r.store = store
	r.id = id
	return r
}

func (r *runRecorder) finish(runErr error) {
	if r.store == nil || r.id == 0 {
		return
	}
	status := history.StatusCompleted
	message := ""
	if runErr != nil {
		status = services.FailureStatus(runErr)
		message = runErr.Error()
	}
	// The run context may already be cancelled.
	if err := r.store.Finish(context.Background(), r.id, status, message); err != nil {
		r.logger.Warn("record run result failed", logging.Error(err))
	}
	r.id = 0
}

func (r *runRecorder) close() {
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.logger.Warn("close history failed", logging.Error(err))
	}
}

func requireJobPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("--job is required")
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("job file: %w", err)
	}
	return path, nil
}
