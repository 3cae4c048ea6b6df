package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vapourbox/internal/history"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrSpawn         = errors.New("process spawn failed")
	ErrStream        = errors.New("stream failure")
	ErrProcessExit   = errors.New("process exited with error")
	ErrCancelled     = errors.New("cancelled")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Exit codes returned by the CLI.
const (
	ExitSuccess   = 0
	ExitFailure   = 1
	ExitCancelled = 130
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrProcessExit
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsCancelled distinguishes a user cancellation from a failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// FailureStatus maps a run error to the history status it is recorded with.
func FailureStatus(err error) history.Status {
	switch {
	case err == nil:
		return history.StatusCompleted
	case IsCancelled(err):
		return history.StatusCancelled
	default:
		return history.StatusFailed
	}
}

// ExitCode maps a run error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case IsCancelled(err):
		return ExitCancelled
	default:
		return ExitFailure
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "worker failure"
	}
	return strings.Join(parts, ": ")
}
