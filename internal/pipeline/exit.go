package pipeline

import (
	"errors"
	"fmt"
	"os/exec"

	"vapourbox/internal/services"
)

// Process names used in errors and logs.
const (
	StageFrameEngine = "vspipe"
	StageEncoder     = "ffmpeg"
)

// Exit codes tolerated from either process: 130 after an interrupt and 141
// after a broken pipe when the other side of the chain went away.
const (
	exitInterrupted = 130
	exitBrokenPipe  = 141
)

// ExitError reports a process that ended with a non-tolerated exit code.
type ExitError struct {
	Stage  string
	Code   int
	Detail string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Stage, e.Code)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ExitError) Unwrap() error { return services.ErrProcessExit }

func toleratedExit(code int) bool {
	return code == 0 || code == exitInterrupted || code == exitBrokenPipe
}

// checkExit applies the exit policy to the result of cmd.Wait.
func checkExit(stage string, waitErr error, detail string) error {
	if waitErr == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		code := exitCode(exitErr.ProcessState)
		if toleratedExit(code) {
			return nil
		}
		return &ExitError{Stage: stage, Code: code, Detail: detail}
	}
	return services.Wrap(services.ErrProcessExit, stage, "wait", "", waitErr)
}
