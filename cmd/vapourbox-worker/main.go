package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vapourbox/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitStatus(err))
}

// exitStatus prints err unless it was already delivered as an event and
// maps it to the process exit code.
func exitStatus(err error) int {
	if err == nil {
		return services.ExitSuccess
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if !exit.reported {
			fmt.Fprintln(os.Stderr, exit.err)
		}
		return exit.code
	}
	if !services.IsCancelled(err) {
		fmt.Fprintln(os.Stderr, err)
	}
	return services.ExitCode(err)
}

// exitError carries a command's exit code. reported is set when the error
// already reached the host through the event stream.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }
