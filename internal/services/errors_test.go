package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"vapourbox/internal/history"
	"vapourbox/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrSpawn, "vspipe", "start", "failed", base)
	if !errors.Is(err, services.ErrSpawn) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"vspipe", "start", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrProcessExit) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "worker failure") {
		t.Fatalf("expected placeholder detail, got %q", err)
	}
}

func TestCancellationClassification(t *testing.T) {
	cancelled := services.Wrap(services.ErrCancelled, "pipeline", "execute", "stopped by user", nil)
	ctxCancelled := fmt.Errorf("wait: %w", context.Canceled)
	failed := services.Wrap(services.ErrProcessExit, "ffmpeg", "wait", "exited with code 1", nil)

	if !services.IsCancelled(cancelled) || !services.IsCancelled(ctxCancelled) {
		t.Fatal("expected cancellation to be recognized")
	}
	if services.IsCancelled(failed) {
		t.Fatal("process failure must not be treated as cancellation")
	}

	if got := services.ExitCode(cancelled); got != 130 {
		t.Fatalf("expected exit 130, got %d", got)
	}
	if got := services.ExitCode(failed); got != 1 {
		t.Fatalf("expected exit 1, got %d", got)
	}
	if got := services.ExitCode(nil); got != 0 {
		t.Fatalf("expected exit 0, got %d", got)
	}
}

func TestFailureStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want history.Status
	}{
		{nil, history.StatusCompleted},
		{services.ErrCancelled, history.StatusCancelled},
		{services.Wrap(services.ErrNotFound, "deps", "resolve", "vspipe", nil), history.StatusFailed},
	}
	for _, tc := range cases {
		if got := services.FailureStatus(tc.err); got != tc.want {
			t.Fatalf("FailureStatus(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
