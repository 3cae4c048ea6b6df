package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vapourbox/internal/history"
)

func openStore(t *testing.T) (*history.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestStartAndFinishRecordOutcome(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	id, err := store.Start(ctx, "job-1", "/in.avi", "/out.mp4")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected run id to be assigned")
	}

	run, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if run.Status != history.StatusRunning || run.FinishedAt != nil {
		t.Fatalf("expected running entry, got %+v", run)
	}
	if run.StartedAt.IsZero() {
		t.Fatal("expected start time")
	}

	if err := store.Finish(ctx, id, history.StatusCancelled, "Job cancelled by user"); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	run, err = store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if run.Status != history.StatusCancelled || run.Message != "Job cancelled by user" {
		t.Fatalf("unexpected finished run: %+v", run)
	}
	if run.FinishedAt == nil || run.Duration(time.Now()) < 0 {
		t.Fatalf("expected finish time, got %+v", run)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store, _ := openStore(t)
	if err := store.Finish(context.Background(), 42, history.StatusFailed, "x"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	var ids []int64
	for _, job := range []string{"a", "b", "c"} {
		id, err := store.Start(ctx, job, "/in/"+job, "/out/"+job)
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Fatalf("unexpected order: %d, %d", runs[0].ID, runs[1].ID)
	}

	all, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all runs, got %d", len(all))
	}
}

func TestReapRunning(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	stale, _ := store.Start(ctx, "stale", "/in", "/out")
	done, _ := store.Start(ctx, "done", "/in", "/out")
	if err := store.Finish(ctx, done, history.StatusCompleted, ""); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	n, err := store.ReapRunning(ctx)
	if err != nil {
		t.Fatalf("ReapRunning failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 reaped run, got %d", n)
	}
	run, _ := store.Get(ctx, stale)
	if run.Status != history.StatusFailed {
		t.Fatalf("expected stale run failed, got %s", run.Status)
	}
	run, _ = store.Get(ctx, done)
	if run.Status != history.StatusCompleted {
		t.Fatalf("expected completed run untouched, got %s", run.Status)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	store, path := openStore(t)
	if _, err := store.Start(context.Background(), "job", "/in", "/out"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected persisted run, got %d", len(runs))
	}
}
