package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the outcome recorded for a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Run is one recorded execution of a job.
type Run struct {
	ID         int64
	JobID      string
	InputPath  string
	OutputPath string
	Status     Status
	Message    string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration returns the elapsed run time, or the time since start for runs
// that never finished.
func (r Run) Duration(now time.Time) time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return now.Sub(r.StartedAt)
}

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const runColumns = "id, job_id, input_path, output_path, status, message, started_at, finished_at"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Start records a new running entry and returns its id.
func (s *Store) Start(ctx context.Context, jobID, inputPath, outputPath string) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO runs (job_id, input_path, output_path, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, inputPath, outputPath, string(StatusRunning), formatTime(time.Now()),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	return id, nil
}

// Finish stamps the final status of a run.
func (s *Store) Finish(ctx context.Context, id int64, status Status, message string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, message = ?, finished_at = ? WHERE id = ?`,
		string(status), nullableString(message), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("update run %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Get returns a single run.
func (s *Store) Get(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return run, nil
}

// Recent returns the newest runs first. A limit of zero or less returns
// every run.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ReapRunning marks runs left in the running state (e.g. after a crash)
// as failed and returns how many were changed.
func (s *Store) ReapRunning(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, message = ?, finished_at = ? WHERE status = ?`,
		string(StatusFailed), "worker exited without recording a result", formatTime(time.Now()), string(StatusRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("reap running: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		status      string
		message     sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.JobID, &run.InputPath, &run.OutputPath, &status, &message, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.Message = message.String
	if started, err := time.Parse(timeLayout, startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := time.Parse(timeLayout, finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
