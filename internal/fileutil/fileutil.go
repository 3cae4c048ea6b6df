package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another worker already holds an output lock.
var ErrLocked = errors.New("output is locked by another run")

// WriteFileAtomic writes data to a temporary file in the destination
// directory and renames it into place. The directory must exist.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// MakeWorkDir creates a fresh directory under base and returns it with a
// cleanup function that removes it recursively.
func MakeWorkDir(base, pattern string) (string, func(), error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("create scratch base %q: %w", base, err)
	}
	dir, err := os.MkdirTemp(base, pattern)
	if err != nil {
		return "", func() {}, fmt.Errorf("create scratch dir: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// OutputLock guards an output path against concurrent runs.
type OutputLock struct {
	path string
	lock *flock.Flock
}

// LockOutput takes a non-blocking lock on <output>.lock. It fails with
// ErrLocked when another process holds it.
func LockOutput(output string) (*OutputLock, error) {
	path := output + ".lock"
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, output)
	}
	return &OutputLock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *OutputLock) Path() string {
	return l.path
}

// Release unlocks and removes the lock file.
func (l *OutputLock) Release() error {
	if l == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return RemoveIfExists(l.path)
}
