package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentdev/toolwatch/internal/common/logger"
)

// ErrLockHeld is returned when another run holds the lock file.
var ErrLockHeld = errors.New("another run is in progress")

// Lock is an exclusive run lock backed by a lock file. Creation with
// O_EXCL makes acquisition atomic; there is no stale-lock reclaim, a
// crashed run leaves the file for the operator to inspect and remove.
type Lock struct {
	path string
}

// AcquireLock takes the run lock, writing the holder's PID into the
// file for diagnosis.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: lock file %s exists", ErrLockHeld, path)
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}

	fmt.Fprintf(file, "%d\n", os.Getpid())
	if err := file.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	return &Lock{path: path}, nil
}

// Release removes the lock file. Safe to call once per acquired lock.
func (l *Lock) Release() {
	if err := os.Remove(l.path); err != nil {
		logger.Warn("failed to remove lock file %s: %v", l.path, err)
	}
}
