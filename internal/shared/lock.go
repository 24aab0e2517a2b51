package shared

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created in the config directory while a sync runs.
const LockFileName = "ytsubs.lock"

// Lock is an exclusive advisory lock held for the duration of one sync.
type Lock struct {
	path string
	fl   *flock.Flock
}

// AcquireLock takes the run lock in dir without blocking.
//
// Returns [ErrLocked] when another process already holds it.
func AcquireLock(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, LockFileName)
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is held", ErrLocked, path)
	}

	return &Lock{path: path, fl: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the run lock.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
