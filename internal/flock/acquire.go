package flock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrz1836/cardmark/internal/constants"
	cmerrors "github.com/mrz1836/cardmark/internal/errors"
)

// Lock is a held exclusive lock on a lock file.
type Lock struct {
	f    *os.File
	path string
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Acquire takes an exclusive lock on lockPath, creating the file and its parent
// directory if needed. It retries until timeout elapses or ctx is done.
// A non-positive timeout means a single attempt.
func Acquire(ctx context.Context, lockPath string, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600) //#nosec G302,G304 -- lock file needs write access, path is derived from the artifact path
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := tryLock(f); err == nil {
			return &Lock{f: f, path: lockPath}, nil
		}

		if !time.Now().Before(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock %s: %w", lockPath, cmerrors.ErrLockTimeout)
		}

		time.Sleep(constants.LockRetryInterval)
	}
}

// Release unlocks and closes the lock file. The file itself is left in place.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}

	f := l.f
	l.f = nil
	if err := unlock(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return f.Close()
}
