// Package fileutil writes artifacts atomically under an exclusive file lock.
package fileutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrz1836/cardmark/internal/flock"
)

// File permissions for written artifacts.
const (
	DirPerm    os.FileMode = 0o750
	FilePerm   os.FileMode = 0o644
	SecretPerm os.FileMode = 0o600
)

// LockPath returns the lock file guarding path.
func LockPath(path string) string {
	return path + ".lock"
}

// WriteLocked creates path's parent directories, holds an exclusive lock on
// LockPath(path) for at most timeout while waiting, and writes data atomically.
func WriteLocked(ctx context.Context, path string, data []byte, perm os.FileMode, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	lock, err := flock.Acquire(ctx, LockPath(path), timeout)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	return AtomicWrite(path, data, perm)
}

// AtomicWrite writes data to a temp file next to path, syncs it and renames it
// over path. Readers never observe a partially written file.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //#nosec G304 -- path is constructed by the caller
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
