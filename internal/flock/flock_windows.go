//go:build windows

package flock

import (
	"os"

	"golang.org/x/sys/windows"
)

// A one-byte range at offset zero stands in for the whole file.
const (
	rangeLow  = 1
	rangeHigh = 0
)

// tryLock takes a non-blocking exclusive LockFileEx lock on f.
func tryLock(f *os.File) error {
	return windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		rangeLow,
		rangeHigh,
		&windows.Overlapped{},
	)
}

func unlock(f *os.File) error {
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, rangeLow, rangeHigh, &windows.Overlapped{})
}
