//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
)

// lockFileExclusive acquires an exclusive lock (write lock)
func lockFileExclusive(f *os.File) error {
	return lockFileEx(f, windows.LOCKFILE_EXCLUSIVE_LOCK)
}

// lockFileShared acquires a shared lock (read lock)
func lockFileShared(f *os.File) error {
	return lockFileEx(f, 0)
}

// unlockFile releases the file lock
func unlockFile(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, ol)
}

// lockFileEx locks the first byte of f, which is enough for a sidecar lock file
func lockFileEx(f *os.File, flags uint32) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, 1, 0, ol)
}
