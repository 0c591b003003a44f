//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package config

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFileExclusive 独占锁（写锁）, blocks until acquired
func lockFileExclusive(f *os.File) error {
	return flock(f, unix.LOCK_EX)
}

// lockFileShared 共享锁（读锁）
func lockFileShared(f *os.File) error {
	return flock(f, unix.LOCK_SH)
}

// unlockFile 解锁
func unlockFile(f *os.File) error {
	return flock(f, unix.LOCK_UN)
}

// flock retries when a signal interrupts the wait
func flock(f *os.File, how int) error {
	for {
		err := unix.Flock(int(f.Fd()), how)
		if err != unix.EINTR {
			return err
		}
	}
}
