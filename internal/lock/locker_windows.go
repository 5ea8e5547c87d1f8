//go:build windows

package lock

import (
	"os"

	"golang.org/x/sys/windows"
)

const allBytes = ^uint32(0)

// lockFileLocker locks the full byte range of the file with LockFileEx.
type lockFileLocker struct{}

func (lockFileLocker) Lock(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(f.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, allBytes, allBytes, ol)
}

func (lockFileLocker) Unlock(f *os.File) error {
	ol := new(windows.Overlapped)
	err := windows.UnlockFileEx(windows.Handle(f.Fd()), 0, allBytes, allBytes, ol)
	if err == windows.ERROR_NOT_LOCKED {
		return nil
	}
	return err
}

func newPlatformLocker() Locker {
	return lockFileLocker{}
}
