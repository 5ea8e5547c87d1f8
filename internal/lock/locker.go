package lock

import (
	"errors"
	"fmt"
	"os"
)

// Locker abstracts the platform file locking primitive.
//
// Lock must block until an exclusive lock on the whole file is held. Unlock
// must be safe to call on a file that is not locked.
type Locker interface {
	Lock(f *os.File) error
	Unlock(f *os.File) error
}

// Error reports a failure to obtain or release a lock.
type Error struct {
	Op   string // "open", "lock" or "unlock"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s lock %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsLockError reports whether err was produced by this package.
func IsLockError(err error) bool {
	var le *Error
	return errors.As(err, &le)
}

// Manager acquires locks using a Locker.
type Manager struct {
	locker Locker
}

// NewManager returns a Manager using locker.
func NewManager(locker Locker) *Manager {
	return &Manager{locker: locker}
}

// Default returns a Manager using the platform locker.
func Default() *Manager {
	return &Manager{locker: newPlatformLocker()}
}

// Handle is a held lock.
type Handle struct {
	path   string
	file   *os.File
	locker Locker
}

// Acquire opens path, creating it if needed, and blocks until this process
// holds an exclusive lock on it.
func (m *Manager) Acquire(path string) (*Handle, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, &Error{Op: "open", Path: path, Err: err}
	}
	if err := m.locker.Lock(f); err != nil {
		_ = f.Close()
		return nil, &Error{Op: "lock", Path: path, Err: err}
	}
	return &Handle{path: path, file: f, locker: m.locker}, nil
}

// With runs fn while holding the lock on path. The lock is released however
// fn returns. An error from fn takes precedence over a release error.
func (m *Manager) With(path string, fn func() error) (err error) {
	h, err := m.Acquire(path)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := h.Release(); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return fn()
}

// Path returns the locked file name.
func (h *Handle) Path() string {
	return h.path
}

// Release unlocks and closes the lock file. Calling it again is a no-op.
func (h *Handle) Release() error {
	if h == nil || h.file == nil {
		return nil
	}
	f := h.file
	h.file = nil

	unlockErr := h.locker.Unlock(f)
	closeErr := f.Close()
	if unlockErr != nil {
		return &Error{Op: "unlock", Path: h.path, Err: unlockErr}
	}
	if closeErr != nil {
		return &Error{Op: "unlock", Path: h.path, Err: closeErr}
	}
	return nil
}
