package merge

import (
	"errors"
	"fmt"

	"github.com/roach88/cdbgen/internal/compdb"
	"github.com/roach88/cdbgen/internal/lock"
)

// Error reports which step of a merge failed.
type Error struct {
	Op   string // "prepare", "lock", "load" or "save"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("merge %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether the merge was abandoned because the existing
// database could not be decoded.
func IsCorrupt(err error) bool {
	return errors.Is(err, compdb.ErrCorrupt)
}

// IsLock reports whether the merge failed to obtain or release the lock.
func IsLock(err error) bool {
	return lock.IsLockError(err)
}
