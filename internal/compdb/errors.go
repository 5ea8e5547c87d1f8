package compdb

import (
	"errors"
	"fmt"
)

// ErrCorrupt is matched by every error reporting an unparseable database.
var ErrCorrupt = errors.New("corrupt compilation database")

// CorruptError describes why a database could not be decoded.
type CorruptError struct {
	// Index is the offending array element, or -1 for document-level problems.
	Index  int
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	msg := e.Reason
	if e.Index >= 0 {
		msg = fmt.Sprintf("entry %d: %s", e.Index, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrCorrupt, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrCorrupt, msg)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCorrupt) hold for every CorruptError.
func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}
