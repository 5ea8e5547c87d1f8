// Package lock provides blocking, exclusive, cross-process file locks.
//
// Locks are advisory and whole-file: flock(2) on Unix, LockFileEx over the
// full byte range on Windows. Both are owned by the open file, so the
// operating system drops the lock when the holder exits or crashes and a
// dead build job can never wedge the others.
//
// Acquisition blocks without timeout. A stalled build is visible; silently
// skipping a database update is not.
//
// Callers should prefer With, which releases the lock on every exit path of
// the critical section, including panics:
//
//	err := lock.Default().With(path+".lock", func() error {
//	    // read, modify and write the protected file
//	    return nil
//	})
package lock
