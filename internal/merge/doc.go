// Package merge applies compiler invocations to a compilation database on
// disk.
//
// Every Update runs one critical section under an exclusive cross-process
// lock on "<database>.lock":
//
//  1. load the database (missing or blank means empty)
//  2. insert-or-update each entry by (directory, file)
//  3. if anything changed, write the whole database to a temporary file in
//     the same directory and rename it over the original
//  4. release the lock, whatever happened in 1-3
//
// The lock lives in a separate file because the rename in step 3 replaces
// the database inode; a lock taken on the database itself would be lost by
// waiters that opened the old inode.
//
// A database that fails to decode is never overwritten. The merge is
// abandoned and the error reported; callers are expected to downgrade all
// merge errors to warnings so that bookkeeping never fails a build.
package merge
