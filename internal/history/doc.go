// Package history provides an optional SQLite journal of database merges.
//
// When enabled, every wrapper invocation appends one row per compiled file
// recording what the merge did to it: inserted, updated, unchanged or
// failed. The journal answers "when did this file's flags last change, and
// who broke the database" without keeping copies of the database itself.
//
// # Concurrency
//
// Many build processes write at once. The database runs in WAL mode with a
// busy timeout so writers queue inside SQLite instead of failing. Writing
// the journal happens after the compilation database lock is released and
// never extends that critical section.
//
// # Identity and ordering
//
// Rows are keyed by a UUIDv7, idempotent on id, and listed newest first by
// (recorded_at DESC, id DESC) so ties resolve deterministically.
//
// # Database configuration
//
//   - WAL mode: readers do not block the writers
//   - synchronous=NORMAL: the journal is diagnostic, not authoritative
//   - busy_timeout=5000: wait for concurrent writers up to 5 seconds
package history
