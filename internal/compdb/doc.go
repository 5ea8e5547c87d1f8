// Package compdb models the JSON compilation database and its on-disk codec.
//
// A compilation database is a JSON array of objects, one per compiled
// translation unit:
//
//	[
//	  {
//	    "directory": "/src/project",
//	    "file": "foo.c",
//	    "arguments": ["/usr/bin/gcc", "-O2", "-c", "foo.c"],
//	    "output": "foo.o"
//	  }
//	]
//
// # Identity
//
// Entries are keyed by (directory, file). A database holds at most one entry
// per key; Upsert enforces this and keeps the relative order of untouched
// entries so the file diffs cleanly under version control.
//
// # Encoding
//
// Encode is deterministic: keys are always written in the order directory,
// file, arguments, command, output, with two-space indentation, no HTML
// escaping and a trailing newline. The same logical database always produces
// the same bytes.
//
// # Tolerance
//
// Load treats a missing or whitespace-only file as an empty database. Anything
// else that is not an array of well-formed entries is reported as ErrCorrupt;
// callers must never overwrite such a file.
package compdb
