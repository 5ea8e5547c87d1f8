// Package harness runs merge scenarios against a real database on disk.
//
// A scenario starts from an optional initial database, replays a list of
// compiler invocations through the entry builder and the merge engine, and
// checks the per-step outcome, the final database, and a golden copy of it.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: update_in_place
//	description: "Recompiling a file replaces its entry"
//	initial: |
//	  []
//	steps:
//	  - compiler: /usr/bin/gcc
//	    directory: /src
//	    args: [-c, foo.c]
//	    expect: inserted
//	assertions:
//	  - type: entry_count
//	    count: 1
//	  - type: entry_args
//	    file: foo.c
//	    contains: [-c]
//
// Omitting initial means the database file does not exist. A step's expect
// is one of inserted, updated, unchanged, skipped (no source file) or
// failed (the merge returned an error).
//
// # Assertion Types
//
//   - entry_count: the final database has exactly count entries
//   - entry_order: the listed files appear in this order
//   - entry_args: the entry for file (and directory, if given) has all of contains
//   - untouched: the database bytes equal initial
//
// # Golden Files
//
// RunWithGolden compares the final database with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
