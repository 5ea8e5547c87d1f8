// Package entry turns one compiler invocation into compilation database
// entries.
//
// Build is a pure function: it inspects the argument vector only to find the
// source files being compiled and, when unambiguous, the object file being
// produced. Arguments are copied verbatim into the entry with the resolved
// compiler path as element zero; flags are never interpreted, reordered or
// re-quoted.
//
// An invocation that compiles no recognizable source file (linking, version
// queries, preprocessing from stdin) yields ErrNoSourceFile. That is not a
// failure: the caller skips the database update and still runs the compiler.
package entry
