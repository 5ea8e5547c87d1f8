// Package dispatch finds and runs the real compiler behind the wrapper.
//
// The wrapper is installed under names like "cdbgen-gcc" or "cdbgen-clang++";
// the part after the prefix names the compiler, which is looked up on PATH.
// On Unix the wrapper process is replaced by the compiler so that signals,
// stdio and the exit status belong to the compiler alone. Windows has no exec,
// so the compiler runs as a child and its exit code is returned.
package dispatch
