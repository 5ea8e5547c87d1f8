package dispatch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is the program name prefix that selects wrapper mode.
const Prefix = "cdbgen-"

// IsWrapperName reports whether argv0 names a wrapped compiler.
func IsWrapperName(argv0 string) bool {
	_, err := CompilerName(argv0)
	return err == nil
}

// CompilerName extracts the compiler name from the wrapper's program name,
// e.g. "/usr/local/bin/cdbgen-gcc" yields "gcc".
func CompilerName(argv0 string) (string, error) {
	base := filepath.Base(argv0)
	if strings.EqualFold(filepath.Ext(base), ".exe") {
		base = base[:len(base)-len(".exe")]
	}
	name, ok := strings.CutPrefix(base, Prefix)
	if !ok {
		return "", &ResolutionError{Err: fmt.Errorf("program name %q lacks prefix %q", base, Prefix)}
	}
	if name == "" {
		return "", &ResolutionError{Err: fmt.Errorf("program name %q names no compiler", base)}
	}
	return name, nil
}

// Resolve finds the compiler called name on PATH and returns its absolute
// path. Resolving to the running executable is refused, since exec'ing it
// would recurse forever.
func Resolve(name string) (string, error) {
	self, err := os.Executable()
	if err != nil {
		self = ""
	}
	return resolve(name, self)
}

func resolve(name, self string) (string, error) {
	if name == "" {
		return "", &ResolutionError{Err: errors.New("empty compiler name")}
	}
	found, err := exec.LookPath(name)
	if err != nil {
		return "", &ResolutionError{Name: name, Err: err}
	}
	abs, err := filepath.Abs(found)
	if err != nil {
		return "", &ResolutionError{Name: name, Err: err}
	}
	if self != "" && sameExecutable(abs, self) {
		return "", &ResolutionError{Name: name, Err: fmt.Errorf("%s resolves to the wrapper itself", abs)}
	}
	return abs, nil
}

func sameExecutable(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
