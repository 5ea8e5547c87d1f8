//go:build windows

package dispatch

import (
	"errors"
	"os"
	"os/exec"
)

// Exec runs the compiler as a child process with the wrapper's stdio and
// returns its exit code.
func (System) Exec(path string, args []string) (int, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return 0, &ExecError{Path: path, Err: err}
	}
}
