//go:build unix

package dispatch

import (
	"os"

	"golang.org/x/sys/unix"
)

// Exec replaces the current process image with the compiler. Open stdio
// descriptors are inherited; argv[0] is the compiler path.
func (System) Exec(path string, args []string) (int, error) {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, path)
	argv = append(argv, args...)
	err := unix.Exec(path, argv, os.Environ())
	return 0, &ExecError{Path: path, Err: err}
}
