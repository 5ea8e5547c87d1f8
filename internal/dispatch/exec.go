package dispatch

// Executor runs the real compiler.
type Executor interface {
	// Exec runs the compiler at path with args (not including the program
	// name) and returns its exit code. Implementations that replace the
	// current process only return on failure.
	Exec(path string, args []string) (int, error)
}

// System is the Executor backed by the operating system.
type System struct{}
