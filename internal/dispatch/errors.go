package dispatch

import "fmt"

// ResolutionError means the target compiler could not be determined or found.
type ResolutionError struct {
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("resolve compiler: %v", e.Err)
	}
	return fmt.Sprintf("resolve compiler %q: %v", e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ExecError means the compiler was found but could not be started.
type ExecError struct {
	Path string
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute %s: %v", e.Path, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
