//go:build unix

package dispatch

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExecHelperProcess replaces the test process with /bin/sh when run as a
// child of TestExecForwardsExitStatus.
func TestExecHelperProcess(t *testing.T) {
	if os.Getenv("CDBGEN_EXEC_HELPER") != "1" {
		return
	}
	_, err := System{}.Exec("/bin/sh", []string{"-c", "echo from-compiler; exit 7"})
	// Only reached when exec failed.
	os.Stderr.WriteString(err.Error())
	os.Exit(99)
}

func TestExecForwardsExitStatus(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	cmd := exec.Command(os.Args[0], "-test.run=^TestExecHelperProcess$")
	cmd.Env = append(os.Environ(), "CDBGEN_EXEC_HELPER=1")
	out, err := cmd.Output()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected exit error, got %v", err)
	assert.Equal(t, 7, exitErr.ExitCode())
	assert.Equal(t, "from-compiler\n", string(out))
}

func TestExecFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-compiler")
	_, err := System{}.Exec(missing, nil)
	require.Error(t, err)
	var ee *ExecError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, missing, ee.Path)
}
