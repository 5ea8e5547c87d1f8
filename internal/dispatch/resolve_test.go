package dispatch

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilerName(t *testing.T) {
	tests := []struct {
		argv0 string
		want  string
	}{
		{"cdbgen-gcc", "gcc"},
		{"/usr/local/bin/cdbgen-clang++", "clang++"},
		{"cdbgen-x86_64-linux-gnu-gcc", "x86_64-linux-gnu-gcc"},
		{"cdbgen-cl.exe", "cl"},
		{"cdbgen-cl.EXE", "cl"},
	}
	for _, tt := range tests {
		t.Run(tt.argv0, func(t *testing.T) {
			got, err := CompilerName(tt.argv0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsWrapperName(tt.argv0))
		})
	}
}

func TestCompilerNameRejects(t *testing.T) {
	for _, argv0 := range []string{"cdbgen", "gcc", "/bin/cdbgen-", "cdbgen-.exe", ""} {
		t.Run(argv0, func(t *testing.T) {
			_, err := CompilerName(argv0)
			require.Error(t, err)
			var re *ResolutionError
			assert.ErrorAs(t, err, &re)
			assert.False(t, IsWrapperName(argv0))
		})
	}
}

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return path
}

func TestResolveSearchesPathInOrder(t *testing.T) {
	empty := t.TempDir()
	first := t.TempDir()
	second := t.TempDir()
	want := writeExecutable(t, first, "fakecc")
	writeExecutable(t, second, "fakecc")
	t.Setenv("PATH", filepath.Join(empty)+string(os.PathListSeparator)+first+string(os.PathListSeparator)+second)

	got, err := resolve("fakecc", "")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, filepath.IsAbs(got))
}

func TestResolveNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := resolve("definitely-not-a-compiler", "")
	require.Error(t, err)
	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "definitely-not-a-compiler", re.Name)
	assert.Contains(t, err.Error(), "definitely-not-a-compiler")
}

func TestResolveRefusesSelf(t *testing.T) {
	dir := t.TempDir()
	path := writeExecutable(t, dir, "fakecc")
	t.Setenv("PATH", dir)

	_, err := resolve("fakecc", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrapper itself")
}

func TestResolveEmptyName(t *testing.T) {
	_, err := Resolve("")
	var re *ResolutionError
	assert.ErrorAs(t, err, &re)
}

func TestErrorMessages(t *testing.T) {
	err := &ExecError{Path: "/usr/bin/gcc", Err: os.ErrPermission}
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "/usr/bin/gcc")
}
