package compdb

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compile_commands.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteFile(path, []byte("new")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestWriteFileKeepsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	path := filepath.Join(t.TempDir(), "compile_commands.json")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o640))
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, WriteFile(path, []byte("[]\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestWriteFileNewFileIsWorldReadable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	path := filepath.Join(t.TempDir(), "compile_commands.json")
	require.NoError(t, WriteFile(path, []byte("[]\n")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, defaultPerm, info.Mode().Perm())
}

// A process that dies after staging the temporary file but before the
// rename must leave the database exactly as it was.
func TestInterruptedWriteLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compile_commands.json")
	require.NoError(t, Save(path, sampleDatabase()))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	tmp, err := writeTemp(path, []byte(`[{"directory": "/half`))
	require.NoError(t, err)
	assert.FileExists(t, tmp)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	db, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, sampleDatabase(), db)
}

func TestWriteFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "compile_commands.json")
	assert.Error(t, WriteFile(path, []byte("[]\n")))
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "leftover temp file %s", e.Name())
	}
}
