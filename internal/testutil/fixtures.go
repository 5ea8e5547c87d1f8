package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/cdbgen/internal/compdb"
)

// WriteDatabase saves db at path, failing the test on error.
func WriteDatabase(t testing.TB, path string, db compdb.Database) {
	t.Helper()
	require.NoError(t, compdb.Save(path, db))
}

// ReadDatabase loads the database at path, failing the test on error.
func ReadDatabase(t testing.TB, path string) compdb.Database {
	t.Helper()
	db, err := compdb.Load(path)
	require.NoError(t, err)
	return db
}

// ReadBytes returns the raw content of path.
func ReadBytes(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// FakeCompiler installs an executable called name in dir that exits with
// code. It skips the test where shell scripts cannot be executed.
func FakeCompiler(t testing.TB, dir, name string, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compilers are shell scripts")
	}
	path := filepath.Join(dir, name)
	script := fmt.Sprintf("#!/bin/sh\nexit %d\n", code)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
