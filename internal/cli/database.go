package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/roach88/cdbgen/internal/config"
	"github.com/roach88/cdbgen/internal/lock"
	"github.com/roach88/cdbgen/internal/merge"
)

// loadConfig resolves the configuration for a management command.
func loadConfig(formatter *OutputFormatter) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fail(formatter, ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	if cfg.Source != "" {
		formatter.VerboseLog("Using configuration %s", cfg.Source)
	}
	return cfg, nil
}

// databasePath returns the database named on the command line, or the
// configured one.
func databasePath(args []string, formatter *OutputFormatter) (string, error) {
	if len(args) > 0 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return "", fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		return abs, nil
	}
	cfg, err := loadConfig(formatter)
	if err != nil {
		return "", err
	}
	return cfg.DatabasePath(), nil
}

// withDatabaseLock runs fn holding the lock the wrapper takes for dbPath.
// A database whose directory does not exist is reported as fs.ErrNotExist
// without creating anything.
func withDatabaseLock(dbPath string, fn func() error) error {
	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		return err
	}
	return lock.Default().With(merge.LockPath(dbPath), fn)
}

// readDatabase returns the raw database bytes, read under the lock.
func readDatabase(dbPath string) ([]byte, error) {
	var data []byte
	err := withDatabaseLock(dbPath, func() error {
		var err error
		data, err = os.ReadFile(dbPath)
		return err
	})
	return data, err
}

// failRead reports an error from reading a database, or from writing it
// back when err is a *writeError.
func failRead(formatter *OutputFormatter, dbPath string, err error) error {
	var we *writeError
	switch {
	case errors.As(err, &we):
		return fail(formatter, ExitCommandError, ErrCodeWriteFailed, we.Error(), map[string]string{"database": dbPath})
	case errors.Is(err, fs.ErrNotExist):
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath), nil)
	case lock.IsLockError(err):
		return fail(formatter, ExitCommandError, ErrCodeLock, err.Error(), nil)
	default:
		return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
}

// writeError marks a failure to write the database back, as opposed to
// reading or locking it.
type writeError struct {
	err error
}

func (e *writeError) Error() string { return "write database: " + e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// fail reports an error through the formatter and returns the ExitError
// carrying code.
func fail(formatter *OutputFormatter, exitCode int, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(exitCode, fmt.Sprintf("%s: %s", code, message))
}
