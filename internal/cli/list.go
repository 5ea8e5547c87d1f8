package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/cdbgen/internal/compdb"
)

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Database string          `json:"database"`
	Entries  compdb.Database `json:"entries"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [database]",
		Short: "List recorded source files",
		Long: `List the entries of a compilation database, one source file per line.

A database that does not exist yet lists as empty. With --format json the
entries are printed in full.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runList(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	dbPath, err := databasePath(args, formatter)
	if err != nil {
		return err
	}

	data, err := readDatabase(dbPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return failRead(formatter, dbPath, err)
	}

	db, err := compdb.Decode(data)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeCorrupt, err.Error(), map[string]string{"database": dbPath})
	}
	formatter.VerboseLog("%d entr(ies) in %s", len(db), dbPath)

	if formatter.Format == "json" {
		return formatter.Success(ListResult{Database: dbPath, Entries: db})
	}

	for _, e := range db {
		fmt.Fprintln(formatter.Writer, sourcePath(e))
	}
	return nil
}

// sourcePath is the absolute path of the entry's source file.
func sourcePath(e compdb.Entry) string {
	return joinSource(e.Directory, e.File)
}

func joinSource(dir, file string) string {
	if filepath.IsAbs(file) {
		return filepath.Clean(file)
	}
	return filepath.Join(dir, file)
}
