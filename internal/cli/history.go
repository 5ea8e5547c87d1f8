package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cdbgen/internal/config"
	"github.com/roach88/cdbgen/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	File     string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded merges",
		Long: `Show the merge journal, newest first.

The journal is kept only when a history path is configured (CDBGEN_HISTORY
or "history" in the config file). Every merged entry adds one row with
its outcome: inserted, updated, unchanged or failed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "only merges into this database")
	cmd.Flags().StringVar(&opts.File, "file", "", "only merges of this source file, as recorded")
	cmd.Flags().IntVar(&opts.Limit, "limit", history.DefaultLimit, "maximum number of rows")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(formatter)
	if err != nil {
		return err
	}
	path := cfg.HistoryPath()
	if path == "" {
		return fail(formatter, ExitCommandError, ErrCodeHistory,
			fmt.Sprintf("history is disabled: set %s or \"history\" in the config file", config.EnvHistory), nil)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("history not found: %s", path), nil)
	}

	store, err := history.Open(path)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}
	defer store.Close()

	filter := history.Filter{File: opts.File, Limit: opts.Limit}
	if opts.Database != "" {
		if filter.Database, err = filepath.Abs(opts.Database); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
	}
	formatter.VerboseLog("Reading %s", path)

	records, err := store.List(cmd.Context(), filter)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeHistory, err.Error(), nil)
	}

	if formatter.Format == "json" {
		if records == nil {
			records = []history.Record{}
		}
		return formatter.Success(records)
	}

	for _, r := range records {
		fmt.Fprintln(formatter.Writer, formatRecord(r))
	}
	return nil
}

// formatRecord renders one journal row as a text line.
func formatRecord(r history.Record) string {
	line := fmt.Sprintf("%s  %-9s  %s  -> %s",
		r.RecordedAt.UTC().Format(time.RFC3339), r.Outcome, joinSource(r.Directory, r.File), r.Database)
	if r.Error != "" {
		line += fmt.Sprintf("  (%s)", r.Error)
	}
	return line
}
