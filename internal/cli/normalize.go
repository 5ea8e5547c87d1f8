package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/roach88/cdbgen/internal/compdb"
)

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	Check bool
}

// NormalizeResult is the JSON payload of the normalize command.
type NormalizeResult struct {
	Database  string `json:"database"`
	Canonical bool   `json:"canonical"`
	Rewritten bool   `json:"rewritten"`
	Diff      string `json:"diff,omitempty"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize [database]",
		Short: "Rewrite a database in canonical form",
		Long: `Rewrite a compilation database in the encoding cdbgen itself writes:
two-space indentation, fixed key order, no HTML escaping.

Entries keep their order. Keys cdbgen does not know are kept and written
after the known ones, sorted by name. The rewrite happens under the database lock and replaces the file atomically.

With --check nothing is written; a unified diff against the canonical
form is printed and the exit code is 1 when they differ.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "report differences without rewriting")

	return cmd
}

func runNormalize(opts *NormalizeOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := commandLogger(opts.RootOptions, cmd)

	dbPath, err := databasePath(args, formatter)
	if err != nil {
		return err
	}

	result := NormalizeResult{Database: dbPath}
	var corrupt error
	err = withDatabaseLock(dbPath, func() error {
		current, err := os.ReadFile(dbPath)
		if err != nil {
			return err
		}
		db, err := compdb.Decode(current)
		if err != nil {
			corrupt = err
			return nil
		}
		canonical, err := compdb.Encode(db)
		if err != nil {
			return err
		}

		result.Canonical = bytes.Equal(current, canonical)
		if result.Canonical {
			return nil
		}
		if opts.Check {
			result.Diff, err = unifiedDiff(dbPath, current, canonical)
			return err
		}
		if err := compdb.WriteFile(dbPath, canonical); err != nil {
			return &writeError{err: err}
		}
		result.Rewritten = true
		logger.Debug("database normalized", "db", dbPath, "entries", len(db))
		return nil
	})
	if err != nil {
		return failRead(formatter, dbPath, err)
	}
	if corrupt != nil {
		return fail(formatter, ExitCommandError, ErrCodeCorrupt, corrupt.Error(), map[string]string{"database": dbPath})
	}

	if opts.Check && !result.Canonical {
		return outputNotCanonical(formatter, result)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	switch {
	case result.Rewritten:
		fmt.Fprintf(formatter.Writer, "✓ %s normalized\n", dbPath)
	default:
		fmt.Fprintf(formatter.Writer, "✓ %s is canonical\n", dbPath)
	}
	return nil
}

func outputNotCanonical(formatter *OutputFormatter, result NormalizeResult) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("%s is not canonical", result.Database))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeNotCanonical,
				Message: exitErr.Message,
			},
		}
		if err := encodeIndented(formatter.Writer, response); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprint(formatter.Writer, result.Diff)
	return exitErr
}

// unifiedDiff renders the change from current to canonical.
func unifiedDiff(path string, current, canonical []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(canonical)),
		FromFile: path,
		ToFile:   path + " (canonical)",
		Context:  3,
	})
}
