package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cdbgen/internal/compdb"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Database string           `json:"database"`
	Valid    bool             `json:"valid"`
	Problems []compdb.Problem `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [database]",
		Short: "Check a compilation database",
		Long: `Check a compilation database against the expected schema.

Reports every problem found: JSON syntax errors, entries with missing or
mistyped fields, entries with neither arguments nor command, and duplicate
(directory, file) pairs. Defaults to the configured database.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	dbPath, err := databasePath(args, formatter)
	if err != nil {
		return err
	}

	data, err := readDatabase(dbPath)
	if err != nil {
		return failRead(formatter, dbPath, err)
	}
	formatter.VerboseLog("Read %d bytes from %s", len(data), dbPath)

	problems := compdb.Validate(dbPath, data)
	if len(problems) > 0 {
		return outputValidationProblems(formatter, dbPath, problems)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Database: dbPath, Valid: true})
	}
	fmt.Fprintf(formatter.Writer, "✓ %s is valid\n", dbPath)
	return nil
}

// outputValidationProblems outputs every problem and returns exit code 1.
func outputValidationProblems(formatter *OutputFormatter, dbPath string, problems []compdb.Problem) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d problem(s)", len(problems)))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Database: dbPath, Problems: problems},
			Error: &CLIError{
				Code:    ErrCodeInvalid,
				Message: exitErr.Message,
			},
		}
		if err := encodeIndented(formatter.Writer, response); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintf(formatter.Writer, "✗ %s is invalid\n\n", dbPath)
	for _, p := range problems {
		fmt.Fprintf(formatter.Writer, "  %s\n", p)
	}
	fmt.Fprintf(formatter.Writer, "\n%d problem(s)\n", len(problems))
	return exitErr
}
