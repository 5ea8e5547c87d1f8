package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cdbgen/internal/config"
	"github.com/roach88/cdbgen/internal/dispatch"
	"github.com/roach88/cdbgen/internal/entry"
	"github.com/roach88/cdbgen/internal/history"
	"github.com/roach88/cdbgen/internal/merge"
)

// Wrapper records one compiler invocation and then runs the compiler.
// Zero fields fall back to the process environment.
type Wrapper struct {
	Getenv   config.Getenv
	Dir      string
	Stderr   io.Writer
	Resolve  func(name string) (string, error)
	Executor dispatch.Executor
}

// NewWrapCommand creates the wrap command, the explicit form of running
// cdbgen as cdbgen-<compiler>.
func NewWrapCommand(rootOpts *RootOptions, w *Wrapper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrap <compiler> [args...]",
		Short: "Record a compiler invocation and run the compiler",
		Long: `Record a compiler invocation into the compilation database, then run
the compiler with the same arguments.

"cdbgen wrap gcc -c foo.c" behaves like running cdbgen installed as
cdbgen-gcc. All arguments after the compiler name are passed through
untouched, including ones that look like cdbgen flags.`,
		Args:               cobra.MinimumNArgs(1),
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrap(w, args, cmd)
		},
	}

	return cmd
}

func runWrap(w *Wrapper, args []string, cmd *cobra.Command) error {
	ww := *w
	if ww.Stderr == nil {
		ww.Stderr = cmd.ErrOrStderr()
	}
	if code := ww.Run(cmd.Context(), args[0], args[1:]); code != ExitSuccess {
		return NewExitError(code, "")
	}
	return nil
}

// RunWrapper is the entry point for cdbgen installed as cdbgen-<compiler>.
// argv is the full process argument vector.
func RunWrapper(ctx context.Context, argv []string) int {
	w := &Wrapper{}
	name, err := dispatch.CompilerName(argv[0])
	if err != nil {
		fmt.Fprintf(w.stderr(), "cdbgen: %v\n", err)
		return ExitCompilerNotFound
	}
	return w.Run(ctx, name, argv[1:])
}

// Run resolves compiler, merges the entries derived from args into the
// configured database and runs the compiler. It returns the compiler's exit
// code. Failing to update the database only produces a warning.
func (w *Wrapper) Run(ctx context.Context, compiler string, args []string) int {
	stderr := w.stderr()

	resolve := w.Resolve
	if resolve == nil {
		resolve = dispatch.Resolve
	}
	path, err := resolve(compiler)
	if err != nil {
		fmt.Fprintf(stderr, "cdbgen: %v\n", err)
		return ExitCompilerNotFound
	}

	cfg, cfgErr := w.config()
	logger := newLogger(stderr, cfg.Level())
	if cfgErr != nil {
		logger.Warn("configuration ignored, using defaults", "error", cfgErr)
	}

	w.record(ctx, logger, cfg, entry.Invocation{
		Compiler:  path,
		Directory: cfg.Dir(),
		Args:      args,
	})

	executor := w.Executor
	if executor == nil {
		executor = dispatch.System{}
	}
	logger.Debug("running compiler", "path", path, "args", len(args))
	code, err := executor.Exec(path, args)
	if err != nil {
		fmt.Fprintf(stderr, "cdbgen: %v\n", err)
		return ExitCompilerNotExecutable
	}
	return code
}

// record merges the invocation into the database. It returns before the
// compiler runs so that nothing is left open across exec.
func (w *Wrapper) record(ctx context.Context, logger *slog.Logger, cfg *config.Config, inv entry.Invocation) {
	if inv.Directory == "" {
		logger.Warn("compilation database not updated", "error", "working directory unknown")
		return
	}

	entries, err := entry.Build(inv, cfg.EntryOptions())
	if errors.Is(err, entry.ErrNoSourceFile) {
		logger.Debug("no source file, database untouched")
		return
	}
	if err != nil {
		logger.Warn("compilation database not updated", "error", err)
		return
	}

	opts := []merge.Option{merge.WithLogger(logger)}
	if hp := cfg.HistoryPath(); hp != "" {
		store, err := history.Open(hp)
		if err != nil {
			logger.Warn("history disabled for this invocation", "history", hp, "error", err)
		} else {
			defer store.Close()
			opts = append(opts, merge.WithRecorder(store))
		}
	}

	dbPath := cfg.DatabasePath()
	if _, err := merge.New(opts...).Update(ctx, dbPath, entries...); err != nil {
		logger.Warn("compilation database not updated", "db", dbPath, "reason", updateFailure(err), "error", err)
	}
}

// updateFailure names the kind of merge failure for the warning.
func updateFailure(err error) string {
	switch {
	case merge.IsCorrupt(err):
		return "corrupt"
	case merge.IsLock(err):
		return "lock"
	default:
		return "io"
	}
}

func (w *Wrapper) config() (*config.Config, error) {
	getenv := w.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	dir := w.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return config.Fallback(getenv, ""), fmt.Errorf("working directory: %w", err)
		}
		dir = wd
	}
	cfg, err := config.Load(getenv, dir)
	if err != nil {
		return config.Fallback(getenv, dir), err
	}
	return cfg, nil
}

func (w *Wrapper) stderr() io.Writer {
	if w.Stderr != nil {
		return w.Stderr
	}
	return os.Stderr
}
