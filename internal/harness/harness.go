package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/cdbgen/internal/compdb"
	"github.com/roach88/cdbgen/internal/entry"
	"github.com/roach88/cdbgen/internal/merge"
)

// DatabaseName is the database file a scenario runs against.
const DatabaseName = "compile_commands.json"

// Harness replays scenario steps against one database.
type Harness struct {
	dbPath string
	engine *merge.Engine
	opts   entry.Options
}

// Run executes a scenario in dir, which should be empty, and returns the
// result. The error is non-nil only when the scenario could not be set up
// or a step could not be turned into entries; failed expectations are
// reported in the result.
func Run(ctx context.Context, scenario *Scenario, dir string) (*Result, error) {
	h := &Harness{
		dbPath: filepath.Join(dir, DatabaseName),
		engine: merge.New(merge.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))),
		opts:   entry.DefaultOptions(),
	}

	if scenario.Initial != nil {
		if err := os.WriteFile(h.dbPath, []byte(*scenario.Initial), 0o644); err != nil {
			return nil, fmt.Errorf("write initial database: %w", err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		event, err := h.executeStep(ctx, i, step)
		if err != nil {
			return nil, err
		}
		result.AddStep(event)
		checkExpect(result, event, step.Expect)
	}

	data, err := os.ReadFile(h.dbPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read final database: %w", err)
	}
	result.Database = data

	evaluateAssertions(result, scenario)
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step) (TraceEvent, error) {
	event := TraceEvent{Step: index}

	entries, err := entry.Build(entry.Invocation{
		Compiler:  step.Compiler,
		Directory: step.Directory,
		Args:      step.Args,
	}, h.opts)
	if errors.Is(err, entry.ErrNoSourceFile) {
		event.Changes = []string{OutcomeSkipped}
		return event, nil
	}
	if err != nil {
		return event, fmt.Errorf("steps[%d]: %w", index, err)
	}
	for _, e := range entries {
		event.Files = append(event.Files, e.File)
	}

	res, err := h.engine.Update(ctx, h.dbPath, entries...)
	if err != nil {
		event.Changes = []string{OutcomeFailed}
		event.Error = err.Error()
		return event, nil
	}
	for _, o := range res.Outcomes {
		event.Changes = append(event.Changes, o.Change.String())
	}
	return event, nil
}

func checkExpect(result *Result, event TraceEvent, expect string) {
	if expect == "" {
		return
	}
	for _, change := range event.Changes {
		if change != expect {
			result.AddError(fmt.Sprintf("steps[%d]: expected %s, got %v", event.Step, expect, event.Changes))
			return
		}
	}
}

// entries decodes the final database for assertions.
func (r *Result) entries() (compdb.Database, error) {
	return compdb.Decode(r.Database)
}
