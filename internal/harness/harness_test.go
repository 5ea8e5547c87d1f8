package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name must match its file")

			result := RunWithGolden(t, scenario)
			assert.True(t, result.Pass)
			assert.Len(t, result.Trace, len(scenario.Steps))
		})
	}
}

func TestRunTrace(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: trace
description: "trace records files and changes"
steps:
  - compiler: /usr/bin/cc
    directory: /work
    args: [-c, a.c, b.c]
  - compiler: /usr/bin/cc
    directory: /work
    args: [--version]
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario, t.TempDir())
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, []TraceEvent{
		{Step: 0, Files: []string{"a.c", "b.c"}, Changes: []string{"inserted", "inserted"}},
		{Step: 1, Changes: []string{OutcomeSkipped}},
	}, result.Trace)
}

func TestRunReportsUnmetExpectation(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_expectation
description: "second identical step is unchanged, not updated"
steps:
  - compiler: /usr/bin/cc
    directory: /work
    args: [-c, a.c]
    expect: inserted
  - compiler: /usr/bin/cc
    directory: /work
    args: [-c, a.c]
    expect: updated
assertions:
  - type: entry_count
    count: 3
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario, t.TempDir())
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "steps[1]: expected updated, got [unchanged]")
	assert.Contains(t, result.Errors[1], "entry_count")
}

func TestRunWithoutEntriesLeavesNoDatabase(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: link_only
description: "linking creates no database"
steps:
  - compiler: /usr/bin/cc
    directory: /work
    args: [a.o, -o, app]
    expect: skipped
`))
	require.NoError(t, err)

	dir := t.TempDir()
	result, err := Run(context.Background(), scenario, dir)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Nil(t, result.Database)
	assert.NoFileExists(t, filepath.Join(dir, DatabaseName))
}
