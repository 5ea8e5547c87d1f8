package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarioFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: s
description: d
initial: "[]"
steps:
  - {compiler: cc, directory: /w, args: [-c, a.c], expect: inserted}
assertions:
  - {type: untouched}
`), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	require.NotNil(t, s.Initial)
	assert.Equal(t, "[]", *s.Initial)
	assert.Equal(t, []string{"-c", "a.c"}, s.Steps[0].Args)
}

func TestParseScenarioErrors(t *testing.T) {
	const step = "steps:\n  - {compiler: cc, directory: /w, args: [a.c]}\n"
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "name: x\ndescription: d\n" + step + "assertion: []\n", "field assertion not found"},
		{"missing name", "description: d\n" + step, "name is required"},
		{"missing description", "name: x\n" + step, "description is required"},
		{"no steps", "name: x\ndescription: d\n", "steps list is required"},
		{"missing compiler", "name: x\ndescription: d\nsteps:\n  - {directory: /w}\n", "steps[0]: compiler is required"},
		{"missing directory", "name: x\ndescription: d\nsteps:\n  - {compiler: cc}\n", "steps[0]: directory is required"},
		{"bad expect", "name: x\ndescription: d\nsteps:\n  - {compiler: cc, directory: /w, expect: replaced}\n", `unknown expect "replaced"`},
		{"assertion without type", "name: x\ndescription: d\n" + step + "assertions:\n  - {count: 1}\n", "type is required"},
		{"unknown assertion", "name: x\ndescription: d\n" + step + "assertions:\n  - {type: final_state}\n", `unknown assertion type "final_state"`},
		{"order without files", "name: x\ndescription: d\n" + step + "assertions:\n  - {type: entry_order}\n", "files list is required"},
		{"args without file", "name: x\ndescription: d\n" + step + "assertions:\n  - {type: entry_args, contains: [-c]}\n", "file is required"},
		{"args without contains", "name: x\ndescription: d\n" + step + "assertions:\n  - {type: entry_args, file: a.c}\n", "contains is required"},
		{"untouched without initial", "name: x\ndescription: d\n" + step + "assertions:\n  - {type: untouched}\n", "needs an initial database"},
		{"negative count", "name: x\ndescription: d\n" + step + "assertions:\n  - {type: entry_count, count: -1}\n", "count must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
