package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one merge conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Initial is the database content before the first step. Nil means
	// the file does not exist.
	Initial *string `yaml:"initial,omitempty"`

	// Steps are the compiler invocations to replay, in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final database.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one compiler invocation.
type Step struct {
	Compiler  string   `yaml:"compiler"`
	Directory string   `yaml:"directory"`
	Args      []string `yaml:"args"`

	// Expect is the change every entry of this step must produce.
	// Empty means no check.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the final database.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected number of entries (entry_count).
	Count int `yaml:"count,omitempty"`

	// Files is the expected relative order (entry_order).
	Files []string `yaml:"files,omitempty"`

	// File and Directory select the entry (entry_args). An empty
	// Directory matches any.
	File      string `yaml:"file,omitempty"`
	Directory string `yaml:"directory,omitempty"`

	// Contains lists arguments the entry must have (entry_args).
	Contains []string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertEntryCount = "entry_count"
	AssertEntryOrder = "entry_order"
	AssertEntryArgs  = "entry_args"
	AssertUntouched  = "untouched"
)

// Step outcomes besides the compdb.Change names.
const (
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

var validOutcomes = map[string]bool{
	"":             true,
	"inserted":     true,
	"updated":      true,
	"unchanged":    true,
	OutcomeSkipped: true,
	OutcomeFailed:  true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Compiler == "" {
			return fmt.Errorf("steps[%d]: compiler is required", i)
		}
		if step.Directory == "" {
			return fmt.Errorf("steps[%d]: directory is required", i)
		}
		if !validOutcomes[step.Expect] {
			return fmt.Errorf("steps[%d]: unknown expect %q", i, step.Expect)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], s); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, s *Scenario) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertEntryCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for entry_count", index)
		}
	case AssertEntryOrder:
		if len(a.Files) == 0 {
			return fmt.Errorf("assertions[%d]: files list is required for entry_order", index)
		}
	case AssertEntryArgs:
		if a.File == "" {
			return fmt.Errorf("assertions[%d]: file is required for entry_args", index)
		}
		if len(a.Contains) == 0 {
			return fmt.Errorf("assertions[%d]: contains is required for entry_args", index)
		}
	case AssertUntouched:
		if s.Initial == nil {
			return fmt.Errorf("assertions[%d]: untouched needs an initial database", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
