package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/cdbgen/internal/compdb"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

func evaluateAssertions(result *Result, scenario *Scenario) {
	for i, a := range scenario.Assertions {
		if err := evaluateAssertion(result, scenario, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
}

func evaluateAssertion(result *Result, scenario *Scenario, a Assertion) error {
	if a.Type == AssertUntouched {
		return assertUntouched(result.Database, *scenario.Initial)
	}

	db, err := result.entries()
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: "a readable database", Actual: err.Error()}
	}

	switch a.Type {
	case AssertEntryCount:
		return assertEntryCount(db, a)
	case AssertEntryOrder:
		return assertEntryOrder(db, a)
	case AssertEntryArgs:
		return assertEntryArgs(db, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertUntouched(data []byte, initial string) error {
	if string(data) != initial {
		return &AssertionError{Type: AssertUntouched, Expected: fmt.Sprintf("%q", initial), Actual: fmt.Sprintf("%q", data)}
	}
	return nil
}

func assertEntryCount(db compdb.Database, a Assertion) error {
	if len(db) != a.Count {
		return &AssertionError{Type: AssertEntryCount, Expected: fmt.Sprint(a.Count), Actual: fmt.Sprint(len(db))}
	}
	return nil
}

// assertEntryOrder checks that the files appear in the given relative
// order. Other entries may sit between them.
func assertEntryOrder(db compdb.Database, a Assertion) error {
	next := 0
	for _, e := range db {
		if next < len(a.Files) && e.File == a.Files[next] {
			next++
		}
	}
	if next != len(a.Files) {
		files := make([]string, len(db))
		for i, e := range db {
			files[i] = e.File
		}
		return &AssertionError{
			Type:     AssertEntryOrder,
			Expected: strings.Join(a.Files, ", "),
			Actual:   strings.Join(files, ", "),
		}
	}
	return nil
}

func assertEntryArgs(db compdb.Database, a Assertion) error {
	for _, e := range db {
		if e.File != a.File || (a.Directory != "" && e.Directory != a.Directory) {
			continue
		}
		argv, err := e.Argv()
		if err != nil {
			return &AssertionError{Type: AssertEntryArgs, Expected: "parsable command", Actual: err.Error()}
		}
		for _, want := range a.Contains {
			if !containsString(argv, want) {
				return &AssertionError{
					Type:     AssertEntryArgs,
					Expected: fmt.Sprintf("%s in arguments of %s", want, a.File),
					Actual:   strings.Join(argv, " "),
				}
			}
		}
		return nil
	}
	return &AssertionError{Type: AssertEntryArgs, Expected: "entry for " + a.File, Actual: "none"}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
