package compdb

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// Problem codes reported by Validate.
const (
	ProblemSyntax    = "syntax"
	ProblemSchema    = "schema"
	ProblemCommand   = "missing-command"
	ProblemDuplicate = "duplicate"
)

// Problem is one finding of Validate.
type Problem struct {
	Code string `json:"code"`
	// Index is the array element the problem belongs to, or -1.
	Index   int    `json:"index"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	loc := ""
	if p.Line > 0 {
		loc = fmt.Sprintf("line %d: ", p.Line)
	}
	if p.Index >= 0 {
		loc += fmt.Sprintf("entry %d: ", p.Index)
	}
	return fmt.Sprintf("%s%s: %s", loc, p.Code, p.Message)
}

// Validate checks data against the compilation database schema and reports
// every problem found, not just the first. Unlike Decode it also reports
// duplicate keys. A blank document is valid.
func Validate(filename string, data []byte) []Problem {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing to compile it is a programming error.
		panic(fmt.Sprintf("compdb: invalid embedded schema: %v", err))
	}

	doc := ctx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return cueProblems(filename, ProblemSyntax, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Database")).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cueProblems(filename, ProblemSchema, err)
	}

	var raws []rawEntry
	if err := json.Unmarshal(data, &raws); err != nil {
		return []Problem{{Code: ProblemSyntax, Index: -1, Message: err.Error()}}
	}

	var problems []Problem
	seen := make(map[Key]int, len(raws))
	for i, r := range raws {
		e, reason := r.entry()
		if reason != "" {
			problems = append(problems, Problem{Code: ProblemCommand, Index: i, Message: reason})
			continue
		}
		if first, ok := seen[e.Key()]; ok {
			problems = append(problems, Problem{
				Code:    ProblemDuplicate,
				Index:   i,
				Message: fmt.Sprintf("%s already defined by entry %d", e.Key(), first),
			})
			continue
		}
		seen[e.Key()] = i
	}
	return problems
}

func cueProblems(filename, code string, err error) []Problem {
	var problems []Problem
	for _, e := range errors.Errors(err) {
		p := Problem{Code: code, Index: -1, Message: e.Error()}
		for _, sel := range e.Path() {
			if i, convErr := strconv.Atoi(sel); convErr == nil {
				p.Index = i
				break
			}
		}
		for _, pos := range errors.Positions(e) {
			if pos.Filename() == filename {
				p.Line = pos.Line()
				break
			}
		}
		problems = append(problems, p)
	}
	if len(problems) == 0 {
		problems = append(problems, Problem{Code: code, Index: -1, Message: err.Error()})
	}
	return problems
}
