package entry

import (
	"errors"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/cdbgen/internal/compdb"
)

// ErrNoSourceFile is returned when an invocation compiles no source file.
var ErrNoSourceFile = errors.New("no source file in invocation")

// DefaultExtensions are the source file suffixes recognized out of the box.
var DefaultExtensions = []string{".c", ".cc", ".cpp", ".cxx", ".c++", ".C", ".m", ".mm", ".cu"}

// valueFlags consume the following argument, which is therefore never a
// source file even when it looks like one.
var valueFlags = map[string]bool{
	"-o":             true,
	"-MF":            true,
	"-MT":            true,
	"-MQ":            true,
	"-include":       true,
	"-imacros":       true,
	"-x":             true,
	"--output":       true,
	"-Xlinker":       true,
	"-Xclang":        true,
	"-Xpreprocessor": true,
}

// Invocation describes one call of the wrapper.
type Invocation struct {
	// Compiler is the absolute path of the real compiler.
	Compiler string
	// Directory is the absolute working directory.
	Directory string
	// Args are the arguments following the program name.
	Args []string
}

// Options control source file recognition.
type Options struct {
	Extensions []string
	// FoldCase matches extensions case-insensitively.
	FoldCase bool
}

// DefaultOptions returns the options used when nothing is configured.
// Extension matching is case-insensitive on Windows only.
func DefaultOptions() Options {
	return Options{
		Extensions: slices.Clone(DefaultExtensions),
		FoldCase:   runtime.GOOS == "windows",
	}
}

// Build returns one entry per distinct source file compiled by inv, in the
// order the files first appear on the command line.
//
// Invalid UTF-8 is replaced with U+FFFD, the form JSON stores it in, so that
// an entry compares equal to itself after a round trip through the file.
func Build(inv Invocation, opts Options) ([]compdb.Entry, error) {
	inv = sanitize(inv)
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	m := newMatcher(opts)

	var sources []string
	seen := make(map[string]bool)
	output := ""
	for i := 0; i < len(inv.Args); i++ {
		arg := inv.Args[i]
		switch {
		case valueFlags[arg]:
			if i+1 < len(inv.Args) {
				if arg == "-o" || arg == "--output" {
					output = inv.Args[i+1]
				}
				i++
			}
			continue
		case strings.HasPrefix(arg, "--output="):
			output = strings.TrimPrefix(arg, "--output=")
			continue
		case strings.HasPrefix(arg, "-o") && len(arg) > 2:
			output = arg[2:]
			continue
		case strings.HasPrefix(arg, "-"):
			continue
		}
		if m.isSource(arg) && !seen[arg] {
			seen[arg] = true
			sources = append(sources, arg)
		}
	}
	if len(sources) == 0 {
		return nil, ErrNoSourceFile
	}
	if len(sources) > 1 {
		output = ""
	}

	argv := make([]string, 0, len(inv.Args)+1)
	argv = append(argv, inv.Compiler)
	argv = append(argv, inv.Args...)

	entries := make([]compdb.Entry, 0, len(sources))
	for _, src := range sources {
		entries = append(entries, compdb.Entry{
			Directory: inv.Directory,
			File:      src,
			Arguments: slices.Clone(argv),
			Output:    output,
		})
	}
	return entries, nil
}

func sanitize(inv Invocation) Invocation {
	args := make([]string, len(inv.Args))
	for i, a := range inv.Args {
		args[i] = strings.ToValidUTF8(a, "\uFFFD")
	}
	return Invocation{
		Compiler:  strings.ToValidUTF8(inv.Compiler, "\uFFFD"),
		Directory: strings.ToValidUTF8(inv.Directory, "\uFFFD"),
		Args:      args,
	}
}

type matcher struct {
	exts   map[string]bool
	folder *cases.Caser
}

func newMatcher(opts Options) *matcher {
	m := &matcher{exts: make(map[string]bool, len(opts.Extensions))}
	if opts.FoldCase {
		c := cases.Fold()
		m.folder = &c
	}
	for _, ext := range opts.Extensions {
		m.exts[m.fold(ext)] = true
	}
	return m
}

func (m *matcher) fold(s string) string {
	if m.folder == nil {
		return s
	}
	return m.folder.String(s)
}

func (m *matcher) isSource(arg string) bool {
	ext := filepath.Ext(arg)
	return ext != "" && m.exts[m.fold(ext)]
}
