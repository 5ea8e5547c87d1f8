package compdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/shlex"
)

// Entry is one record of a compilation database.
type Entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments,omitempty"`
	// Command is the single-string form some generators emit instead of
	// Arguments. It is preserved as found; cdbgen itself never writes it.
	Command string `json:"command,omitempty"`
	Output  string `json:"output,omitempty"`
	// Extra holds members written by other tools. They are kept as found
	// and encoded after the known fields, sorted by name.
	Extra map[string]json.RawMessage `json:"-"`
}

// entryFields is Entry without its methods.
type entryFields Entry

// MarshalJSON encodes the known fields in declaration order followed by
// Extra.
func (e Entry) MarshalJSON() ([]byte, error) {
	known, err := marshalNoEscape(entryFields(e))
	if err != nil {
		return nil, err
	}
	if len(e.Extra) == 0 {
		return known, nil
	}

	var buf bytes.Buffer
	buf.Write(known[:len(known)-1]) // drop the closing brace
	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		name, err := marshalNoEscape(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(e.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Key identifies an entry within a database.
type Key struct {
	Directory string
	File      string
}

// Key returns the merge identity of the entry.
func (e Entry) Key() Key {
	return Key{Directory: e.Directory, File: e.File}
}

// Equal reports whether two entries are identical field by field. Extra is
// not compared: cdbgen never produces it.
func (e Entry) Equal(o Entry) bool {
	return e.Directory == o.Directory &&
		e.File == o.File &&
		e.Command == o.Command &&
		e.Output == o.Output &&
		slices.Equal(e.Arguments, o.Arguments)
}

// Argv returns the compiler argument vector of the entry. Entries stored in
// command form are split using POSIX shell quoting rules.
func (e Entry) Argv() ([]string, error) {
	if len(e.Arguments) > 0 {
		return slices.Clone(e.Arguments), nil
	}
	if e.Command == "" {
		return nil, fmt.Errorf("entry %s: no arguments or command", e.File)
	}
	argv, err := shlex.Split(e.Command)
	if err != nil {
		return nil, fmt.Errorf("entry %s: split command: %w", e.File, err)
	}
	return argv, nil
}

func (k Key) String() string {
	return k.Directory + "::" + k.File
}

// Database is an ordered compilation database.
type Database []Entry

// Change describes what Upsert did with one entry.
type Change int

const (
	// Unchanged means an identical entry already existed.
	Unchanged Change = iota
	// Inserted means the entry was appended.
	Inserted
	// Updated means an existing entry with the same key was replaced in place.
	Updated
)

func (c Change) String() string {
	switch c {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Index maps keys to positions in a database.
type Index map[Key]int

// NewIndex indexes db. When a key occurs more than once, the first position
// wins; Upsert will then only ever touch that position.
func NewIndex(db Database) Index {
	idx := make(Index, len(db))
	for i, e := range db {
		if _, ok := idx[e.Key()]; !ok {
			idx[e.Key()] = i
		}
	}
	return idx
}

// Upsert applies the insert-or-update rule for e and returns the resulting
// database together with what changed. idx must describe db and is kept in
// sync with the returned database. An updated entry keeps the Extra members
// of the one it replaces.
func (db Database) Upsert(idx Index, e Entry) (Database, Change) {
	if i, ok := idx[e.Key()]; ok {
		if db[i].Equal(e) {
			return db, Unchanged
		}
		if e.Extra == nil {
			e.Extra = db[i].Extra
		}
		db[i] = e
		return db, Updated
	}
	idx[e.Key()] = len(db)
	return append(db, e), Inserted
}
