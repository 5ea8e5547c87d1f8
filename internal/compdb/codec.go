package compdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// rawEntry mirrors Entry with pointer fields so that missing keys and
// wrongly typed values can be told apart from empty strings.
type rawEntry struct {
	Directory *string  `json:"directory"`
	File      *string  `json:"file"`
	Arguments []string `json:"arguments"`
	Command   *string  `json:"command"`
	Output    *string  `json:"output"`
}

var knownFields = map[string]bool{
	"directory": true,
	"file":      true,
	"arguments": true,
	"command":   true,
	"output":    true,
}

// Load reads the database at path. A missing or blank file is an empty
// database.
func Load(path string) (Database, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Database{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses the JSON form of a database.
func Decode(data []byte) (Database, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Database{}, nil
	}
	if trimmed[0] != '[' {
		return nil, &CorruptError{Index: -1, Reason: "top-level value is not an array"}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var items []json.RawMessage
	if err := dec.Decode(&items); err != nil {
		return nil, &CorruptError{Index: -1, Reason: "invalid JSON", Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &CorruptError{Index: -1, Reason: "trailing data after array"}
	}

	db := make(Database, 0, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, &CorruptError{Index: i, Reason: "entry is not an object", Err: err}
		}
		var r rawEntry
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, &CorruptError{Index: i, Reason: "wrongly typed field", Err: err}
		}
		e, reason := r.entry()
		if reason != "" {
			return nil, &CorruptError{Index: i, Reason: reason}
		}
		e.Extra = unknownFields(fields)
		db = append(db, e)
	}
	return db, nil
}

// unknownFields returns the members of an entry object that Entry has no
// field for, or nil if there are none. Names are matched case-insensitively,
// as encoding/json does when filling rawEntry.
func unknownFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	var extra map[string]json.RawMessage
	for k, v := range fields {
		if knownFields[strings.ToLower(k)] {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return extra
}

func (r rawEntry) entry() (Entry, string) {
	switch {
	case r.Directory == nil || *r.Directory == "":
		return Entry{}, "missing directory"
	case r.File == nil || *r.File == "":
		return Entry{}, "missing file"
	case len(r.Arguments) == 0 && (r.Command == nil || *r.Command == ""):
		return Entry{}, "missing arguments or command"
	}
	e := Entry{
		Directory: *r.Directory,
		File:      *r.File,
		Arguments: r.Arguments,
	}
	if r.Command != nil {
		e.Command = *r.Command
	}
	if r.Output != nil {
		e.Output = *r.Output
	}
	return e, ""
}

// Encode renders db in its canonical on-disk form.
func Encode(db Database) ([]byte, error) {
	if db == nil {
		db = Database{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(db); err != nil {
		return nil, fmt.Errorf("encode database: %w", err)
	}
	return buf.Bytes(), nil
}

// Save encodes db and atomically replaces the file at path.
func Save(path string, db Database) error {
	data, err := Encode(db)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}
