package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/cdbgen/internal/compdb"
	"github.com/roach88/cdbgen/internal/merge"
)

// OutcomeFailed marks entries whose merge was abandoned.
const OutcomeFailed = "failed"

// Record is one journal row.
type Record struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Database   string    `json:"database"`
	Directory  string    `json:"directory"`
	File       string    `json:"file"`
	Compiler   string    `json:"compiler"`
	Arguments  []string  `json:"arguments"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
}

// Write inserts records in one transaction. Records without an id or time
// get one. Duplicate ids are ignored.
func (s *Store) Write(ctx context.Context, records ...Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		if r.ID == "" {
			r.ID = s.ids.Generate()
		}
		if r.RecordedAt.IsZero() {
			r.RecordedAt = s.now()
		}
		args, err := json.Marshal(r.Arguments)
		if err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO merges
			(id, recorded_at, database, directory, file, compiler, arguments, outcome, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`,
			r.ID,
			r.RecordedAt.UTC().UnixNano(),
			r.Database,
			r.Directory,
			r.File,
			r.Compiler,
			string(args),
			r.Outcome,
			r.Error,
		)
		if err != nil {
			return fmt.Errorf("write history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// RecordMerge implements merge.Recorder.
func (s *Store) RecordMerge(ctx context.Context, dbPath string, entries []compdb.Entry, res merge.Result, mergeErr error) error {
	now := s.now()
	var records []Record
	if mergeErr != nil {
		for _, e := range entries {
			r := newRecord(dbPath, e, OutcomeFailed, now)
			r.Error = mergeErr.Error()
			records = append(records, r)
		}
	} else {
		for _, o := range res.Outcomes {
			records = append(records, newRecord(dbPath, o.Entry, o.Change.String(), now))
		}
	}
	if len(records) == 0 {
		return nil
	}
	return s.Write(ctx, records...)
}

func newRecord(dbPath string, e compdb.Entry, outcome string, at time.Time) Record {
	r := Record{
		RecordedAt: at,
		Database:   dbPath,
		Directory:  e.Directory,
		File:       e.File,
		Arguments:  e.Arguments,
		Outcome:    outcome,
	}
	if len(e.Arguments) > 0 {
		r.Compiler = e.Arguments[0]
	}
	return r
}

var _ merge.Recorder = (*Store)(nil)
