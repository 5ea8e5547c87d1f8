package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DefaultLimit caps List when Filter.Limit is zero.
const DefaultLimit = 50

// Filter narrows List.
type Filter struct {
	Database string
	File     string
	Limit    int
}

// List returns journal rows, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if f.Database != "" {
		where = append(where, "database = ?")
		args = append(args, f.Database)
	}
	if f.File != "" {
		where = append(where, "file = ?")
		args = append(args, f.File)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `
		SELECT id, recorded_at, database, directory, file, compiler, arguments, outcome, error
		FROM merges`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY recorded_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r        Record
			nanos    int64
			argsJSON string
		)
		if err := rows.Scan(&r.ID, &nanos, &r.Database, &r.Directory, &r.File, &r.Compiler, &argsJSON, &r.Outcome, &r.Error); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		r.RecordedAt = time.Unix(0, nanos).UTC()
		if err := json.Unmarshal([]byte(argsJSON), &r.Arguments); err != nil {
			return nil, fmt.Errorf("decode arguments of %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}
