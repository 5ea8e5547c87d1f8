package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/cdbgen/internal/compdb"
	"github.com/roach88/cdbgen/internal/lock"
)

// LockSuffix is appended to the database path to name its lock file.
const LockSuffix = ".lock"

// Outcome is what happened to one entry.
type Outcome struct {
	Entry  compdb.Entry
	Change compdb.Change
}

// Result summarizes an Update.
type Result struct {
	Inserted  int
	Updated   int
	Unchanged int
	// Written is true when the database file was replaced.
	Written  bool
	Outcomes []Outcome
}

// Recorder observes finished merges. It is called after the lock has been
// released, with the error of the merge if there was one.
type Recorder interface {
	RecordMerge(ctx context.Context, dbPath string, entries []compdb.Entry, res Result, mergeErr error) error
}

// Engine merges entries into compilation databases.
// It holds no state between calls; all coordination is through the file
// system.
type Engine struct {
	locks    *lock.Manager
	logger   *slog.Logger
	recorder Recorder
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRecorder sets a Recorder notified after each Update.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLockManager overrides the platform lock manager.
func WithLockManager(m *lock.Manager) Option {
	return func(e *Engine) { e.locks = m }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		locks:  lock.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LockPath returns the lock file guarding dbPath.
func LockPath(dbPath string) string {
	return dbPath + LockSuffix
}

// Update merges entries into the database at dbPath, creating the database
// and its directory when needed. It blocks until the database lock is
// available.
func (e *Engine) Update(ctx context.Context, dbPath string, entries ...compdb.Entry) (Result, error) {
	if len(entries) == 0 {
		return Result{}, nil
	}
	start := time.Now()

	res, err := e.update(ctx, dbPath, entries)

	if e.recorder != nil {
		if recErr := e.recorder.RecordMerge(ctx, dbPath, entries, res, err); recErr != nil {
			e.logger.Warn("recording merge failed", "db", dbPath, "error", recErr)
		}
	}
	if err != nil {
		return res, err
	}

	e.logger.Debug("merge finished",
		"db", dbPath,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"unchanged", res.Unchanged,
		"written", res.Written,
		"elapsed", time.Since(start),
	)
	return res, nil
}

func (e *Engine) update(ctx context.Context, dbPath string, entries []compdb.Entry) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, &Error{Op: "prepare", Path: dbPath, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return Result{}, &Error{Op: "prepare", Path: dbPath, Err: err}
	}

	var res Result
	err := e.locks.With(LockPath(dbPath), func() error {
		e.logger.Debug("lock acquired", "db", dbPath)

		db, err := compdb.Load(dbPath)
		if err != nil {
			return &Error{Op: "load", Path: dbPath, Err: err}
		}

		db, res = apply(db, entries)
		if !res.Written {
			return nil
		}
		if err := compdb.Save(dbPath, db); err != nil {
			res.Written = false
			return &Error{Op: "save", Path: dbPath, Err: err}
		}
		return nil
	})
	if err != nil {
		var me *Error
		if !errors.As(err, &me) {
			err = &Error{Op: "lock", Path: dbPath, Err: err}
		}
		return res, err
	}
	return res, nil
}

// apply runs the insert-or-update rule for every entry. Written reports
// whether the database differs from its input.
func apply(db compdb.Database, entries []compdb.Entry) (compdb.Database, Result) {
	idx := compdb.NewIndex(db)
	res := Result{Outcomes: make([]Outcome, 0, len(entries))}
	for _, entry := range entries {
		var change compdb.Change
		db, change = db.Upsert(idx, entry)
		switch change {
		case compdb.Inserted:
			res.Inserted++
		case compdb.Updated:
			res.Updated++
		default:
			res.Unchanged++
		}
		res.Outcomes = append(res.Outcomes, Outcome{Entry: entry, Change: change})
	}
	res.Written = res.Inserted+res.Updated > 0
	return db, res
}

// String renders the result for logs and CLI output.
func (r Result) String() string {
	return fmt.Sprintf("%d inserted, %d updated, %d unchanged", r.Inserted, r.Updated, r.Unchanged)
}
