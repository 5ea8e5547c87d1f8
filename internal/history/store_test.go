package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cdbgen/internal/compdb"
	"github.com/roach88/cdbgen/internal/merge"
	"github.com/roach88/cdbgen/internal/testutil"
)

func createTestStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func testEntry(file string, args ...string) compdb.Entry {
	return compdb.Entry{
		Directory: "/src",
		File:      file,
		Arguments: append([]string{"/usr/bin/gcc"}, args...),
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	_, path := createTestStore(t)

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	var version int
	require.NoError(t, again.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)

	var mode string
	require.NoError(t, again.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestWriteAndList(t *testing.T) {
	clock := testutil.NewDeterministicClock()
	s, _ := createTestStore(t,
		WithClock(clock.Now),
		WithIDGenerator(NewFixedGenerator("id-1", "id-2", "id-3")),
	)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, Record{Database: "/db.json", Directory: "/src", File: "a.c", Compiler: "gcc", Arguments: []string{"gcc", "-c", "a.c"}, Outcome: "inserted"}))
	require.NoError(t, s.Write(ctx, Record{Database: "/db.json", Directory: "/src", File: "b.c", Compiler: "gcc", Arguments: []string{"gcc", "-c", "b.c"}, Outcome: "inserted"}))
	require.NoError(t, s.Write(ctx, Record{Database: "/other.json", Directory: "/src", File: "a.c", Compiler: "gcc", Arguments: []string{"gcc", "-O3", "-c", "a.c"}, Outcome: "updated"}))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"id-3", "id-2", "id-1"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, testutil.Epoch, all[2].RecordedAt)
	assert.Equal(t, []string{"gcc", "-c", "a.c"}, all[2].Arguments)

	byDB, err := s.List(ctx, Filter{Database: "/db.json"})
	require.NoError(t, err)
	assert.Len(t, byDB, 2)

	byFile, err := s.List(ctx, Filter{File: "a.c"})
	require.NoError(t, err)
	require.Len(t, byFile, 2)
	assert.Equal(t, "updated", byFile[0].Outcome)

	limited, err := s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestWriteDuplicateIDIgnored(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	r := Record{ID: "same", Database: "/db.json", Directory: "/src", File: "a.c", Outcome: "inserted"}

	require.NoError(t, s.Write(ctx, r))
	r.Outcome = "updated"
	require.NoError(t, s.Write(ctx, r))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "inserted", all[0].Outcome)
}

func TestRecordMergeOutcomes(t *testing.T) {
	s, _ := createTestStore(t, WithClock(testutil.NewDeterministicClock().Now))
	ctx := context.Background()
	res := merge.Result{
		Inserted:  1,
		Unchanged: 1,
		Outcomes: []merge.Outcome{
			{Entry: testEntry("a.c", "-c", "a.c"), Change: compdb.Inserted},
			{Entry: testEntry("b.c", "-c", "b.c"), Change: compdb.Unchanged},
		},
	}

	require.NoError(t, s.RecordMerge(ctx, "/db.json", nil, res, nil))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	outcomes := map[string]string{all[0].File: all[0].Outcome, all[1].File: all[1].Outcome}
	assert.Equal(t, map[string]string{"a.c": "inserted", "b.c": "unchanged"}, outcomes)
	assert.Equal(t, "/usr/bin/gcc", all[0].Compiler)
}

func TestRecordMergeFailure(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	entries := []compdb.Entry{testEntry("a.c", "-c", "a.c")}

	require.NoError(t, s.RecordMerge(ctx, "/db.json", entries, merge.Result{}, errors.New("corrupt")))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, OutcomeFailed, all[0].Outcome)
	assert.Equal(t, "corrupt", all[0].Error)
}

func TestRecordMergeNothing(t *testing.T) {
	s, _ := createTestStore(t)
	require.NoError(t, s.RecordMerge(context.Background(), "/db.json", nil, merge.Result{}, nil))
}

func TestEngineWritesJournal(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "compile_commands.json")
	eng := merge.New(merge.WithRecorder(s))

	_, err := eng.Update(ctx, dbPath, testEntry("a.c", "-O2", "-c", "a.c"))
	require.NoError(t, err)
	_, err = eng.Update(ctx, dbPath, testEntry("a.c", "-O3", "-c", "a.c"))
	require.NoError(t, err)

	all, err := s.List(ctx, Filter{Database: dbPath})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "updated", all[0].Outcome)
	assert.Equal(t, "inserted", all[1].Outcome)
}

func TestConcurrentWriters(t *testing.T) {
	_, path := createTestStore(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := Open(path)
			if err != nil {
				errs <- err
				return
			}
			defer s.Close()
			errs <- s.Write(ctx, Record{Database: "/db.json", Directory: "/src", File: fmt.Sprintf("f%d.c", i), Outcome: "inserted"})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, writers)
}

func TestFixedGeneratorExhausted(t *testing.T) {
	g := NewFixedGenerator("only")
	assert.Equal(t, "only", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7GeneratorUnique(t *testing.T) {
	g := UUIDv7Generator{}
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
