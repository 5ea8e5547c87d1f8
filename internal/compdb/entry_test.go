package compdb

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryFor(dir, file string, args ...string) Entry {
	return Entry{Directory: dir, File: file, Arguments: append([]string{"/usr/bin/gcc"}, args...)}
}

func TestUpsertInsertAppends(t *testing.T) {
	db := Database{entryFor("/p", "a.c", "-c", "a.c")}
	idx := NewIndex(db)

	db, change := db.Upsert(idx, entryFor("/p", "b.c", "-c", "b.c"))
	assert.Equal(t, Inserted, change)
	require.Len(t, db, 2)
	assert.Equal(t, "a.c", db[0].File)
	assert.Equal(t, "b.c", db[1].File)
	assert.Equal(t, 1, idx[Key{Directory: "/p", File: "b.c"}])
}

func TestUpsertUpdatesInPlace(t *testing.T) {
	db := Database{
		entryFor("/p", "a.c", "-O2", "-c", "a.c"),
		entryFor("/p", "b.c", "-c", "b.c"),
		entryFor("/p", "c.c", "-c", "c.c"),
	}
	idx := NewIndex(db)

	updated := entryFor("/p", "b.c", "-O3", "-c", "b.c")
	db, change := db.Upsert(idx, updated)
	assert.Equal(t, Updated, change)
	require.Len(t, db, 3)
	assert.Equal(t, updated, db[1])
	assert.Equal(t, entryFor("/p", "a.c", "-O2", "-c", "a.c"), db[0])
	assert.Equal(t, entryFor("/p", "c.c", "-c", "c.c"), db[2])
}

func TestUpsertIdenticalIsNoop(t *testing.T) {
	db := Database{entryFor("/p", "a.c", "-c", "a.c")}
	idx := NewIndex(db)

	db, change := db.Upsert(idx, entryFor("/p", "a.c", "-c", "a.c"))
	assert.Equal(t, Unchanged, change)
	assert.Len(t, db, 1)
}

func TestUpsertKeyIncludesDirectory(t *testing.T) {
	db := Database{entryFor("/p", "a.c", "-c", "a.c")}
	idx := NewIndex(db)

	db, change := db.Upsert(idx, entryFor("/q", "a.c", "-c", "a.c"))
	assert.Equal(t, Inserted, change)
	assert.Len(t, db, 2)
}

func TestUpsertReplacesCommandForm(t *testing.T) {
	db := Database{{Directory: "/p", File: "a.c", Command: "cc -c a.c"}}
	idx := NewIndex(db)

	db, change := db.Upsert(idx, entryFor("/p", "a.c", "-c", "a.c"))
	assert.Equal(t, Updated, change)
	assert.Empty(t, db[0].Command)
	assert.Equal(t, []string{"/usr/bin/gcc", "-c", "a.c"}, db[0].Arguments)
}

func TestUpsertKeepsUnknownKeys(t *testing.T) {
	old := entryFor("/p", "a.c", "-O0", "-c", "a.c")
	old.Extra = map[string]json.RawMessage{"note": json.RawMessage(`"kept"`)}
	db := Database{old}
	idx := NewIndex(db)

	db, change := db.Upsert(idx, entryFor("/p", "a.c", "-O2", "-c", "a.c"))
	assert.Equal(t, Updated, change)
	assert.Equal(t, []string{"/usr/bin/gcc", "-O2", "-c", "a.c"}, db[0].Arguments)
	assert.Equal(t, `"kept"`, string(db[0].Extra["note"]))

	same := entryFor("/p", "a.c", "-O2", "-c", "a.c")
	_, change = db.Upsert(idx, same)
	assert.Equal(t, Unchanged, change)
}

func TestEntryEqualConsidersOutput(t *testing.T) {
	a := entryFor("/p", "a.c", "-c", "a.c")
	b := a
	b.Output = "a.o"
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a))
}

func TestArgvWithoutCommand(t *testing.T) {
	_, err := Entry{Directory: "/p", File: "a.c"}.Argv()
	assert.Error(t, err)
}

func TestChangeString(t *testing.T) {
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "updated", Updated.String())
	assert.Equal(t, "unchanged", Unchanged.String())
}
