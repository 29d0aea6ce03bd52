package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testEntry(id int64, name string) *Entry {
	return &Entry{
		ID:            id,
		Name:          name,
		Owner:         "0xowner",
		Size:          42,
		ContentHandle: "abcd",
		CreatedAt:     time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		CachedAt:      time.Date(2026, 9, 1, 12, 5, 0, 0, time.UTC),
	}
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, testEntry(1, "one.txt")))

	got, err := r.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "one.txt", got.Name)
	assert.Equal(t, "0xowner", got.Owner)
	assert.Equal(t, int64(42), got.Size)

	// Same id again updates in place.
	updated := testEntry(1, "renamed.txt")
	updated.Size = 99
	require.NoError(t, r.Upsert(ctx, updated))

	got, err = r.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", got.Name)
	assert.Equal(t, int64(99), got.Size)
}

func TestGet_Missing(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Get(context.Background(), 404)
	assert.Error(t, err)
}

func TestList_Ordered(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, testEntry(2, "b")))
	require.NoError(t, r.Upsert(ctx, testEntry(0, "a")))
	require.NoError(t, r.Upsert(ctx, testEntry(1, "c")))

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(0), all[0].ID)
	assert.Equal(t, int64(1), all[1].ID)
	assert.Equal(t, int64(2), all[2].ID)
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, testEntry(1, "x")))
	require.NoError(t, r.Delete(ctx, 1))

	_, err := r.Get(ctx, 1)
	assert.Error(t, err)

	// Deleting again is a no-op.
	require.NoError(t, r.Delete(ctx, 1))
}
