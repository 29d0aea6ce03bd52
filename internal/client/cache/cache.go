// Package cache keeps a local SQLite copy of file metadata the principal has
// already fetched and decrypted, so listings work without re-downloading and
// re-decrypting every name. Key material is never cached.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/sentinelchain/filevault/internal/client/cache/migrations"
	"github.com/sentinelchain/filevault/internal/dbx"
)

// Entry is one cached file: ledger metadata plus the decrypted name.
type Entry struct {
	ID            int64
	Name          string
	Owner         string
	Size          int64
	ContentHandle string
	CreatedAt     time.Time
	CachedAt      time.Time
}

// Repository is the local metadata cache.
type Repository interface {
	Upsert(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id int64) (*Entry, error)
	List(ctx context.Context) ([]*Entry, error)
	Delete(ctx context.Context, id int64) error
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the cache database and applies migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e *Entry) error {
	query := `INSERT INTO files (id, name, owner, size, content_handle, created_at, cached_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				owner = excluded.owner,
				size = excluded.size,
				content_handle = excluded.content_handle,
				created_at = excluded.created_at,
				cached_at = excluded.cached_at
	`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.Name, e.Owner, e.Size, e.ContentHandle, e.CreatedAt, e.CachedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Entry, error) {
	query := `SELECT id, name, owner, size, content_handle, created_at, cached_at FROM files WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	e := &Entry{}
	if err := row.Scan(&e.ID, &e.Name, &e.Owner, &e.Size, &e.ContentHandle, &e.CreatedAt, &e.CachedAt); err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*Entry, error) {
	query := `SELECT id, name, owner, size, content_handle, created_at, cached_at FROM files ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error selecting cache entries: %w", err)
	}
	defer rows.Close()

	var result []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.ID, &e.Name, &e.Owner, &e.Size, &e.ContentHandle, &e.CreatedAt, &e.CachedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
