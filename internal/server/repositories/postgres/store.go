// Package postgres provides the PostgreSQL-backed ledger store and schema
// migrations (via goose).
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sentinelchain/filevault/internal/common"
	"github.com/sentinelchain/filevault/internal/dbx"
	"github.com/sentinelchain/filevault/internal/ledger"
	"github.com/sentinelchain/filevault/internal/server/migrations"
)

// Store implements ledger.Store over PostgreSQL. Update runs the callback in
// a read-write transaction, View in a read-only one, so every callback sees a
// consistent snapshot and mutations apply entirely or not at all.
type Store struct {
	db *sql.DB
}

// Open connects via the pgx stdlib driver and pings the server.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// gooseUpContext is a seam for testing RunMigrations.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func (s *Store) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, s.db, ".")
}

func (s *Store) Update(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &pgTx{db: tx})
	})
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	return dbx.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &pgTx{db: tx})
	})
}

// pgTx implements ledger.Tx against a transactional handle.
type pgTx struct {
	db dbx.DBTX
}

func (t *pgTx) CreateFile(ctx context.Context, rec *ledger.FileRecord) error {
	query := `
		INSERT INTO files (id, content_handle, owner, created_at, encrypted_name, size, deleted, owner_wrapped_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := t.db.ExecContext(ctx, query,
		rec.ID, rec.ContentHandle, string(rec.Owner), rec.CreatedAt, rec.EncryptedName, rec.Size, rec.Deleted, rec.OwnerWrappedKey)
	if err != nil {
		return fmt.Errorf("inserting file: %w", err)
	}
	return nil
}

func (t *pgTx) FileByID(ctx context.Context, id int64) (*ledger.FileRecord, error) {
	query := `
		SELECT id, content_handle, owner, created_at, encrypted_name, size, deleted, owner_wrapped_key
		FROM files WHERE id = $1
	`
	var (
		rec   ledger.FileRecord
		owner string
	)
	err := t.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.ContentHandle, &owner, &rec.CreatedAt, &rec.EncryptedName, &rec.Size, &rec.Deleted, &rec.OwnerWrappedKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting file: %w", err)
	}
	rec.Owner = ledger.Principal(owner)
	return &rec, nil
}

func (t *pgTx) FileCount(ctx context.Context) (int64, error) {
	var n int64
	if err := t.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting files: %w", err)
	}
	return n, nil
}

func (t *pgTx) MarkDeleted(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx, `UPDATE files SET deleted = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking file deleted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (t *pgTx) FileIDsOwnedBy(ctx context.Context, p ledger.Principal) ([]int64, error) {
	query := `SELECT id FROM files WHERE owner = $1 AND NOT deleted ORDER BY id`
	return t.selectIDs(ctx, query, string(p))
}

func (t *pgTx) AppendGrant(ctx context.Context, g *ledger.ShareGrant) error {
	query := `
		INSERT INTO share_grants (file_id, grantee, grant_sequence, wrapped_key, granted_at, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := t.db.ExecContext(ctx, query,
		g.FileID, string(g.Grantee), g.Sequence, g.WrappedKey, g.GrantedAt, g.Revoked)
	if err != nil {
		return fmt.Errorf("inserting grant: %w", err)
	}
	return nil
}

func (t *pgTx) GrantsByFile(ctx context.Context, fileID int64) ([]*ledger.ShareGrant, error) {
	query := `
		SELECT file_id, grantee, grant_sequence, wrapped_key, granted_at, revoked
		FROM share_grants WHERE file_id = $1 ORDER BY ord
	`
	rows, err := t.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("selecting grants: %w", err)
	}
	defer rows.Close()

	var out []*ledger.ShareGrant
	for rows.Next() {
		var (
			g       ledger.ShareGrant
			grantee string
		)
		if err := rows.Scan(&g.FileID, &grantee, &g.Sequence, &g.WrappedKey, &g.GrantedAt, &g.Revoked); err != nil {
			return nil, err
		}
		g.Grantee = ledger.Principal(grantee)
		out = append(out, &g)
	}
	return out, rows.Err()
}

func (t *pgTx) ActiveGrant(ctx context.Context, fileID int64, grantee ledger.Principal) (*ledger.ShareGrant, error) {
	query := `
		SELECT file_id, grantee, grant_sequence, wrapped_key, granted_at, revoked
		FROM share_grants WHERE file_id = $1 AND grantee = $2 AND NOT revoked
	`
	var (
		g ledger.ShareGrant
		p string
	)
	err := t.db.QueryRowContext(ctx, query, fileID, string(grantee)).Scan(
		&g.FileID, &p, &g.Sequence, &g.WrappedKey, &g.GrantedAt, &g.Revoked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting active grant: %w", err)
	}
	g.Grantee = ledger.Principal(p)
	return &g, nil
}

func (t *pgTx) RevokeActiveGrant(ctx context.Context, fileID int64, grantee ledger.Principal) error {
	query := `UPDATE share_grants SET revoked = TRUE WHERE file_id = $1 AND grantee = $2 AND NOT revoked`
	res, err := t.db.ExecContext(ctx, query, fileID, string(grantee))
	if err != nil {
		return fmt.Errorf("revoking grant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (t *pgTx) FileIDsGrantedTo(ctx context.Context, p ledger.Principal) ([]int64, error) {
	query := `
		SELECT f.id FROM files f
		JOIN share_grants g ON g.file_id = f.id
		WHERE g.grantee = $1 AND NOT g.revoked AND NOT f.deleted
		ORDER BY f.id
	`
	return t.selectIDs(ctx, query, string(p))
}

func (t *pgTx) NextSequence(ctx context.Context) (uint64, error) {
	var seq uint64
	err := t.db.QueryRowContext(ctx, `UPDATE ledger_seq SET seq = seq + 1 WHERE id = 1 RETURNING seq`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("advancing ledger sequence: %w", err)
	}
	return seq, nil
}

func (t *pgTx) selectIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
