package keys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sentinelchain/filevault/internal/common"
	"github.com/sentinelchain/filevault/internal/dbx"
)

// PostgresRepository implements the key directory over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save upserts the principal's wrap public key. Re-registering replaces the
// previous key; existing grants keep the key they were wrapped with.
func (r *PostgresRepository) Save(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO principal_keys (address, wrap_public_key, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (address)
		DO UPDATE SET wrap_public_key = EXCLUDED.wrap_public_key, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, rec.Address, rec.WrapPublicKey, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting principal key: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, address string) (*Record, error) {
	query := `SELECT address, wrap_public_key, updated_at FROM principal_keys WHERE address = $1`

	var rec Record
	err := r.db.QueryRowContext(ctx, query, address).Scan(&rec.Address, &rec.WrapPublicKey, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting principal key: %w", err)
	}
	return &rec, nil
}
