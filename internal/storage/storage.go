// Package storage implements the content-addressed blob store the
// coordinators use for encrypted payloads. Handles are the hex SHA-256 of
// the stored bytes, so a blob can always be re-addressed from its content
// and duplicate uploads collapse to one object.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Store is the blob store collaborator: put bytes, get bytes by handle.
// Implementations return common.ErrNotFound for an unknown handle.
type Store interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, handle string) ([]byte, error)
}

// HandleFor computes the content handle for data.
func HandleFor(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
