// Package keys stores the public wrap keys principals publish so that owners
// can wrap content keys for them.
package keys

import (
	"context"
	"time"
)

// Record is one principal's published X25519 wrap public key.
type Record struct {
	Address       string
	WrapPublicKey []byte
	UpdatedAt     time.Time
}

// Repository is the principal key directory. Get returns
// common.ErrNotFound for an unknown address.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, address string) (*Record, error)
}
