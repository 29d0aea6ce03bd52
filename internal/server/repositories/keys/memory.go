package keys

import (
	"context"
	"sync"

	"github.com/sentinelchain/filevault/internal/common"
)

// MemoryRepository is an in-memory key directory for tests and in-process
// deployments.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]*Record)}
}

func (r *MemoryRepository) Save(ctx context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *rec
	c.WrapPublicKey = append([]byte(nil), rec.WrapPublicKey...)
	r.records[rec.Address] = &c
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, address string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[address]
	if !ok {
		return nil, common.ErrNotFound
	}
	c := *rec
	c.WrapPublicKey = append([]byte(nil), rec.WrapPublicKey...)
	return &c, nil
}
