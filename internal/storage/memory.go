package storage

import (
	"context"
	"sync"

	"github.com/sentinelchain/filevault/internal/common"
)

// MemoryStore is an in-memory blob store for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, data []byte) (string, error) {
	handle := HandleFor(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[handle] = append([]byte(nil), data...)
	return handle, nil
}

func (s *MemoryStore) Get(ctx context.Context, handle string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[handle]
	if !ok {
		return nil, common.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}
