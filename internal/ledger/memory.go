package ledger

import (
	"context"
	"sync"

	"github.com/sentinelchain/filevault/internal/common"
)

// MemoryStore keeps the ledger in process memory. Used by tests and by
// in-process deployments; mutations are serialized by a single write lock,
// reads share a read lock.
type MemoryStore struct {
	mu     sync.RWMutex
	files  []*FileRecord
	grants []*ShareGrant
	seq    uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, (*memoryTx)(s))
}

func (s *MemoryStore) View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, (*memoryTx)(s))
}

// memoryTx gives the transaction callbacks access to the locked store.
type memoryTx MemoryStore

func cloneFile(r *FileRecord) *FileRecord {
	c := *r
	c.OwnerWrappedKey = append([]byte(nil), r.OwnerWrappedKey...)
	return &c
}

func cloneGrant(g *ShareGrant) *ShareGrant {
	c := *g
	c.WrappedKey = append([]byte(nil), g.WrappedKey...)
	return &c
}

func (t *memoryTx) CreateFile(ctx context.Context, rec *FileRecord) error {
	t.files = append(t.files, cloneFile(rec))
	return nil
}

func (t *memoryTx) FileByID(ctx context.Context, id int64) (*FileRecord, error) {
	if id < 0 || id >= int64(len(t.files)) {
		return nil, common.ErrNotFound
	}
	return cloneFile(t.files[id]), nil
}

func (t *memoryTx) FileCount(ctx context.Context) (int64, error) {
	return int64(len(t.files)), nil
}

func (t *memoryTx) MarkDeleted(ctx context.Context, id int64) error {
	if id < 0 || id >= int64(len(t.files)) {
		return common.ErrNotFound
	}
	t.files[id].Deleted = true
	return nil
}

func (t *memoryTx) FileIDsOwnedBy(ctx context.Context, p Principal) ([]int64, error) {
	var ids []int64
	for _, f := range t.files {
		if f.Owner == p && !f.Deleted {
			ids = append(ids, f.ID)
		}
	}
	return ids, nil
}

func (t *memoryTx) AppendGrant(ctx context.Context, g *ShareGrant) error {
	t.grants = append(t.grants, cloneGrant(g))
	return nil
}

func (t *memoryTx) GrantsByFile(ctx context.Context, fileID int64) ([]*ShareGrant, error) {
	var out []*ShareGrant
	for _, g := range t.grants {
		if g.FileID == fileID {
			out = append(out, cloneGrant(g))
		}
	}
	return out, nil
}

func (t *memoryTx) ActiveGrant(ctx context.Context, fileID int64, grantee Principal) (*ShareGrant, error) {
	for _, g := range t.grants {
		if g.FileID == fileID && g.Grantee == grantee && !g.Revoked {
			return cloneGrant(g), nil
		}
	}
	return nil, common.ErrNotFound
}

func (t *memoryTx) RevokeActiveGrant(ctx context.Context, fileID int64, grantee Principal) error {
	for _, g := range t.grants {
		if g.FileID == fileID && g.Grantee == grantee && !g.Revoked {
			g.Revoked = true
			return nil
		}
	}
	return common.ErrNotFound
}

func (t *memoryTx) FileIDsGrantedTo(ctx context.Context, p Principal) ([]int64, error) {
	var ids []int64
	for _, f := range t.files {
		if f.Deleted {
			continue
		}
		for _, g := range t.grants {
			if g.FileID == f.ID && g.Grantee == p && !g.Revoked {
				ids = append(ids, f.ID)
				break
			}
		}
	}
	return ids, nil
}

func (t *memoryTx) NextSequence(ctx context.Context) (uint64, error) {
	t.seq++
	return t.seq, nil
}
