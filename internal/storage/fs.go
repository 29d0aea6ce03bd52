package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/sentinelchain/filevault/internal/common"
)

// FSStore keeps blobs on the local filesystem, sharded by the first two hex
// characters of the handle.
type FSStore struct {
	root string
}

// NewFSStore creates the root directory if needed.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o770); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) pathFor(handle string) string {
	return filepath.Join(s.root, handle[:2], handle)
}

func (s *FSStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	handle := HandleFor(data)
	path := s.pathFor(handle)

	if _, err := os.Stat(path); err == nil {
		// Content-addressed: the blob is already there.
		return handle, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return "", fmt.Errorf("creating blob shard: %w", err)
	}

	// Write to a temp name and rename so readers never see partial blobs.
	tmp := path + "." + uuid.NewString()
	if err := os.WriteFile(tmp, data, 0o660); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("publishing blob: %w", err)
	}
	return handle, nil
}

func (s *FSStore) Get(ctx context.Context, handle string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(handle) < 3 {
		return nil, common.ErrNotFound
	}

	data, err := os.ReadFile(s.pathFor(handle))
	if os.IsNotExist(err) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob: %w", err)
	}

	if HandleFor(data) != handle {
		return nil, fmt.Errorf("blob %s failed content verification", handle)
	}
	return data, nil
}
