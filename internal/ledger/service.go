package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelchain/filevault/internal/common"
)

// Service is the access-ledger state machine. Every mutation is atomic: all
// preconditions are checked before any state is written, and mutations are
// applied in a single total order (one mutation at a time across the ledger).
// Reads run concurrently against consistent snapshots.
type Service struct {
	store Store
	// mu funnels all mutating operations through one sequential apply path.
	mu  sync.Mutex
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a ledger over the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func opErr(op string, id int64, p Principal, err error) error {
	return &common.OpError{Op: op, FileID: id, Principal: string(p), Err: err}
}

func (s *Service) receipt(ctx context.Context, tx Tx) (*Receipt, error) {
	seq, err := tx.NextSequence(ctx)
	if err != nil {
		return nil, err
	}
	return &Receipt{Sequence: seq, TxID: uuid.NewString(), Timestamp: s.now()}, nil
}

// Upload creates a new FileRecord owned by caller and returns it with the
// mutation receipt. IDs are dense and assigned in creation order.
func (s *Service) Upload(ctx context.Context, caller Principal, contentHandle, encryptedName string, size int64, ownerWrappedKey []byte) (*FileRecord, *Receipt, error) {
	const op = "upload"

	switch {
	case caller == ZeroPrincipal:
		return nil, nil, opErr(op, -1, caller, fmt.Errorf("%w: missing caller identity", common.ErrInvalidArgument))
	case contentHandle == "":
		return nil, nil, opErr(op, -1, caller, fmt.Errorf("%w: empty content handle", common.ErrInvalidArgument))
	case encryptedName == "":
		return nil, nil, opErr(op, -1, caller, fmt.Errorf("%w: empty encrypted name", common.ErrInvalidArgument))
	case size <= 0:
		return nil, nil, opErr(op, -1, caller, fmt.Errorf("%w: size must be positive, got %d", common.ErrInvalidArgument, size))
	case len(ownerWrappedKey) == 0:
		return nil, nil, opErr(op, -1, caller, fmt.Errorf("%w: empty owner wrapped key", common.ErrInvalidArgument))
	}

	var (
		rec *FileRecord
		rcp *Receipt
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		id, err := tx.FileCount(ctx)
		if err != nil {
			return err
		}
		rec = &FileRecord{
			ID:              id,
			ContentHandle:   contentHandle,
			Owner:           caller,
			CreatedAt:       s.now(),
			EncryptedName:   encryptedName,
			Size:            size,
			OwnerWrappedKey: ownerWrappedKey,
		}
		if err := tx.CreateFile(ctx, rec); err != nil {
			return err
		}
		rcp, err = s.receipt(ctx, tx)
		return err
	})
	if err != nil {
		return nil, nil, opErr(op, -1, caller, err)
	}
	return rec, rcp, nil
}

// GetFile returns the record with the content key wrapped for caller. The
// owner receives the owner copy, a grantee receives its own grant key.
func (s *Service) GetFile(ctx context.Context, caller Principal, id int64) (*FileView, error) {
	const op = "getFile"

	var view *FileView
	err := s.store.View(ctx, func(ctx context.Context, tx Tx) error {
		rec, err := tx.FileByID(ctx, id)
		if err != nil {
			return err
		}
		if rec.Deleted {
			return common.ErrFileDeleted
		}

		var wrapped []byte
		switch {
		case rec.Owner == caller:
			wrapped = rec.OwnerWrappedKey
		default:
			grant, err := tx.ActiveGrant(ctx, id, caller)
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrAccessDenied
			}
			if err != nil {
				return err
			}
			wrapped = grant.WrappedKey
		}

		view = &FileView{
			ID:            rec.ID,
			ContentHandle: rec.ContentHandle,
			Owner:         rec.Owner,
			CreatedAt:     rec.CreatedAt,
			EncryptedName: rec.EncryptedName,
			Size:          rec.Size,
			WrappedKey:    wrapped,
		}
		return nil
	})
	if err != nil {
		return nil, opErr(op, id, caller, err)
	}
	return view, nil
}

// ListMine returns all non-deleted file ids the caller owns or holds an
// active grant on, ascending.
func (s *Service) ListMine(ctx context.Context, caller Principal) ([]int64, error) {
	const op = "listMine"

	var ids []int64
	err := s.store.View(ctx, func(ctx context.Context, tx Tx) error {
		owned, err := tx.FileIDsOwnedBy(ctx, caller)
		if err != nil {
			return err
		}
		granted, err := tx.FileIDsGrantedTo(ctx, caller)
		if err != nil {
			return err
		}
		ids = append(owned, granted...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		return nil
	})
	if err != nil {
		return nil, opErr(op, -1, caller, err)
	}
	return ids, nil
}

// Share grants grantee access to the file by recording the content key
// wrapped for them. Exactly one active grant may exist per (file, grantee).
func (s *Service) Share(ctx context.Context, caller Principal, id int64, grantee Principal, wrappedKey []byte) (*Receipt, error) {
	const op = "share"

	var rcp *Receipt

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		rec, err := tx.FileByID(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case rec.Deleted:
			return common.ErrFileDeleted
		case rec.Owner != caller:
			return common.ErrNotOwner
		case grantee == ZeroPrincipal:
			return common.ErrInvalidGrantee
		case grantee == rec.Owner:
			return common.ErrSelfShare
		case len(wrappedKey) == 0:
			return fmt.Errorf("%w: empty wrapped key", common.ErrInvalidArgument)
		}

		if _, err := tx.ActiveGrant(ctx, id, grantee); err == nil {
			return common.ErrAlreadyShared
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		// The next generation for this pair continues the audit history.
		history, err := tx.GrantsByFile(ctx, id)
		if err != nil {
			return err
		}
		var seq int64
		for _, g := range history {
			if g.Grantee == grantee {
				seq++
			}
		}

		if err := tx.AppendGrant(ctx, &ShareGrant{
			FileID:     id,
			Grantee:    grantee,
			WrappedKey: wrappedKey,
			GrantedAt:  s.now(),
			Sequence:   seq,
		}); err != nil {
			return err
		}
		rcp, err = s.receipt(ctx, tx)
		return err
	})
	if err != nil {
		return nil, opErr(op, id, grantee, err)
	}
	return rcp, nil
}

// RevokeAccess permanently revokes grantee's active grant. Restoring access
// requires a brand-new Share with a freshly wrapped key.
func (s *Service) RevokeAccess(ctx context.Context, caller Principal, id int64, grantee Principal) (*Receipt, error) {
	const op = "revokeAccess"

	var rcp *Receipt

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		rec, err := tx.FileByID(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case rec.Deleted:
			return common.ErrFileDeleted
		case rec.Owner != caller:
			return common.ErrNotOwner
		}

		if _, err := tx.ActiveGrant(ctx, id, grantee); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrNoSuchGrant
			}
			return err
		}
		if err := tx.RevokeActiveGrant(ctx, id, grantee); err != nil {
			return err
		}
		rcp, err = s.receipt(ctx, tx)
		return err
	})
	if err != nil {
		return nil, opErr(op, id, grantee, err)
	}
	return rcp, nil
}

// Delete soft-deletes the record. The record is never physically destroyed;
// grant history stays in place for audit.
func (s *Service) Delete(ctx context.Context, caller Principal, id int64) (*Receipt, error) {
	const op = "delete"

	var rcp *Receipt

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Update(ctx, func(ctx context.Context, tx Tx) error {
		rec, err := tx.FileByID(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case rec.Deleted:
			return common.ErrAlreadyDeleted
		case rec.Owner != caller:
			return common.ErrNotOwner
		}

		if err := tx.MarkDeleted(ctx, id); err != nil {
			return err
		}
		rcp, err = s.receipt(ctx, tx)
		return err
	})
	if err != nil {
		return nil, opErr(op, id, caller, err)
	}
	return rcp, nil
}

// ListGrants returns the file's full grant history, including revoked
// entries, in insertion order. Owner only. The history of a deleted file
// remains readable for audit.
func (s *Service) ListGrants(ctx context.Context, caller Principal, id int64) ([]*ShareGrant, error) {
	const op = "listGrants"

	var grants []*ShareGrant
	err := s.store.View(ctx, func(ctx context.Context, tx Tx) error {
		rec, err := tx.FileByID(ctx, id)
		if err != nil {
			return err
		}
		if rec.Owner != caller {
			return common.ErrNotOwner
		}
		grants, err = tx.GrantsByFile(ctx, id)
		return err
	})
	if err != nil {
		return nil, opErr(op, id, caller, err)
	}
	return grants, nil
}
