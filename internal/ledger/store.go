package ledger

import "context"

// Tx is the transactional view of ledger state used by the service. All
// reads return records in insertion order; implementations report a missing
// record with common.ErrNotFound.
type Tx interface {
	// CreateFile persists a new record. The service assigns the dense ID.
	CreateFile(ctx context.Context, rec *FileRecord) error
	// FileByID returns the record or common.ErrNotFound.
	FileByID(ctx context.Context, id int64) (*FileRecord, error)
	// FileCount returns the number of records ever created, which is also
	// the next dense ID.
	FileCount(ctx context.Context) (int64, error)
	// MarkDeleted flips the record's Deleted flag.
	MarkDeleted(ctx context.Context, id int64) error
	// FileIDsOwnedBy lists non-deleted ids owned by p, ascending.
	FileIDsOwnedBy(ctx context.Context, p Principal) ([]int64, error)

	// AppendGrant appends a grant to the history.
	AppendGrant(ctx context.Context, g *ShareGrant) error
	// GrantsByFile returns the full grant history, insertion order.
	GrantsByFile(ctx context.Context, fileID int64) ([]*ShareGrant, error)
	// ActiveGrant returns the non-revoked grant for (fileID, grantee), or
	// common.ErrNotFound.
	ActiveGrant(ctx context.Context, fileID int64, grantee Principal) (*ShareGrant, error)
	// RevokeActiveGrant flips Revoked on the active grant for the pair.
	RevokeActiveGrant(ctx context.Context, fileID int64, grantee Principal) error
	// FileIDsGrantedTo lists non-deleted ids p holds an active grant on,
	// ascending.
	FileIDsGrantedTo(ctx context.Context, p Principal) ([]int64, error)

	// NextSequence advances and returns the monotonic receipt sequence.
	NextSequence(ctx context.Context) (uint64, error)
}

// Store provides atomic access to ledger state. Update runs fn in a
// transaction that is applied entirely or not at all; View runs fn against a
// consistent snapshot and may execute concurrently with other views.
type Store interface {
	Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
