// Package ledger implements the file-access state machine: ownership,
// sharing and revocation of encrypted files, with receipts for every
// mutation. It is the single source of truth for who may decrypt what.
package ledger

import "time"

// Principal is an opaque, comparable identity token (a wallet address).
type Principal string

// ZeroPrincipal is the null identity; never a valid owner or grantee.
const ZeroPrincipal Principal = ""

// FileRecord is the unit of storage accounting. All fields except Deleted are
// immutable after creation; Deleted moves false→true exactly once.
type FileRecord struct {
	// ID is unique and dense, assigned in creation order starting at 0.
	ID int64
	// ContentHandle locates the encrypted blob in content-addressed storage.
	ContentHandle string
	// Owner can never be reassigned.
	Owner Principal
	// CreatedAt is the ledger timestamp of the upload.
	CreatedAt time.Time
	// EncryptedName is the filename sealed under the file's content key,
	// base64-encoded. Anyone able to unwrap the content key can recover it.
	EncryptedName string
	// Size is the byte length of the plaintext original, always > 0.
	Size int64
	// Deleted marks the terminal soft-delete state.
	Deleted bool
	// OwnerWrappedKey is the content key sealed under the owner's derived key.
	OwnerWrappedKey []byte
}

// ShareGrant authorizes one non-owner principal to access one file. Grants
// are append-only history: revocation flips Revoked, a re-share appends a new
// grant with the next Sequence for the same (file, grantee) pair.
type ShareGrant struct {
	FileID  int64
	Grantee Principal
	// WrappedKey is the content key sealed to the grantee's wrap public key.
	WrappedKey []byte
	GrantedAt  time.Time
	Revoked    bool
	// Sequence distinguishes grant generations for the same pair.
	Sequence int64
}

// Receipt is returned by every mutation. The sequence is monotonically
// increasing and used only for audit display, never for correctness.
type Receipt struct {
	Sequence  uint64
	TxID      string
	Timestamp time.Time
}

// FileView is the result of GetFile: record metadata plus the content key
// wrapped for the requesting caller. The owner's wrapped copy is never
// exposed to grantees.
type FileView struct {
	ID            int64
	ContentHandle string
	Owner         Principal
	CreatedAt     time.Time
	EncryptedName string
	Size          int64
	// WrappedKey is OwnerWrappedKey for the owner, the caller's own grant
	// key otherwise.
	WrappedKey []byte
}
