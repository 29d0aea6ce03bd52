package api

import "time"

// UploadRequest registers an already-stored encrypted blob in the ledger.
type UploadRequest struct {
	ContentHandle   string `json:"content_handle"`
	EncryptedName   string `json:"encrypted_name"`
	Size            int64  `json:"size"`
	OwnerWrappedKey []byte `json:"owner_wrapped_key"`
}

// File is a ledger record with the content key wrapped for the caller.
type File struct {
	ID            int64     `json:"id"`
	ContentHandle string    `json:"content_handle"`
	Owner         string    `json:"owner"`
	CreatedAt     time.Time `json:"created_at"`
	EncryptedName string    `json:"encrypted_name"`
	Size          int64     `json:"size"`
	WrappedKey    []byte    `json:"wrapped_key"`
}

// Receipt confirms a ledger mutation.
type Receipt struct {
	Sequence  uint64    `json:"sequence"`
	TxID      string    `json:"tx_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Grant is one entry of a file's share history.
type Grant struct {
	Grantee   string    `json:"grantee"`
	GrantedAt time.Time `json:"granted_at"`
	Revoked   bool      `json:"revoked"`
	Sequence  int64     `json:"sequence"`
}
