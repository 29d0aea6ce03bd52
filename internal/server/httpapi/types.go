package httpapi

import (
	"time"

	"github.com/sentinelchain/filevault/internal/ledger"
)

type challengeRequest struct {
	Address string `json:"address"`
}

type challengeResponse struct {
	Nonce string `json:"nonce"`
}

type loginRequest struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	PublicKey []byte `json:"public_key"`
	Signature []byte `json:"signature"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type uploadRequest struct {
	ContentHandle   string `json:"content_handle"`
	EncryptedName   string `json:"encrypted_name"`
	Size            int64  `json:"size"`
	OwnerWrappedKey []byte `json:"owner_wrapped_key"`
}

type receiptResponse struct {
	Sequence  uint64    `json:"sequence"`
	TxID      string    `json:"tx_id"`
	Timestamp time.Time `json:"timestamp"`
}

type fileResponse struct {
	ID            int64     `json:"id"`
	ContentHandle string    `json:"content_handle"`
	Owner         string    `json:"owner"`
	CreatedAt     time.Time `json:"created_at"`
	EncryptedName string    `json:"encrypted_name"`
	Size          int64     `json:"size"`
	WrappedKey    []byte    `json:"wrapped_key"`
}

type uploadResponse struct {
	File    fileResponse    `json:"file"`
	Receipt receiptResponse `json:"receipt"`
}

type listResponse struct {
	IDs []int64 `json:"ids"`
}

type shareRequest struct {
	Grantee    string `json:"grantee"`
	WrappedKey []byte `json:"wrapped_key"`
}

type revokeRequest struct {
	Grantee string `json:"grantee"`
}

type grantResponse struct {
	Grantee   string    `json:"grantee"`
	GrantedAt time.Time `json:"granted_at"`
	Revoked   bool      `json:"revoked"`
	Sequence  int64     `json:"sequence"`
}

type grantsResponse struct {
	Grants []grantResponse `json:"grants"`
}

type registerKeyRequest struct {
	WrapPublicKey []byte `json:"wrap_public_key"`
}

type keyResponse struct {
	Address       string `json:"address"`
	WrapPublicKey []byte `json:"wrap_public_key"`
}

type blobResponse struct {
	Handle string `json:"handle"`
}

type errorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	FileID    *int64 `json:"file_id,omitempty"`
	Principal string `json:"principal,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func newReceiptResponse(r *ledger.Receipt) receiptResponse {
	return receiptResponse{Sequence: r.Sequence, TxID: r.TxID, Timestamp: r.Timestamp}
}

func newFileResponse(v *ledger.FileView) fileResponse {
	return fileResponse{
		ID:            v.ID,
		ContentHandle: v.ContentHandle,
		Owner:         string(v.Owner),
		CreatedAt:     v.CreatedAt,
		EncryptedName: v.EncryptedName,
		Size:          v.Size,
		WrappedKey:    v.WrappedKey,
	}
}
