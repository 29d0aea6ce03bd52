// Package cryptox implements the payload cipher and key-derivation scheme
// used by FileVault: AES-256-GCM sealed payloads with a nonce-prefixed wire
// format, signature-derived symmetric keys, and sealed-box key wrapping for
// grantees.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"github.com/sentinelchain/filevault/internal/common"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce length prefixed to every sealed payload.
	NonceSize = 12
)

// Seal encrypts plaintext under key with AES-256-GCM and returns the sealed
// payload in the wire format [12-byte nonce][ciphertext||tag]. A fresh random
// nonce is drawn from the system CSPRNG on every call; nonces are never
// derived from a counter.
func Seal(key, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrInvalidArgument, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(NonceSize)

	// Sealing in place after the nonce yields the wire format directly.
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a sealed payload produced by Seal. Any failure (wrong key,
// corrupted or truncated input) is reported as the single sentinel
// common.ErrAuthenticationFailed so callers cannot distinguish the cases.
func Open(key, sealed []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrInvalidArgument, KeySize, len(key))
	}
	if len(sealed) < NonceSize {
		return nil, common.ErrAuthenticationFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, sealed[:NonceSize], sealed[NonceSize:], nil)
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}
	return plaintext, nil
}

// SealString encrypts a short string and encodes the sealed payload with
// standard base64 so it can travel through JSON and ledger storage.
func SealString(key []byte, s string) (string, error) {
	sealed, err := Seal(key, []byte(s))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenString reverses SealString. A malformed base64 payload is reported as
// common.ErrAuthenticationFailed, same as a failed tag check.
func OpenString(key []byte, s string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", common.ErrAuthenticationFailed
	}
	plaintext, err := Open(key, sealed)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// NewContentKey returns a fresh random AES-256 content key.
func NewContentKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}
