// Package identity provides the signing collaborator: a local Ed25519 wallet
// with a passphrase-protected keystore. Addresses are derived from the public
// key, and signatures are deterministic, which the key-derivation scheme in
// cryptox relies on.
package identity

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
)

// Signer is an authenticated principal capable of producing signatures.
type Signer interface {
	// Address returns the principal's stable address string.
	Address() string
	// Sign produces a signature over message.
	Sign(ctx context.Context, message []byte) ([]byte, error)
}

// AddressFromPublicKey derives the wallet address: "0x" plus the hex of the
// last 20 bytes of SHA-256 over the public key.
func AddressFromPublicKey(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return "0x" + hex.EncodeToString(sum[len(sum)-20:])
}

// VerifySignature checks that sig is a valid signature over message by the
// holder of pub, and that pub corresponds to address.
func VerifySignature(address string, pub ed25519.PublicKey, message, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	if AddressFromPublicKey(pub) != address {
		return false
	}
	return ed25519.Verify(pub, message, sig)
}
