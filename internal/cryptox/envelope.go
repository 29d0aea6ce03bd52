package cryptox

import (
	"crypto/rand"

	"golang.org/x/crypto/nacl/box"

	"github.com/sentinelchain/filevault/internal/common"
)

// WrapKey seals a content key to a recipient's X25519 public key using a NaCl
// anonymous sealed box (ephemeral sender key, Curve25519 + XSalsa20-Poly1305).
// Only the holder of the matching private key can unwrap it; the owner needs
// nothing but the recipient's published public key.
func WrapKey(contentKey []byte, recipientPub *[32]byte) ([]byte, error) {
	return box.SealAnonymous(nil, contentKey, recipientPub, rand.Reader)
}

// UnwrapKey opens a sealed-box wrapped key with the recipient's own key pair.
// Failure is reported as common.ErrAuthenticationFailed regardless of whether
// the wrap was corrupted or addressed to a different key.
func UnwrapKey(wrapped []byte, kp *WrapKeyPair) ([]byte, error) {
	contentKey, ok := box.OpenAnonymous(nil, wrapped, &kp.Public, &kp.private)
	if !ok {
		return nil, common.ErrAuthenticationFailed
	}
	return contentKey, nil
}
