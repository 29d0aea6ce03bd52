package cryptox

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"github.com/sentinelchain/filevault/internal/common"
)

// SignFunc obtains a signature over message from the identity collaborator.
// Implementations must use a deterministic signature scheme: the same
// principal and signing key must always produce the same signature for the
// fixed derivation messages below, otherwise derived keys are not
// reproducible.
type SignFunc func(ctx context.Context, message []byte) ([]byte, error)

const (
	contentKeyMessage = "FileVault Encryption Key for %s"
	wrapKeyMessage    = "FileVault Key Exchange for %s"
)

// DeriveContentKey turns a signature over a fixed, principal-scoped message
// into a 32-byte AES key: SHA-256 over the signature bytes. The signed
// message is constant and used for nothing else, so reuse of the signature is
// confined to this derivation.
//
// Fails with common.ErrIdentityUnavailable when the signer cannot produce a
// signature (unreachable wallet, user rejected the prompt).
func DeriveContentKey(ctx context.Context, principal string, sign SignFunc) ([]byte, error) {
	msg := fmt.Sprintf(contentKeyMessage, principal)
	sig, err := sign(ctx, []byte(msg))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIdentityUnavailable, err)
	}
	sum := sha256.Sum256(sig)
	return sum[:], nil
}

// WrapKeyPair is an X25519 key pair used as the wrapping target for keys
// shared with this principal. The private half never leaves the process.
type WrapKeyPair struct {
	Public  [32]byte
	private [32]byte
}

// Wipe zeroes the private half.
func (kp *WrapKeyPair) Wipe() {
	common.WipeByteArray(kp.private[:])
}

// DeriveWrapKeyPair derives the principal's X25519 wrap key pair from a
// signature over a second fixed message. Because the signature scheme is
// deterministic the pair is reproducible from the wallet alone: the public
// half is published through the ledger's key directory, and a grantee
// re-derives the private half whenever a wrapped key must be opened.
func DeriveWrapKeyPair(ctx context.Context, principal string, sign SignFunc) (*WrapKeyPair, error) {
	msg := fmt.Sprintf(wrapKeyMessage, principal)
	sig, err := sign(ctx, []byte(msg))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIdentityUnavailable, err)
	}
	seed := sha256.Sum256(sig)

	pub, priv, err := box.GenerateKey(bytes.NewReader(seed[:]))
	if err != nil {
		return nil, err
	}
	kp := &WrapKeyPair{Public: *pub, private: *priv}
	common.WipeByteArray(seed[:])
	return kp, nil
}
