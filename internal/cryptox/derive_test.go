package cryptox

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/sentinelchain/filevault/internal/common"
)

func testSigner(t *testing.T) SignFunc {
	t.Helper()
	seed := sha256.Sum256([]byte("test wallet seed"))
	priv := ed25519.NewKeyFromSeed(seed[:])
	return func(ctx context.Context, message []byte) ([]byte, error) {
		return ed25519.Sign(priv, message), nil
	}
}

func failingSigner(ctx context.Context, message []byte) ([]byte, error) {
	return nil, errors.New("user rejected the prompt")
}

func TestDeriveContentKey_Deterministic(t *testing.T) {
	ctx := context.Background()
	sign := testSigner(t)

	key1, err := DeriveContentKey(ctx, "0xabc", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key2, err := DeriveContentKey(ctx, "0xabc", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(key1) != KeySize {
		t.Fatalf("expected %d-byte key, got %d", KeySize, len(key1))
	}
	if !bytes.Equal(key1, key2) {
		t.Fatalf("same principal and signer must derive the same key")
	}
}

func TestDeriveContentKey_PrincipalScoped(t *testing.T) {
	ctx := context.Background()
	sign := testSigner(t)

	key1, err := DeriveContentKey(ctx, "0xabc", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key2, err := DeriveContentKey(ctx, "0xdef", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bytes.Equal(key1, key2) {
		t.Fatalf("different principals must derive different keys")
	}
}

func TestDeriveContentKey_SignerUnavailable(t *testing.T) {
	_, err := DeriveContentKey(context.Background(), "0xabc", failingSigner)
	if !errors.Is(err, common.ErrIdentityUnavailable) {
		t.Fatalf("expected ErrIdentityUnavailable, got %v", err)
	}
}

func TestDeriveWrapKeyPair_Deterministic(t *testing.T) {
	ctx := context.Background()
	sign := testSigner(t)

	kp1, err := DeriveWrapKeyPair(ctx, "0xabc", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kp2, err := DeriveWrapKeyPair(ctx, "0xabc", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if kp1.Public != kp2.Public {
		t.Fatalf("wrap key pair must be reproducible from the wallet")
	}
}

func TestDeriveWrapKeyPair_SignerUnavailable(t *testing.T) {
	_, err := DeriveWrapKeyPair(context.Background(), "0xabc", failingSigner)
	if !errors.Is(err, common.ErrIdentityUnavailable) {
		t.Fatalf("expected ErrIdentityUnavailable, got %v", err)
	}
}
