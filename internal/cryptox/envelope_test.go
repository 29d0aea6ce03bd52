package cryptox

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sentinelchain/filevault/internal/common"
)

func TestWrapUnwrapKey_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sign := testSigner(t)

	kp, err := DeriveWrapKeyPair(ctx, "0xgrantee", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contentKey := NewContentKey()
	wrapped, err := WrapKey(contentKey, &kp.Public)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	// A re-derived pair (fresh wallet session) must still unwrap.
	kp2, err := DeriveWrapKeyPair(ctx, "0xgrantee", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := UnwrapKey(wrapped, kp2)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if !bytes.Equal(got, contentKey) {
		t.Fatalf("unwrapped key mismatch")
	}
}

func TestUnwrapKey_WrongRecipient(t *testing.T) {
	ctx := context.Background()
	sign := testSigner(t)

	alice, err := DeriveWrapKeyPair(ctx, "0xalice", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mallory, err := DeriveWrapKeyPair(ctx, "0xmallory", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wrapped, err := WrapKey(NewContentKey(), &alice.Public)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	if _, err := UnwrapKey(wrapped, mallory); !errors.Is(err, common.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestUnwrapKey_Corrupted(t *testing.T) {
	ctx := context.Background()
	sign := testSigner(t)

	kp, err := DeriveWrapKeyPair(ctx, "0xgrantee", sign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wrapped, err := WrapKey(NewContentKey(), &kp.Public)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	wrapped[0] ^= 0x80

	if _, err := UnwrapKey(wrapped, kp); !errors.Is(err, common.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}
