package cryptox

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/sentinelchain/filevault/internal/common"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	key := NewContentKey()
	plaintext := []byte("hello filevault")

	sealed, err := Seal(key, plaintext)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sealed) <= NonceSize {
		t.Fatalf("sealed payload too short: %d", len(sealed))
	}

	got, err := Open(key, sealed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestSealOpen_RandomProperty(t *testing.T) {
	// Round trip holds for any plaintext and key; a different key must fail.
	for i := 0; i < 50; i++ {
		key := NewContentKey()
		other := NewContentKey()

		size := i * 37
		plaintext := make([]byte, size)
		if _, err := rand.Read(plaintext); err != nil {
			t.Fatalf("rand: %v", err)
		}

		sealed, err := Seal(key, plaintext)
		if err != nil {
			t.Fatalf("seal: %v", err)
		}

		got, err := Open(key, sealed)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatalf("round trip mismatch at size %d", size)
		}

		if _, err := Open(other, sealed); !errors.Is(err, common.ErrAuthenticationFailed) {
			t.Fatalf("expected ErrAuthenticationFailed with wrong key, got %v", err)
		}
	}
}

func TestSeal_FreshNoncePerCall(t *testing.T) {
	key := NewContentKey()
	a, err := Seal(key, []byte("x"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	b, err := Seal(key, []byte("x"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Equal(a[:NonceSize], b[:NonceSize]) {
		t.Fatalf("nonce reused across calls")
	}
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	key := NewContentKey()
	sealed, err := Seal(key, []byte("payload"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	sealed[len(sealed)-1] ^= 0x01

	if _, err := Open(key, sealed); !errors.Is(err, common.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestOpen_Truncated(t *testing.T) {
	key := NewContentKey()
	for _, n := range []int{0, 1, NonceSize - 1, NonceSize} {
		if _, err := Open(key, make([]byte, n)); !errors.Is(err, common.ErrAuthenticationFailed) {
			t.Fatalf("len %d: expected ErrAuthenticationFailed, got %v", n, err)
		}
	}
}

func TestSeal_BadKeyLength(t *testing.T) {
	if _, err := Seal(make([]byte, 16), []byte("x")); !errors.Is(err, common.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Open(make([]byte, 31), []byte("x")); !errors.Is(err, common.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSealStringOpenString_RoundTrip(t *testing.T) {
	key := NewContentKey()

	sealed, err := SealString(key, "annual-report.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := OpenString(key, sealed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "annual-report.pdf" {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestOpenString_NotBase64(t *testing.T) {
	key := NewContentKey()
	if _, err := OpenString(key, "%%% not base64 %%%"); !errors.Is(err, common.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}
