package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelchain/filevault/internal/common"
)

var secret = []byte("test-secret")

func TestToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("0xaaaa", secret, time.Minute)
	require.NoError(t, err)

	addr, err := AddressFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "0xaaaa", addr)
}

func TestToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("0xaaaa", secret, time.Minute)
	require.NoError(t, err)

	_, err = AddressFromToken(token, []byte("other-secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestToken_Expired(t *testing.T) {
	token, err := GenerateToken("0xaaaa", secret, -time.Minute)
	require.NoError(t, err)

	_, err = AddressFromToken(token, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestToken_Garbage(t *testing.T) {
	_, err := AddressFromToken("not.a.token", secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestChallengeStore_IssueConsume(t *testing.T) {
	s := NewChallengeStore(time.Minute)

	nonce := s.Issue("0xaaaa")
	assert.NotEmpty(t, nonce)

	assert.True(t, s.Consume("0xaaaa", nonce))
	// Single use.
	assert.False(t, s.Consume("0xaaaa", nonce))
}

func TestChallengeStore_WrongAddress(t *testing.T) {
	s := NewChallengeStore(time.Minute)

	nonce := s.Issue("0xaaaa")
	assert.False(t, s.Consume("0xbbbb", nonce))
}

func TestChallengeStore_Expired(t *testing.T) {
	s := NewChallengeStore(time.Minute)

	nonce := s.Issue("0xaaaa")

	// Shift the clock past the validity window.
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.False(t, s.Consume("0xaaaa", nonce))
}

func TestChallengeStore_UnknownNonce(t *testing.T) {
	s := NewChallengeStore(time.Minute)
	assert.False(t, s.Consume("0xaaaa", "no-such-nonce"))
}
