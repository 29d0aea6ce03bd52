package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChallengeMessage is the text the wallet signs to prove control of an
// address. The nonce makes every login signature unique.
func ChallengeMessage(nonce string) []byte {
	return []byte("FileVault Login Challenge: " + nonce)
}

type challenge struct {
	address   string
	expiresAt time.Time
}

// ChallengeStore issues single-use login nonces with a bounded lifetime.
type ChallengeStore struct {
	mu       sync.Mutex
	pending  map[string]challenge
	validity time.Duration
	now      func() time.Time
}

func NewChallengeStore(validity time.Duration) *ChallengeStore {
	return &ChallengeStore{
		pending:  make(map[string]challenge),
		validity: validity,
		now:      time.Now,
	}
}

// Issue creates a nonce bound to address.
func (s *ChallengeStore) Issue(address string) string {
	nonce := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop expired entries opportunistically so the map stays bounded.
	now := s.now()
	for n, c := range s.pending {
		if now.After(c.expiresAt) {
			delete(s.pending, n)
		}
	}

	s.pending[nonce] = challenge{address: address, expiresAt: now.Add(s.validity)}
	return nonce
}

// Consume removes the nonce and reports whether it was outstanding for
// address and still valid. A nonce can be consumed at most once.
func (s *ChallengeStore) Consume(address, nonce string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.pending[nonce]
	if !ok {
		return false
	}
	delete(s.pending, nonce)

	return c.address == address && !s.now().After(c.expiresAt)
}
