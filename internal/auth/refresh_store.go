package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// RefreshStore issues and redeems opaque refresh tokens. Tokens live in
// process memory only: a restart invalidates all outstanding refresh tokens,
// which matches the fixed-validity in-memory token store this server is
// modeled on. Only the SHA-256 hash of a token is retained.
type RefreshStore struct {
	mu       sync.Mutex
	tokens   map[string]refreshEntry
	validity time.Duration
	now      func() time.Time
}

type refreshEntry struct {
	accountID string
	expiresAt time.Time
}

func NewRefreshStore(validity time.Duration) *RefreshStore {
	return &RefreshStore{
		tokens:   map[string]refreshEntry{},
		validity: validity,
		now:      time.Now,
	}
}

// Issue mints a refresh token bound to accountID and returns the plaintext
// token exactly once.
func (s *RefreshStore) Issue(accountID string) (string, error) {
	if accountID == "" {
		return "", ErrInvalidToken
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[hashToken(token)] = refreshEntry{
		accountID: accountID,
		expiresAt: s.now().Add(s.validity),
	}
	return token, nil
}

// Redeem consumes a refresh token and returns the bound account id. A token
// redeems at most once; expired and unknown tokens both fail with
// ErrInvalidToken.
func (s *RefreshStore) Redeem(token string) (string, error) {
	key := hashToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[key]
	if !ok {
		return "", ErrInvalidToken
	}
	delete(s.tokens, key)

	if s.now().After(entry.expiresAt) {
		return "", ErrInvalidToken
	}
	return entry.accountID, nil
}

// Purge drops expired entries. Called opportunistically by the token
// endpoint; there is no background sweeper.
func (s *RefreshStore) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.tokens {
		if now.After(entry.expiresAt) {
			delete(s.tokens, key)
		}
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
