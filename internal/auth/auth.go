package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type tokenEntry struct {
	token   string
	expires time.Time
}

// TokenStore issues single-use, time-limited tokens keyed by account name.
// Password resets use it: a token is mailed out of band and consumed exactly
// once.
type TokenStore struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	tokens map[string]tokenEntry
}

// NewTokenStore creates a token store whose tokens expire after ttl.
func NewTokenStore(ttl time.Duration) *TokenStore {
	return &TokenStore{
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]tokenEntry),
	}
}

// GenerateToken issues a fresh token for name, replacing any outstanding one.
func (s *TokenStore) GenerateToken(name string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[name] = tokenEntry{
		token:   token,
		expires: s.now().Add(s.ttl),
	}
	return token, nil
}

// ConsumeToken redeems the token for name. It reports false for unknown,
// mismatched or expired tokens. A successful consume removes the token.
func (s *TokenStore) ConsumeToken(name, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[name]
	if !ok {
		return false
	}
	if s.now().After(entry.expires) {
		delete(s.tokens, name)
		return false
	}
	if entry.token != token {
		return false
	}
	delete(s.tokens, name)
	return true
}

// Prune drops all expired tokens.
func (s *TokenStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	cutoff := s.now()
	for name, entry := range s.tokens {
		if cutoff.After(entry.expires) {
			delete(s.tokens, name)
			dropped++
		}
	}
	return dropped
}
