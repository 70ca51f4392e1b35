package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one connected client lease. Fields behind the mutex are
// mutated from the gateway goroutines.
type Session struct {
	ID string

	mu         sync.RWMutex
	host       string
	userID     string
	admin      bool
	runID      string
	createdAt  time.Time
	lastActive time.Time
}

func newSession(id, host string, now time.Time) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:         id,
		host:       host,
		createdAt:  now,
		lastActive: now,
	}
}

// Host returns the remote host the session was created from.
func (s *Session) Host() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host
}

// SetUserID binds the session to an authenticated account.
func (s *Session) SetUserID(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
}

// GetUserID returns the bound account name, or "" for anonymous sessions.
func (s *Session) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SetAdmin marks the session as administrative.
func (s *Session) SetAdmin(admin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = admin
}

// IsAdminSession reports whether the session holds admin rights.
func (s *Session) IsAdminSession() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

// SetRunID binds the session to its active run.
func (s *Session) SetRunID(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
}

// RunID returns the bound run, or "" when no run is active.
func (s *Session) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

// LastActive returns the last activity timestamp.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
}
