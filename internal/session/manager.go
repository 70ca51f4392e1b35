package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager tracks live sessions and expires the ones that go quiet for
// longer than the lease period.
type Manager struct {
	leasePeriod time.Duration
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager with the given lease period.
func NewManager(leasePeriod time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		leasePeriod: leasePeriod,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// CreateSession registers a session. An empty id draws a fresh UUID. An
// existing session with the same id is replaced.
func (m *Manager) CreateSession(id, host string) *Session {
	sess := newSession(id, host, m.now())

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	total := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("host", host),
		zap.Int("active_sessions", total),
	)

	return sess
}

// GetSession looks up a session by id.
func (m *Manager) GetSession(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// RemoveSession drops a session. Removing an unknown id is a no-op.
func (m *Manager) RemoveSession(id string) {
	m.mu.Lock()
	_, existed := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if existed {
		m.logger.Info("session removed", zap.String("session_id", id))
	}
}

// UpdateActivity renews the lease on a session. It reports whether the
// session exists.
func (m *Manager) UpdateActivity(id string) bool {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	sess.touch(m.now())
	return true
}

// GetActiveSessions returns a snapshot of all live sessions.
func (m *Manager) GetActiveSessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupExpiredSessions expires idle sessions until ctx is cancelled.
// Run it on its own goroutine.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) {
	interval := m.leasePeriod / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *Manager) removeExpired() []string {
	cutoff := m.now().Add(-m.leasePeriod)

	m.mu.Lock()
	var expired []string
	for id, sess := range m.sessions {
		if sess.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.logger.Info("session expired", zap.String("session_id", id))
	}
	return expired
}

// CloseAll drops every session. Called during shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	count := len(m.sessions)
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	m.logger.Info("all sessions closed", zap.Int("count", count))
}
