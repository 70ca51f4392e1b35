package leaderboard

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// maxEntries bounds the in-memory board. When full, a new entry only gets
// in by beating the current worst.
const maxEntries = 500

// Entry is one finished run on the board.
type Entry struct {
	RunID       string
	PlayerName  string
	Score       int
	Turns       int
	GoldEarned  int
	CardsPlayed int
	EndReason   string
	FinishedAt  time.Time
}

// Standing is a player's aggregate across their recorded runs.
type Standing struct {
	PlayerName   string
	BestScore    int
	BestRunID    string
	RunsFinished int
	TotalScore   int
	TotalGold    int
	LastPlayed   time.Time
}

// Manager keeps the in-memory leaderboard for this server process. The
// database run repository is the durable record; this board serves the
// lobby queries.
type Manager struct {
	logger *zap.Logger

	mu        sync.RWMutex
	entries   []Entry
	standings map[string]*Standing
	order     []string
}

// NewManager creates an empty leaderboard.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:    logger,
		standings: make(map[string]*Standing),
	}
}

// Record adds a finished run to the board and folds it into the player's
// standing. Entries with an empty run ID are ignored.
func (m *Manager) Record(entry Entry) {
	if entry.RunID == "" {
		return
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = time.Now()
	}
	if entry.PlayerName == "" {
		entry.PlayerName = "anonymous"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.entries {
		if existing.RunID == entry.RunID {
			return
		}
	}

	if len(m.entries) >= maxEntries {
		worst := m.worstIndex()
		if m.entries[worst].Score >= entry.Score {
			m.foldStanding(entry)
			return
		}
		m.entries[worst] = m.entries[len(m.entries)-1]
		m.entries = m.entries[:len(m.entries)-1]
	}

	m.entries = append(m.entries, entry)
	m.foldStanding(entry)

	m.logger.Info("run recorded on leaderboard",
		zap.String("run_id", entry.RunID),
		zap.String("player", entry.PlayerName),
		zap.Int("score", entry.Score),
		zap.String("end_reason", entry.EndReason),
	)
}

func (m *Manager) worstIndex() int {
	worst := 0
	for i, e := range m.entries {
		if e.Score < m.entries[worst].Score ||
			(e.Score == m.entries[worst].Score && e.FinishedAt.After(m.entries[worst].FinishedAt)) {
			worst = i
		}
	}
	return worst
}

func (m *Manager) foldStanding(entry Entry) {
	standing, ok := m.standings[entry.PlayerName]
	if !ok {
		standing = &Standing{PlayerName: entry.PlayerName}
		m.standings[entry.PlayerName] = standing
		m.order = append(m.order, entry.PlayerName)
	}

	standing.RunsFinished++
	standing.TotalScore += entry.Score
	standing.TotalGold += entry.GoldEarned
	if entry.FinishedAt.After(standing.LastPlayed) {
		standing.LastPlayed = entry.FinishedAt
	}
	if entry.Score > standing.BestScore || standing.BestRunID == "" {
		standing.BestScore = entry.Score
		standing.BestRunID = entry.RunID
	}
}

// Top returns the n highest-scoring runs, best first. Ties go to the
// earlier finish.
func (m *Manager) Top(n int) []Entry {
	m.mu.RLock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].FinishedAt.Before(out[j].FinishedAt)
	})

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Standings returns the per-player aggregates ordered by best score, then
// by who reached it first.
func (m *Manager) Standings(n int) []Standing {
	m.mu.RLock()
	out := make([]Standing, 0, len(m.order))
	for _, name := range m.order {
		if s, ok := m.standings[name]; ok {
			out = append(out, *s)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BestScore > out[j].BestScore
	})

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// PlayerBest returns a player's standing.
func (m *Manager) PlayerBest(playerName string) (Standing, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	standing, ok := m.standings[playerName]
	if !ok {
		return Standing{}, false
	}
	return *standing, true
}

// Size returns the number of recorded runs.
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Reset clears the board for a new season.
func (m *Manager) Reset() {
	m.mu.Lock()
	cleared := len(m.entries)
	m.entries = nil
	m.standings = make(map[string]*Standing)
	m.order = nil
	m.mu.Unlock()

	m.logger.Info("leaderboard reset", zap.Int("entries_cleared", cleared))
}
