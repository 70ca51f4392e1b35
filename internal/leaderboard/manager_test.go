package leaderboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func entry(runID, player string, score int, finished time.Time) Entry {
	return Entry{
		RunID:      runID,
		PlayerName: player,
		Score:      score,
		Turns:      20,
		FinishedAt: finished,
	}
}

// TestTopOrdersByScoreThenFinishTime records three runs and expects
// score-descending order with the earlier finish winning ties.
func TestTopOrdersByScoreThenFinishTime(t *testing.T) {
	mgr := NewManager(zaptest.NewLogger(t))
	base := time.Now()

	mgr.Record(entry("run-a", "alice", 12, base))
	mgr.Record(entry("run-b", "bob", 30, base.Add(time.Minute)))
	mgr.Record(entry("run-c", "cora", 12, base.Add(-time.Minute)))

	top := mgr.Top(10)
	require.Len(t, top, 3)
	assert.Equal(t, "run-b", top[0].RunID)
	assert.Equal(t, "run-c", top[1].RunID)
	assert.Equal(t, "run-a", top[2].RunID)

	// A smaller n truncates.
	assert.Len(t, mgr.Top(2), 2)
}

// TestDuplicateRunIsIgnored records the same run twice.
func TestDuplicateRunIsIgnored(t *testing.T) {
	mgr := NewManager(zaptest.NewLogger(t))

	mgr.Record(entry("run-a", "alice", 10, time.Now()))
	mgr.Record(entry("run-a", "alice", 99, time.Now()))

	require.Equal(t, 1, mgr.Size())
	standing, ok := mgr.PlayerBest("alice")
	require.True(t, ok)
	assert.Equal(t, 10, standing.BestScore)
	assert.Equal(t, 1, standing.RunsFinished)
}

// TestStandingAggregatesAcrossRuns folds three runs into one player's
// standing.
func TestStandingAggregatesAcrossRuns(t *testing.T) {
	mgr := NewManager(zaptest.NewLogger(t))
	base := time.Now()

	mgr.Record(Entry{RunID: "r1", PlayerName: "alice", Score: 10, GoldEarned: 40, FinishedAt: base})
	mgr.Record(Entry{RunID: "r2", PlayerName: "alice", Score: 25, GoldEarned: 60, FinishedAt: base.Add(time.Hour)})
	mgr.Record(Entry{RunID: "r3", PlayerName: "alice", Score: 18, GoldEarned: 50, FinishedAt: base.Add(2 * time.Hour)})

	standing, ok := mgr.PlayerBest("alice")
	require.True(t, ok)
	assert.Equal(t, 25, standing.BestScore)
	assert.Equal(t, "r2", standing.BestRunID)
	assert.Equal(t, 3, standing.RunsFinished)
	assert.Equal(t, 53, standing.TotalScore)
	assert.Equal(t, 150, standing.TotalGold)
	assert.Equal(t, base.Add(2*time.Hour), standing.LastPlayed)

	_, ok = mgr.PlayerBest("nobody")
	assert.False(t, ok)
}

// TestStandingsRankPlayersByBestScore checks the per-player ordering.
func TestStandingsRankPlayersByBestScore(t *testing.T) {
	mgr := NewManager(zaptest.NewLogger(t))
	base := time.Now()

	mgr.Record(entry("r1", "alice", 10, base))
	mgr.Record(entry("r2", "bob", 30, base))
	mgr.Record(entry("r3", "alice", 20, base))

	standings := mgr.Standings(0)
	require.Len(t, standings, 2)
	assert.Equal(t, "bob", standings[0].PlayerName)
	assert.Equal(t, "alice", standings[1].PlayerName)
	assert.Equal(t, 20, standings[1].BestScore)
}

// TestAnonymousRunsGetAName records an entry without a player.
func TestAnonymousRunsGetAName(t *testing.T) {
	mgr := NewManager(zaptest.NewLogger(t))
	mgr.Record(Entry{RunID: "r1", Score: 5})

	standing, ok := mgr.PlayerBest("anonymous")
	require.True(t, ok)
	assert.Equal(t, 5, standing.BestScore)
}

// TestFullBoardEvictsTheWorstRun fills the board past capacity; a better
// run evicts the worst while a worse one still counts toward standings.
func TestFullBoardEvictsTheWorstRun(t *testing.T) {
	mgr := NewManager(zaptest.NewLogger(t))
	base := time.Now()

	for i := 0; i < maxEntries; i++ {
		mgr.Record(entry(fmt.Sprintf("run-%d", i), "grinder", i+10, base))
	}
	require.Equal(t, maxEntries, mgr.Size())

	// Worse than everything on the board: standings move, board does not.
	mgr.Record(entry("run-low", "lowball", 1, base))
	assert.Equal(t, maxEntries, mgr.Size())
	_, ok := mgr.PlayerBest("lowball")
	assert.True(t, ok)

	// Better than the floor: evicts the current worst.
	mgr.Record(entry("run-high", "highroller", 9999, base))
	assert.Equal(t, maxEntries, mgr.Size())
	top := mgr.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, "run-high", top[0].RunID)
}

// TestResetClearsTheSeason resets and expects an empty board.
func TestResetClearsTheSeason(t *testing.T) {
	mgr := NewManager(zaptest.NewLogger(t))
	mgr.Record(entry("r1", "alice", 10, time.Now()))

	mgr.Reset()
	assert.Equal(t, 0, mgr.Size())
	assert.Empty(t, mgr.Standings(0))
	_, ok := mgr.PlayerBest("alice")
	assert.False(t, ok)
}
