package watchers

import (
	"github.com/gildhall/gildhall-server-go/internal/game/rules"
)

// CardsPlayedWatcher counts cards played in the current turn and keeps a
// run total on the side.
type CardsPlayedWatcher struct {
	count int
	total int
}

// NewCardsPlayedWatcher creates a new cards played watcher.
func NewCardsPlayedWatcher() *CardsPlayedWatcher {
	return &CardsPlayedWatcher{}
}

// Watch implements the Watcher interface.
func (w *CardsPlayedWatcher) Watch(event rules.Event) {
	if event.Type == rules.EventCardPlayed {
		w.count++
		w.total++
	}
}

// Reset clears the per-turn tally. The run total survives.
func (w *CardsPlayedWatcher) Reset() { w.count = 0 }

// Key implements the Watcher interface.
func (w *CardsPlayedWatcher) Key() string { return "CardsPlayedWatcher" }

// Scope resets with the turn.
func (w *CardsPlayedWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeTurn }

// Count returns cards played this turn.
func (w *CardsPlayedWatcher) Count() int { return w.count }

// Total returns cards played over the whole run.
func (w *CardsPlayedWatcher) Total() int { return w.total }

// GoldEarnedWatcher sums gold gained over the whole run, before spending.
type GoldEarnedWatcher struct {
	total int
}

// NewGoldEarnedWatcher creates a new gold earned watcher.
func NewGoldEarnedWatcher() *GoldEarnedWatcher {
	return &GoldEarnedWatcher{}
}

// Watch implements the Watcher interface.
func (w *GoldEarnedWatcher) Watch(event rules.Event) {
	if event.Type == rules.EventGoldGained && event.Amount > 0 {
		w.total += event.Amount
	}
}

// Reset clears the tally.
func (w *GoldEarnedWatcher) Reset() { w.total = 0 }

// Key implements the Watcher interface.
func (w *GoldEarnedWatcher) Key() string { return "GoldEarnedWatcher" }

// Scope accumulates for the whole run.
func (w *GoldEarnedWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeRun }

// Total returns the gold earned so far.
func (w *GoldEarnedWatcher) Total() int { return w.total }

// TreasuresSettledWatcher counts treasures settled and the gold they minted
// over the whole run.
type TreasuresSettledWatcher struct {
	count int
	gold  int
}

// NewTreasuresSettledWatcher creates a new treasures settled watcher.
func NewTreasuresSettledWatcher() *TreasuresSettledWatcher {
	return &TreasuresSettledWatcher{}
}

// Watch implements the Watcher interface.
func (w *TreasuresSettledWatcher) Watch(event rules.Event) {
	if event.Type == rules.EventTreasureSettled {
		w.count++
		w.gold += event.Amount
	}
}

// Reset clears the tally.
func (w *TreasuresSettledWatcher) Reset() {
	w.count = 0
	w.gold = 0
}

// Key implements the Watcher interface.
func (w *TreasuresSettledWatcher) Key() string { return "TreasuresSettledWatcher" }

// Scope accumulates for the whole run.
func (w *TreasuresSettledWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeRun }

// Count returns treasures settled so far.
func (w *TreasuresSettledWatcher) Count() int { return w.count }

// Gold returns the gold minted by settling.
func (w *TreasuresSettledWatcher) Gold() int { return w.gold }

// UnitsLostWatcher counts units killed over the whole run.
type UnitsLostWatcher struct {
	count int
}

// NewUnitsLostWatcher creates a new units lost watcher.
func NewUnitsLostWatcher() *UnitsLostWatcher {
	return &UnitsLostWatcher{}
}

// Watch implements the Watcher interface.
func (w *UnitsLostWatcher) Watch(event rules.Event) {
	if event.Type == rules.EventUnitKilled {
		w.count++
	}
}

// Reset clears the tally.
func (w *UnitsLostWatcher) Reset() { w.count = 0 }

// Key implements the Watcher interface.
func (w *UnitsLostWatcher) Key() string { return "UnitsLostWatcher" }

// Scope accumulates for the whole run.
func (w *UnitsLostWatcher) Scope() rules.WatcherScope { return rules.WatcherScopeRun }

// Count returns units lost so far.
func (w *UnitsLostWatcher) Count() int { return w.count }
