package rules

import (
	"sync"
)

// WatcherScope defines how long a watcher's tally lives.
type WatcherScope int

const (
	// WatcherScopeRun accumulates for the whole run.
	WatcherScopeRun WatcherScope = iota
	// WatcherScopeTurn is reset at the end of each turn.
	WatcherScopeTurn
)

// String returns the string representation of the watcher scope.
func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeRun:
		return "RUN"
	case WatcherScopeTurn:
		return "TURN"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes run events and keeps a tally other subsystems can read.
// Scoring and the client view both pull from watchers instead of re-deriving
// counts from event history.
type Watcher interface {
	// Watch is called for every published event; implementations filter.
	Watch(event Event)

	// Reset clears the tally.
	Reset()

	// Key uniquely identifies the watcher within its registry.
	Key() string

	// Scope returns when the registry resets this watcher.
	Scope() WatcherScope
}

// WatcherRegistry manages the watchers of one run. It subscribes itself to
// the bus so individual watchers never touch subscription handles.
type WatcherRegistry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	byScope  map[WatcherScope][]Watcher
}

// NewWatcherRegistry creates an empty watcher registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{
		watchers: make(map[string]Watcher),
		byScope:  make(map[WatcherScope][]Watcher),
	}
}

// Add registers a watcher under its key. Re-adding a key replaces the
// previous watcher.
func (wr *WatcherRegistry) Add(watcher Watcher) {
	if watcher == nil {
		return
	}
	wr.mu.Lock()
	defer wr.mu.Unlock()

	key := watcher.Key()
	if old, ok := wr.watchers[key]; ok {
		wr.removeFromScope(old)
	}
	wr.watchers[key] = watcher
	scope := watcher.Scope()
	wr.byScope[scope] = append(wr.byScope[scope], watcher)
}

// Remove drops a watcher by key.
func (wr *WatcherRegistry) Remove(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	watcher, ok := wr.watchers[key]
	if !ok {
		return
	}
	delete(wr.watchers, key)
	wr.removeFromScope(watcher)
}

func (wr *WatcherRegistry) removeFromScope(watcher Watcher) {
	scope := watcher.Scope()
	watchers := wr.byScope[scope]
	for i, w := range watchers {
		if w.Key() == watcher.Key() {
			wr.byScope[scope] = append(watchers[:i], watchers[i+1:]...)
			break
		}
	}
}

// Get retrieves a watcher by key.
func (wr *WatcherRegistry) Get(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.watchers[key]
}

// ResetScope resets every watcher of the given scope.
func (wr *WatcherRegistry) ResetScope(scope WatcherScope) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, watcher := range wr.byScope[scope] {
		watcher.Reset()
	}
}

// Notify fans an event out to every watcher.
func (wr *WatcherRegistry) Notify(event Event) {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	for _, watcher := range wr.watchers {
		watcher.Watch(event)
	}
}

// Attach subscribes the registry to a bus and returns the handle.
func (wr *WatcherRegistry) Attach(bus *EventBus) int {
	return bus.Subscribe(wr.Notify)
}
