package rules

import (
	"sync"

	"github.com/google/uuid"
)

// Roller is the slice of randomness the director needs.
type Roller interface {
	Intn(n int) int
}

// TownEvent is a registered settlement event. Eligible gates whether it can
// fire right now; a nil check means always eligible. Weight biases the
// weighted roll, zero counts as 1.
type TownEvent struct {
	ID       string
	Name     string
	Weight   int
	Eligible func() bool
}

// EventDirector owns the pool of town events. During the event phase the run
// rolls against fireChance and, on a hit, draws one weighted eligible event.
// Effects can also force a specific event; forced events fire after the
// activation that queued them completes, never inside it.
type EventDirector struct {
	mu         sync.Mutex
	events     map[string]TownEvent
	order      []string // registration order, keeps rolls deterministic
	forced     []string
	fireChance int
}

// NewEventDirector creates a director. fireChance is the percent chance per
// event phase that any event fires.
func NewEventDirector(fireChance int) *EventDirector {
	if fireChance < 0 {
		fireChance = 0
	}
	if fireChance > 100 {
		fireChance = 100
	}
	return &EventDirector{
		events:     make(map[string]TownEvent),
		fireChance: fireChance,
	}
}

// Register adds an event to the pool and returns its ID.
func (d *EventDirector) Register(ev TownEvent) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if _, exists := d.events[ev.ID]; !exists {
		d.order = append(d.order, ev.ID)
	}
	d.events[ev.ID] = ev
	return ev.ID
}

// Unregister removes an event from the pool.
func (d *EventDirector) Unregister(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.events[id]; !exists {
		return
	}
	delete(d.events, id)
	for i, oid := range d.order {
		if oid == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// Lookup returns a registered event by ID.
func (d *EventDirector) Lookup(id string) (TownEvent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ev, ok := d.events[id]
	return ev, ok
}

// Force queues a specific event to fire once the current activation is done.
func (d *EventDirector) Force(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forced = append(d.forced, id)
}

// NextForced pops the oldest forced event, if any.
func (d *EventDirector) NextForced() (TownEvent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.forced) > 0 {
		id := d.forced[0]
		d.forced = d.forced[1:]
		if ev, ok := d.events[id]; ok {
			return ev, true
		}
		// Unknown forced IDs are dropped; content referenced an event
		// that never got registered.
	}
	return TownEvent{}, false
}

// Roll decides whether an event fires this phase and which one. Eligibility
// is evaluated in registration order so a seeded roller replays identically.
func (d *EventDirector) Roll(rng Roller) (TownEvent, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fireChance <= 0 || len(d.order) == 0 {
		return TownEvent{}, false
	}
	if rng.Intn(100) >= d.fireChance {
		return TownEvent{}, false
	}

	var (
		eligible []TownEvent
		total    int
	)
	for _, id := range d.order {
		ev := d.events[id]
		if ev.Eligible != nil && !ev.Eligible() {
			continue
		}
		w := ev.Weight
		if w <= 0 {
			w = 1
		}
		total += w
		eligible = append(eligible, ev)
	}
	if total == 0 {
		return TownEvent{}, false
	}

	pick := rng.Intn(total)
	for _, ev := range eligible {
		w := ev.Weight
		if w <= 0 {
			w = 1
		}
		pick -= w
		if pick < 0 {
			return ev, true
		}
	}
	return TownEvent{}, false
}
