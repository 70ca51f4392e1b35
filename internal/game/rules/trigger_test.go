package rules

import "testing"

type fixedRoller struct {
	seq []int
	pos int
}

func (r *fixedRoller) Intn(n int) int {
	if n <= 0 || r.pos >= len(r.seq) {
		return 0
	}
	v := r.seq[r.pos] % n
	r.pos++
	return v
}

func TestEventDirectorRollMiss(t *testing.T) {
	d := NewEventDirector(30)
	d.Register(TownEvent{ID: "market_day", Weight: 1})

	// First draw 50 >= 30: no event fires.
	if _, ok := d.Roll(&fixedRoller{seq: []int{50}}); ok {
		t.Fatalf("expected no event on a missed chance roll")
	}
}

func TestEventDirectorWeightedPick(t *testing.T) {
	d := NewEventDirector(100)
	d.Register(TownEvent{ID: "market_day", Weight: 1})
	d.Register(TownEvent{ID: "harvest", Weight: 3})

	// Chance roll 0 hits; pick index 0 lands in market_day's band.
	ev, ok := d.Roll(&fixedRoller{seq: []int{0, 0}})
	if !ok {
		t.Fatalf("expected an event")
	}
	if ev.ID != "market_day" {
		t.Fatalf("expected market_day, got %s", ev.ID)
	}

	// Pick 1..3 land in harvest's band.
	ev, ok = d.Roll(&fixedRoller{seq: []int{0, 2}})
	if !ok || ev.ID != "harvest" {
		t.Fatalf("expected harvest, got %v ok=%v", ev.ID, ok)
	}
}

func TestEventDirectorEligibility(t *testing.T) {
	d := NewEventDirector(100)
	gate := false
	d.Register(TownEvent{ID: "flood", Weight: 1, Eligible: func() bool { return gate }})
	d.Register(TownEvent{ID: "fair", Weight: 1})

	ev, ok := d.Roll(&fixedRoller{seq: []int{0, 0}})
	if !ok || ev.ID != "fair" {
		t.Fatalf("ineligible event must not fire, got %v", ev.ID)
	}

	gate = true
	ev, ok = d.Roll(&fixedRoller{seq: []int{0, 0}})
	if !ok || ev.ID != "flood" {
		t.Fatalf("expected flood once eligible, got %v", ev.ID)
	}
}

func TestEventDirectorZeroChance(t *testing.T) {
	d := NewEventDirector(0)
	d.Register(TownEvent{ID: "fair"})
	if _, ok := d.Roll(&fixedRoller{seq: []int{0, 0}}); ok {
		t.Fatalf("zero chance must never fire")
	}
}

func TestEventDirectorForcedQueue(t *testing.T) {
	d := NewEventDirector(0)
	d.Register(TownEvent{ID: "raid_warning"})
	d.Register(TownEvent{ID: "fair"})

	if _, ok := d.NextForced(); ok {
		t.Fatalf("expected empty forced queue")
	}

	d.Force("fair")
	d.Force("ghost_event") // never registered, should be skipped
	d.Force("raid_warning")

	ev, ok := d.NextForced()
	if !ok || ev.ID != "fair" {
		t.Fatalf("expected fair first, got %v", ev.ID)
	}
	ev, ok = d.NextForced()
	if !ok || ev.ID != "raid_warning" {
		t.Fatalf("expected raid_warning, got %v", ev.ID)
	}
	if _, ok := d.NextForced(); ok {
		t.Fatalf("expected drained forced queue")
	}
}

func TestEventDirectorUnregister(t *testing.T) {
	d := NewEventDirector(100)
	d.Register(TownEvent{ID: "fair", Weight: 1})
	d.Unregister("fair")
	if _, ok := d.Roll(&fixedRoller{seq: []int{0, 0}}); ok {
		t.Fatalf("expected no event after unregister")
	}
	if _, ok := d.Lookup("fair"); ok {
		t.Fatalf("expected lookup miss after unregister")
	}
}
