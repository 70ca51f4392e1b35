package game

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/gildhall/gildhall-server-go/internal/content"
	"github.com/gildhall/gildhall-server-go/internal/game/effects"
	"github.com/gildhall/gildhall-server-go/internal/game/rules"
)

// scriptRNG feeds a fixed sequence of values into the engine. An exhausted
// script returns zero, and values are clamped into range so a scripted roll
// can never panic Intn.
type scriptRNG struct {
	rolls []int
	pos   int
}

func (r *scriptRNG) Intn(n int) int {
	v := 0
	if r.pos < len(r.rolls) {
		v = r.rolls[r.pos]
		r.pos++
	}
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// engineHarness wires an Engine against a live RunState and the builtin
// catalog, with a scripted RNG. The harness stands in as the turn
// collaborator and tallies the actions the engine grants.
type engineHarness struct {
	t        *testing.T
	state    *RunState
	engine   *Engine
	bus      *rules.EventBus
	rng      *scriptRNG
	director *rules.EventDirector
	granted  int
}

func newEngineHarness(t *testing.T, rolls ...int) *engineHarness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	catalog := content.BuiltinCatalog(logger)
	bus := rules.NewEventBus()
	rng := &scriptRNG{rolls: rolls}

	h := &engineHarness{t: t, bus: bus, rng: rng}
	h.state = newRunState("run-test", catalog, bus, rng, logger)
	h.director = rules.NewEventDirector(0)
	h.engine = NewEngine("run-test", EngineDeps{
		State:    h.state,
		Economy:  h.state,
		Deck:     h.state,
		Turn:     h,
		Units:    h.state,
		Houses:   h.state,
		Town:     h.state,
		Director: h.director,
		Bus:      bus,
		RNG:      rng,
	}, logger)
	return h
}

// GrantActions implements TurnMutator for the harness.
func (h *engineHarness) GrantActions(n int) int {
	h.granted += n
	return n
}

// activate runs a single unconditional group through the engine.
func (h *engineHarness) activate(defs ...effects.Definition) Outcome {
	return h.activateGroups(effects.ConditionGroup{Effects: defs})
}

func (h *engineHarness) activateGroups(groups ...effects.ConditionGroup) Outcome {
	return h.engine.BeginActivation(ActivationRequest{
		SourceID:   "src-1",
		SourceName: "Test Source",
		Groups:     groups,
	})
}

// giveHandCard stamps a catalog card into hand and returns the instance ID.
func (h *engineHarness) giveHandCard(defID string) string {
	h.t.Helper()
	if !h.state.AddCardToHand(defID) {
		h.t.Fatalf("unknown card definition %q", defID)
	}
	return h.state.hand[len(h.state.hand)-1].ID
}

// seedDeck stacks the deck with catalog cards, top first.
func (h *engineHarness) seedDeck(defIDs ...string) {
	h.t.Helper()
	if err := h.state.seedDeck(defIDs); err != nil {
		h.t.Fatalf("seed deck: %v", err)
	}
}

// giveUnit adds an unhoused unit with the given job straight to the
// workforce.
func (h *engineHarness) giveUnit(jobID string) *Unit {
	h.t.Helper()
	job, ok := h.state.catalog.Job(jobID)
	if !ok {
		h.t.Fatalf("unknown job %q", jobID)
	}
	unit := newUnit(job)
	h.state.units = append(h.state.units, unit)
	return unit
}

func (h *engineHarness) resultAt(i int) effects.Result {
	h.t.Helper()
	all := h.engine.Results().All()
	if i >= len(all) {
		h.t.Fatalf("result stack has %d entries, wanted index %d", len(all), i)
	}
	return all[i]
}

func (h *engineHarness) topResult() effects.Result {
	h.t.Helper()
	top, ok := h.engine.Results().Top()
	if !ok {
		h.t.Fatalf("result stack is empty")
	}
	return top
}

func (h *engineHarness) assertCompleted(outcome Outcome) {
	h.t.Helper()
	if !outcome.Completed() {
		h.t.Fatalf("expected a completed activation, engine is %s", h.engine.State())
	}
	if h.engine.State() != StateCompleted {
		h.t.Fatalf("expected engine state COMPLETED, got %s", h.engine.State())
	}
}

func (h *engineHarness) assertAwaiting(outcome Outcome) {
	h.t.Helper()
	if outcome.Completed() {
		h.t.Fatalf("expected a suspended activation, got a completed one")
	}
	if outcome.Request == nil {
		h.t.Fatalf("suspended outcome carries no targeting request")
	}
	if h.engine.State() != StateAwaitingTarget {
		h.t.Fatalf("expected engine state AWAITING_TARGET, got %s", h.engine.State())
	}
}
