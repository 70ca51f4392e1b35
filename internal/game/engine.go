package game

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gildhall/gildhall-server-go/internal/game/effects"
	"github.com/gildhall/gildhall-server-go/internal/game/rules"
	"github.com/gildhall/gildhall-server-go/internal/game/targeting"
)

// ErrNotAwaitingTargets is returned by Resume and CancelTargeting when no
// effect is suspended on a player choice.
var ErrNotAwaitingTargets = errors.New("no targeting request outstanding")

// EngineState tracks where an activation is in its lifecycle.
type EngineState int

const (
	StateIdle EngineState = iota
	StateExpanding
	StateAutoTargeting
	StateAwaitingTarget
	StateDispatching
	StateCompleted
)

var engineStateNames = map[EngineState]string{
	StateIdle:           "IDLE",
	StateExpanding:      "EXPANDING",
	StateAutoTargeting:  "AUTO_TARGETING",
	StateAwaitingTarget: "AWAITING_TARGET",
	StateDispatching:    "DISPATCHING",
	StateCompleted:      "COMPLETED",
}

func (s EngineState) String() string {
	if name, ok := engineStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ENGINE_STATE_%d", int(s))
}

// ActivationRequest starts an effect program: a played card, a town event
// or a scripted source.
type ActivationRequest struct {
	SourceID   string
	SourceName string
	Groups     []effects.ConditionGroup
}

// OutcomeStatus says whether an activation ran to completion or suspended
// on a targeting choice.
type OutcomeStatus int

const (
	OutcomeCompleted OutcomeStatus = iota
	OutcomeAwaitingTarget
)

// Outcome is what the caller gets back from BeginActivation, Resume and
// CancelTargeting. Completed outcomes carry the final result stack;
// suspended ones carry the targeting request the player must answer.
type Outcome struct {
	Status  OutcomeStatus
	Request *targeting.Request
	Results *effects.ResultStack
}

// Completed reports whether the activation has fully resolved.
func (o Outcome) Completed() bool {
	return o.Status == OutcomeCompleted
}

// PendingEffectView previews one queued effect with its speculative
// magnitude. The value shown can differ from the dispatched one when a
// random or state-derived source resolves differently the second time.
type PendingEffectView struct {
	Kind       effects.EffectKind `json:"kind"`
	Value      int                `json:"value"`
	NeedsPick  bool               `json:"needs_pick"`
	MaxTargets int                `json:"max_targets,omitempty"`
}

// pendingEffect is one queued effect awaiting dispatch.
type pendingEffect struct {
	def         effects.Definition
	speculative int
}

// Engine resolves effect programs against the run, one activation at a
// time. Groups are expanded lazily: each group's conditions see the results
// of everything dispatched before it. The engine runs entirely on the
// caller's goroutine; a suspension hands control back through the Outcome
// and Resume picks the drain loop back up.
type Engine struct {
	logger *zap.Logger
	runID  string

	state    effects.StateReader
	economy  EconomyMutator
	deck     DeckMutator
	turn     TurnMutator
	units    UnitMutator
	houses   HousePlacer
	town     TownMutator
	director *rules.EventDirector
	bus      *rules.EventBus
	rng      effects.RNG

	evaluator *effects.Evaluator
	resolver  *effects.Resolver

	engineState EngineState
	sourceID    string
	sourceName  string
	groups      []effects.ConditionGroup
	groupIndex  int
	queue       []pendingEffect
	results     *effects.ResultStack
	awaiting    *targeting.Request
}

// EngineDeps bundles the collaborators an engine works against.
type EngineDeps struct {
	State    effects.StateReader
	Economy  EconomyMutator
	Deck     DeckMutator
	Turn     TurnMutator
	Units    UnitMutator
	Houses   HousePlacer
	Town     TownMutator
	Director *rules.EventDirector
	Bus      *rules.EventBus
	RNG      effects.RNG
}

// NewEngine creates an effect engine for one run.
func NewEngine(runID string, deps EngineDeps, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:      logger,
		runID:       runID,
		state:       deps.State,
		economy:     deps.Economy,
		deck:        deps.Deck,
		turn:        deps.Turn,
		units:       deps.Units,
		houses:      deps.Houses,
		town:        deps.Town,
		director:    deps.Director,
		bus:         deps.Bus,
		rng:         deps.RNG,
		evaluator:   effects.NewEvaluator(logger),
		resolver:    effects.NewResolver(logger),
		engineState: StateIdle,
		results:     effects.NewResultStack(),
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() EngineState {
	return e.engineState
}

// AwaitingRequest returns the outstanding targeting request, if any.
func (e *Engine) AwaitingRequest() *targeting.Request {
	return e.awaiting
}

// Results returns the result stack of the current or last activation.
func (e *Engine) Results() *effects.ResultStack {
	return e.results
}

// PendingPreview lists the queued effects of the in-flight activation with
// their speculative magnitudes.
func (e *Engine) PendingPreview() []PendingEffectView {
	out := make([]PendingEffectView, 0, len(e.queue))
	for _, p := range e.queue {
		out = append(out, PendingEffectView{
			Kind:       p.def.Kind,
			Value:      p.speculative,
			NeedsPick:  targeting.NeedsSelection(p.def.Target),
			MaxTargets: p.def.MaxTargets,
		})
	}
	return out
}

// inFlight reports whether an activation is between start and completion.
func (e *Engine) inFlight() bool {
	return e.engineState != StateIdle && e.engineState != StateCompleted
}

// BeginActivation starts resolving an effect program. If a previous
// activation is still in flight it is abandoned with a warning and the new
// one takes over; the abandoned activation's remaining effects never run.
func (e *Engine) BeginActivation(req ActivationRequest) Outcome {
	if e.inFlight() {
		e.logger.Warn("activation already in flight, overwriting",
			zap.String("run_id", e.runID),
			zap.String("old_source", e.sourceID),
			zap.String("new_source", req.SourceID),
			zap.String("engine_state", e.engineState.String()))
	}

	e.sourceID = req.SourceID
	e.sourceName = req.SourceName
	e.groups = req.Groups
	e.groupIndex = 0
	e.queue = nil
	e.results = effects.NewResultStack()
	e.awaiting = nil
	e.setState(StateExpanding)

	evt := rules.NewEvent(rules.EventActivationStarted, e.runID, req.SourceID, "")
	evt.Data = req.SourceName
	e.publish(evt)

	return e.drain()
}

// Resume answers an outstanding targeting request and continues the
// activation. An invalid selection leaves the engine suspended so the
// player can try again.
func (e *Engine) Resume(selected []string) (Outcome, error) {
	if e.engineState != StateAwaitingTarget || e.awaiting == nil {
		return Outcome{}, ErrNotAwaitingTargets
	}
	if err := targeting.ValidateSelection(e.awaiting, selected); err != nil {
		return Outcome{}, fmt.Errorf("invalid selection: %w", err)
	}

	pending := e.queue[0]
	e.queue = e.queue[1:]
	e.awaiting = nil

	evt := rules.NewEventWithAmount(rules.EventTargetingResolved, e.runID, e.sourceID, "", len(selected))
	e.publish(evt)

	e.dispatch(pending, selected)
	return e.drain(), nil
}

// CancelTargeting abandons the suspended effect. It fails with a zero
// count and the rest of the queue still runs.
func (e *Engine) CancelTargeting() (Outcome, error) {
	if e.engineState != StateAwaitingTarget || e.awaiting == nil {
		return Outcome{}, ErrNotAwaitingTargets
	}

	pending := e.queue[0]
	e.queue = e.queue[1:]
	e.awaiting = nil

	e.publish(rules.NewEvent(rules.EventTargetingCancelled, e.runID, e.sourceID, ""))
	e.record(effects.Result{Kind: pending.def.Kind, Success: false, Count: 0, Value: 0})

	return e.drain(), nil
}

// drain works the queue until it either suspends on a player choice or
// finishes the activation.
func (e *Engine) drain() Outcome {
	for {
		if len(e.queue) == 0 {
			if e.groupIndex >= len(e.groups) {
				return e.complete()
			}
			e.expandNextGroup()
			continue
		}

		pending := e.queue[0]

		if targeting.NeedsSelection(pending.def.Target) {
			candidates := targeting.Candidates(pending.def, e.state)
			if len(candidates) == 0 {
				// Nothing to pick from: skip as a failed effect
				// without a client round trip.
				e.queue = e.queue[1:]
				e.record(effects.Result{Kind: pending.def.Kind, Success: false, Count: 0, Value: 0})
				continue
			}
			e.awaiting = &targeting.Request{
				Source:     e.sourceID,
				Kind:       pending.def.Target,
				CardType:   pending.def.CardType,
				Cap:        targeting.Cap(pending.def, len(candidates)),
				Candidates: candidates,
			}
			e.setState(StateAwaitingTarget)

			evt := rules.NewEventWithAmount(rules.EventTargetingRequired, e.runID, e.sourceID, "", e.awaiting.Cap)
			evt.Data = string(pending.def.Target)
			e.publish(evt)

			return Outcome{Status: OutcomeAwaitingTarget, Request: e.awaiting}
		}

		e.setState(StateAutoTargeting)
		targets := targeting.AutoSelect(pending.def, e.state, e.rng)
		e.queue = e.queue[1:]
		e.dispatch(pending, targets)
	}
}

// expandNextGroup evaluates the next group's conditions against the live
// state and result stack, then queues the chosen branch with speculative
// magnitudes.
func (e *Engine) expandNextGroup() {
	e.setState(StateExpanding)
	group := e.groups[e.groupIndex]
	e.groupIndex++

	branch := group.Effects
	if !e.evaluator.GroupSatisfied(group, e.state, e.results) {
		branch = group.ElseEffects
	}
	for _, def := range branch {
		e.queue = append(e.queue, pendingEffect{
			def:         def,
			speculative: e.resolver.Resolve(def.Amount, def.Value, e.state, e.results, e.rng),
		})
	}
}

// dispatch resolves the authoritative magnitude and executes one effect.
func (e *Engine) dispatch(pending pendingEffect, targets []string) {
	e.setState(StateDispatching)
	value := e.resolver.Resolve(pending.def.Amount, pending.def.Value, e.state, e.results, e.rng)
	result := e.execute(pending.def, value, targets)
	e.record(result)
}

func (e *Engine) record(result effects.Result) {
	e.results.Push(result)

	evt := rules.NewEventWithAmount(rules.EventEffectExecuted, e.runID, e.sourceID, "", result.Value)
	evt.Data = string(result.Kind)
	evt.Flag = result.Success
	e.publish(evt)
}

func (e *Engine) complete() Outcome {
	e.setState(StateCompleted)

	evt := rules.NewEventWithAmount(rules.EventActivationCompleted, e.runID, e.sourceID, "", e.results.Len())
	evt.Data = e.sourceName
	e.publish(evt)

	return Outcome{Status: OutcomeCompleted, Results: e.results}
}

func (e *Engine) setState(next EngineState) {
	e.engineState = next
}

func (e *Engine) publish(evt rules.Event) {
	if e.bus != nil {
		e.bus.Publish(evt)
	}
}
