package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gildhall/gildhall-server-go/internal/content"
	"github.com/gildhall/gildhall-server-go/internal/game/actions"
	"github.com/gildhall/gildhall-server-go/internal/game/effects"
	"github.com/gildhall/gildhall-server-go/internal/game/rules"
	"github.com/gildhall/gildhall-server-go/internal/game/watchers"
)

var (
	// ErrRunOver is returned for any play on a finished run.
	ErrRunOver = errors.New("run is over")
	// ErrNotMainPhase is returned when cards are played outside the main phase.
	ErrNotMainPhase = errors.New("not in main phase")
	// ErrCardNotInHand is returned when the played card is not in hand.
	ErrCardNotInHand = errors.New("card not in hand")
	// ErrCannotAfford is returned when the card's cost is not payable.
	ErrCannotAfford = errors.New("cannot pay card cost")
	// ErrTargetingInProgress is returned by EndTurn while a targeting
	// request is outstanding; resolve or cancel it first.
	ErrTargetingInProgress = errors.New("targeting in progress")
)

// RunConfig tunes a settlement run. Zero values fall back to defaults.
type RunConfig struct {
	Seed         int64
	StartingGold int
	HandSize     int
	BaseActions  int
	EventChance  int
	MaxTurns     int
	HouseSlots   int
	StartingDeck []string
}

func (c RunConfig) withDefaults() RunConfig {
	if c.StartingGold <= 0 {
		c.StartingGold = 5
	}
	if c.HandSize <= 0 {
		c.HandSize = 5
	}
	if c.BaseActions <= 0 {
		c.BaseActions = 3
	}
	// Zero means "use the default"; negative disables town events outright.
	if c.EventChance == 0 {
		c.EventChance = 30
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = 20
	}
	if c.HouseSlots <= 0 {
		c.HouseSlots = 2
	}
	if len(c.StartingDeck) == 0 {
		c.StartingDeck = content.StarterDeck()
	}
	return c
}

// RunStats are the tallies the standard watchers keep.
type RunStats struct {
	CardsPlayedThisTurn int `json:"cards_played_this_turn"`
	CardsPlayed         int `json:"cards_played"`
	GoldEarned          int `json:"gold_earned"`
	TreasuresSettled    int `json:"treasures_settled"`
	SettledGold         int `json:"settled_gold"`
	UnitsLost           int `json:"units_lost"`
}

// Run is one player's settlement run: the state, the effect engine, the
// turn clock and the town event director wired together. All public methods
// serialize on the run lock; everything below it is single threaded.
type Run struct {
	mu sync.Mutex

	ID   string
	Seed int64

	logger  *zap.Logger
	cfg     RunConfig
	catalog *content.Catalog

	bus      *rules.EventBus
	rng      *rand.Rand
	state    *RunState
	engine   *Engine
	turns    *rules.TurnManager
	director *rules.EventDirector
	pool     *actions.Pool
	registry *rules.WatcherRegistry
	recorder *RunRecorder

	wPlayed  *watchers.CardsPlayedWatcher
	wGold    *watchers.GoldEarnedWatcher
	wSettled *watchers.TreasuresSettledWatcher
	wLost    *watchers.UnitsLostWatcher

	started         bool
	over            bool
	endReason       string
	eventRolledTurn int

	// Activation bookkeeping: the card instance in flight (empty for town
	// events) and the source identity for the activation log.
	currentCard   string
	currentSource string
	currentName   string
}

// NewRun builds a run from config and catalog. The run does not tick until
// Start is called.
func NewRun(cfg RunConfig, catalog *content.Catalog, logger *zap.Logger) (*Run, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	r := &Run{
		ID:      uuid.NewString(),
		Seed:    cfg.Seed,
		logger:  logger,
		cfg:     cfg,
		catalog: catalog,
		bus:     rules.NewEventBus(),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		turns:   rules.NewTurnManager(),
		pool:    actions.NewPool(cfg.BaseActions),
	}

	r.state = newRunState(r.ID, catalog, r.bus, r.rng, logger)
	if err := r.state.seedDeck(cfg.StartingDeck); err != nil {
		return nil, err
	}
	r.state.Shuffle()
	r.state.BuildHouse(cfg.HouseSlots)
	r.state.AddGold(cfg.StartingGold, false)

	r.director = rules.NewEventDirector(cfg.EventChance)
	r.registerTownEvents()

	r.engine = NewEngine(r.ID, EngineDeps{
		State:    r.state,
		Economy:  r.state,
		Deck:     r.state,
		Turn:     r,
		Units:    r.state,
		Houses:   r.state,
		Town:     r.state,
		Director: r.director,
		Bus:      r.bus,
		RNG:      r.rng,
	}, logger)

	r.recorder = NewRunRecorder(r.ID, logger)

	// Watchers attach after seeding so setup noise never counts.
	r.registry = rules.NewWatcherRegistry()
	r.wPlayed = watchers.NewCardsPlayedWatcher()
	r.wGold = watchers.NewGoldEarnedWatcher()
	r.wSettled = watchers.NewTreasuresSettledWatcher()
	r.wLost = watchers.NewUnitsLostWatcher()
	r.registry.Add(r.wPlayed)
	r.registry.Add(r.wGold)
	r.registry.Add(r.wSettled)
	r.registry.Add(r.wLost)
	r.registry.Attach(r.bus)

	return r, nil
}

// registerTownEvents loads the catalog's events into the director.
// Eligibility conditions close over the live state.
func (r *Run) registerTownEvents() {
	evaluator := effects.NewEvaluator(r.logger)
	empty := effects.NewResultStack()
	for _, def := range r.catalog.Events() {
		conditions := def.Conditions
		r.director.Register(rules.TownEvent{
			ID:     def.ID,
			Name:   def.Name,
			Weight: def.Weight,
			Eligible: func() bool {
				for _, c := range conditions {
					if !evaluator.Evaluate(c, r.state, empty) {
						return false
					}
				}
				return true
			},
		})
	}
}

// Start opens turn one and plays through to the main phase.
func (r *Run) Start() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.over {
		return Outcome{Status: OutcomeCompleted, Results: r.engine.Results()}
	}
	r.started = true

	r.publish(rules.NewEvent(rules.EventRunStarted, r.ID, "", ""))
	r.publish(rules.NewEventWithAmount(rules.EventTurnStarted, r.ID, "", "", 1))
	return r.progress()
}

// PlayCard pays for a hand card and runs its effect program. The returned
// outcome either carries the final result stack or a targeting request the
// player must answer with Resume or CancelTargeting.
func (r *Run) PlayCard(cardID string) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.over {
		return Outcome{}, ErrRunOver
	}
	if !r.turns.InMain() {
		return Outcome{}, ErrNotMainPhase
	}
	card, ok := r.state.cardInHand(cardID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrCardNotInHand, cardID)
	}
	if !actions.CanPay(card.Cost, r.pool, r.state) {
		return Outcome{}, fmt.Errorf("%w: %s needs %s", ErrCannotAfford, card.Name, card.Cost)
	}
	actions.Pay(card.Cost, r.pool, r.state)

	evt := rules.NewEvent(rules.EventCardPlayed, r.ID, card.ID, "")
	evt.Data = card.DefID
	r.publish(evt)

	r.currentCard = card.ID
	r.currentSource = card.ID
	r.currentName = card.Name

	outcome := r.engine.BeginActivation(ActivationRequest{
		SourceID:   card.ID,
		SourceName: card.Name,
		Groups:     card.Groups,
	})
	return r.afterActivation(outcome), nil
}

// Resume answers an outstanding targeting request.
func (r *Run) Resume(selected []string) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.over {
		return Outcome{}, ErrRunOver
	}
	outcome, err := r.engine.Resume(selected)
	if err != nil {
		return Outcome{}, err
	}
	outcome = r.afterActivation(outcome)
	if outcome.Completed() {
		outcome = r.resumePhaseFlow(outcome)
	}
	return outcome, nil
}

// CancelTargeting abandons the suspended effect; the rest of the
// activation still runs.
func (r *Run) CancelTargeting() (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.over {
		return Outcome{}, ErrRunOver
	}
	outcome, err := r.engine.CancelTargeting()
	if err != nil {
		return Outcome{}, err
	}
	outcome = r.afterActivation(outcome)
	if outcome.Completed() {
		outcome = r.resumePhaseFlow(outcome)
	}
	return outcome, nil
}

// ResolvePromotion answers a pending unit job choice.
func (r *Run) ResolvePromotion(unitID, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.over {
		return ErrRunOver
	}
	return r.state.ApplyPromotionChoice(unitID, jobID)
}

// EndTurn closes the main phase and plays through to the next turn's main
// phase (or the end of the run).
func (r *Run) EndTurn() (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.over {
		return Outcome{}, ErrRunOver
	}
	if !r.turns.InMain() {
		return Outcome{}, ErrNotMainPhase
	}
	if r.engine.State() == StateAwaitingTarget {
		return Outcome{}, ErrTargetingInProgress
	}

	phase, _ := r.turns.Advance()
	r.publishPhase(phase)
	return r.progress(), nil
}

// GrantActions implements TurnMutator for the extra_action effect.
func (r *Run) GrantActions(n int) int {
	if n <= 0 {
		return 0
	}
	r.pool.Grant(n)
	r.publish(rules.NewEventWithAmount(rules.EventActionsGranted, r.ID, "", "", n))
	return n
}

// afterActivation handles completion bookkeeping and chains any town
// events forced by trigger_event effects. Forced events fire one at a
// time, each as its own activation, and may themselves suspend.
func (r *Run) afterActivation(outcome Outcome) Outcome {
	for outcome.Completed() {
		r.finishActivation(outcome)
		if r.over {
			return outcome
		}
		ev, ok := r.director.NextForced()
		if !ok {
			return outcome
		}
		outcome = r.fireEvent(ev)
	}
	return outcome
}

func (r *Run) finishActivation(outcome Outcome) {
	if r.currentSource == "" {
		return
	}
	if r.currentCard != "" {
		// The played card discards itself unless an effect already moved
		// or destroyed it.
		if _, still := r.state.cardInHand(r.currentCard); still {
			r.state.MoveCard(r.currentCard, effects.ZoneDiscard)
		}
	}
	r.recorder.Record(ActivationRecord{
		Turn:       r.turns.TurnNumber(),
		SourceID:   r.currentSource,
		SourceName: r.currentName,
		Results:    outcome.Results.All(),
	})
	r.currentCard = ""
	r.currentSource = ""
	r.currentName = ""
}

// fireEvent runs a town event's effect program as its own activation.
func (r *Run) fireEvent(ev rules.TownEvent) Outcome {
	def, ok := r.catalog.Event(ev.ID)
	if !ok {
		r.logger.Warn("town event missing from catalog", zap.String("event_id", ev.ID))
		return Outcome{Status: OutcomeCompleted, Results: r.engine.Results()}
	}

	evt := rules.NewEvent(rules.EventTownEvent, r.ID, ev.ID, "")
	evt.Data = ev.Name
	r.publish(evt)

	r.currentCard = ""
	r.currentSource = ev.ID
	r.currentName = ev.Name

	return r.engine.BeginActivation(ActivationRequest{
		SourceID:   ev.ID,
		SourceName: ev.Name,
		Groups:     def.Groups,
	})
}

// progress drives phases until the main phase, a suspension or the end of
// the run. The main phase itself is player-driven.
func (r *Run) progress() Outcome {
	for !r.over && r.engine.State() != StateAwaitingTarget && !r.turns.InMain() {
		switch r.turns.CurrentPhase() {
		case rules.PhaseUpkeep:
			r.upkeepPhase()
		case rules.PhaseEvent:
			outcome := r.eventPhase()
			if !outcome.Completed() {
				return outcome
			}
		case rules.PhaseDraw:
			r.drawPhase()
		case rules.PhaseEnd:
			r.endPhase()
		}
		if r.over {
			break
		}
		phase, wrapped := r.turns.Advance()
		r.publishPhase(phase)
		if wrapped {
			r.onTurnWrapped()
		}
	}
	if r.engine.State() == StateAwaitingTarget {
		return Outcome{Status: OutcomeAwaitingTarget, Request: r.engine.AwaitingRequest()}
	}
	return Outcome{Status: OutcomeCompleted, Results: r.engine.Results()}
}

// resumePhaseFlow continues phase progression after an event-phase
// suspension resolves mid-turn.
func (r *Run) resumePhaseFlow(outcome Outcome) Outcome {
	if r.turns.InMain() || r.over {
		return outcome
	}
	phase, wrapped := r.turns.Advance()
	r.publishPhase(phase)
	if wrapped {
		r.onTurnWrapped()
	}
	return r.progress()
}

func (r *Run) upkeepPhase() {
	income, upkeep := r.state.ApplyUpkeep()
	if income > 0 || upkeep > 0 {
		r.logger.Debug("upkeep applied",
			zap.String("run_id", r.ID),
			zap.Int("turn", r.turns.TurnNumber()),
			zap.Int("income", income),
			zap.Int("upkeep", upkeep))
	}
}

func (r *Run) eventPhase() Outcome {
	if r.eventRolledTurn == r.turns.TurnNumber() {
		return Outcome{Status: OutcomeCompleted, Results: r.engine.Results()}
	}
	r.eventRolledTurn = r.turns.TurnNumber()

	ev, fired := r.director.Roll(r.rng)
	if !fired {
		return Outcome{Status: OutcomeCompleted, Results: r.engine.Results()}
	}
	return r.afterActivation(r.fireEvent(ev))
}

func (r *Run) drawPhase() {
	need := r.cfg.HandSize - r.state.HandCount()
	if need > r.state.DeckCount() {
		r.state.recycleDiscard()
	}
	r.state.DrawUntil(r.cfg.HandSize)
}

func (r *Run) endPhase() {
	for _, snap := range r.state.Hand() {
		r.state.MoveCard(snap.ID, effects.ZoneDiscard)
	}
	r.publish(rules.NewEventWithAmount(rules.EventTurnEnded, r.ID, "", "", r.turns.TurnNumber()))
}

func (r *Run) onTurnWrapped() {
	turn := r.turns.TurnNumber()
	if turn > r.cfg.MaxTurns {
		r.finish("turn limit reached")
		return
	}
	r.state.SetTurn(turn)
	r.registry.ResetScope(rules.WatcherScopeTurn)
	r.pool.ResetForTurn()
	r.publish(rules.NewEventWithAmount(rules.EventTurnStarted, r.ID, "", "", turn))
}

func (r *Run) finish(reason string) {
	if r.over {
		return
	}
	r.over = true
	r.endReason = reason

	evt := rules.NewEventWithAmount(rules.EventRunEnded, r.ID, "", "", r.state.Score())
	evt.Data = reason
	r.publish(evt)

	r.logger.Info("run finished",
		zap.String("run_id", r.ID),
		zap.String("reason", reason),
		zap.Int("score", r.state.Score()),
		zap.Int("turns", r.turns.TurnNumber()))
}

func (r *Run) publish(evt rules.Event) {
	r.bus.Publish(evt)
}

func (r *Run) publishPhase(phase rules.Phase) {
	evt := rules.NewEvent(rules.EventPhaseChanged, r.ID, "", "")
	evt.Data = phase.String()
	r.publish(evt)
}

// --- read accessors ---

// Abandon finishes the run early at its current score.
func (r *Run) Abandon() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finish("abandoned")
}

// Bus exposes the run's event bus for push subscribers.
func (r *Run) Bus() *rules.EventBus { return r.bus }

// Recorder exposes the activation log.
func (r *Run) Recorder() *RunRecorder { return r.recorder }

// Over reports whether the run has finished.
func (r *Run) Over() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.over
}

// EndReason returns why the run finished, empty while it is live.
func (r *Run) EndReason() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endReason
}

// Score returns the current run score.
func (r *Run) Score() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Score()
}

// Stats returns the watcher tallies.
func (r *Run) Stats() RunStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunStats{
		CardsPlayedThisTurn: r.wPlayed.Count(),
		CardsPlayed:         r.wPlayed.Total(),
		GoldEarned:          r.wGold.Total(),
		TreasuresSettled:    r.wSettled.Count(),
		SettledGold:         r.wSettled.Gold(),
		UnitsLost:           r.wLost.Count(),
	}
}

// View builds the full client view of the run.
func (r *Run) View() *RunView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return buildRunView(r)
}

// Snapshot captures the run state for persistence.
func (r *Run) Snapshot() *RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return buildSnapshot(r)
}
