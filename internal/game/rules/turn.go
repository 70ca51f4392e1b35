package rules

import "fmt"

// Phase represents the phases of one settlement turn. Upkeep applies
// persistent effects and maintenance, Event rolls for a town event, Draw
// refills the hand, Main is when cards are played, End discards and closes
// the turn.
type Phase int

const (
	PhaseUpkeep Phase = iota
	PhaseEvent
	PhaseDraw
	PhaseMain
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseUpkeep: "UPKEEP",
	PhaseEvent:  "EVENT",
	PhaseDraw:   "DRAW",
	PhaseMain:   "MAIN",
	PhaseEnd:    "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// turnSequence is the fixed phase order within a turn.
var turnSequence = []Phase{
	PhaseUpkeep,
	PhaseEvent,
	PhaseDraw,
	PhaseMain,
	PhaseEnd,
}

// TurnManager tracks turn number and phase progression for a single run.
type TurnManager struct {
	orderIndex int
	turnNumber int
}

// NewTurnManager creates a turn manager initialized at turn 1, upkeep.
func NewTurnManager() *TurnManager {
	return &TurnManager{
		orderIndex: 0,
		turnNumber: 1,
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// InMain reports whether cards may currently be played.
func (tm *TurnManager) InMain() bool {
	return tm.CurrentPhase() == PhaseMain
}

// Advance moves to the next phase. When the end of the turn is reached it
// wraps to upkeep, increments the turn number and reports the wrap.
func (tm *TurnManager) Advance() (Phase, bool) {
	tm.orderIndex++
	if tm.orderIndex >= len(turnSequence) {
		tm.orderIndex = 0
		tm.turnNumber++
		return tm.CurrentPhase(), true
	}
	return tm.CurrentPhase(), false
}
