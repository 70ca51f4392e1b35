package game

import (
	"github.com/gildhall/gildhall-server-go/internal/game/effects"
)

// The engine mutates the run only through these interfaces. RunState
// implements all of them; tests substitute the slice they care about.

// EconomyMutator moves gold in and out of the treasury. AddGold with
// applyModifiers runs the gain through the active multiplier, bonus and
// pollution records; DrainGold removes what is there and never goes below
// zero, SpendGold is all-or-nothing for costs.
type EconomyMutator interface {
	AddGold(amount int, applyModifiers bool) int
	DrainGold(amount int) int
	SpendGold(amount int) bool
}

// DeckMutator is the card-zone surface: deck, hand and discard plus the
// treasure operations that act on hand cards.
type DeckMutator interface {
	Draw(n int) int
	DrawUntil(handSize int) int
	Shuffle()
	MoveCard(cardID string, zone effects.MoveZone) bool
	DestroyCard(cardID string) bool
	DuplicateCard(cardID string) bool
	TransformCard(cardID, defID string) bool
	AddCardToDeck(defID string, top bool) bool
	AddCardToHand(defID string) bool
	ReclaimDiscard() bool
	SalvageDiscard() (cards int)
	RevealTop() (effects.CardSnapshot, bool)

	CreateTreasure(grade effects.TreasureGrade) bool
	BoostTreasure(cardID string, amount int) bool
	UpgradeTreasure(cardID string) bool
	SettleTreasures(cardIDs []string) (gold, settled int)
}

// TurnMutator grants extra action points to the current turn.
type TurnMutator interface {
	GrantActions(n int) int
}

// UnitMutator manages the settlement's workforce. Promotion picks the
// lowest-level unit and may leave a job choice pending when the unit's job
// offers more than one advancement.
type UnitMutator interface {
	CreateUnit(jobPool string) (string, bool)
	KillRandomUnit() (string, bool)
	PromoteUnit(levels int) (string, bool)
	DemoteUnit(levels int) (string, bool)
	BoostPower(delta int) int
	AddLoyalty(delta int) int
}

// HousePlacer builds housing and assigns units to free slots.
type HousePlacer interface {
	BuildHouse(slots int) string
	PlaceUnit(unitID string) bool
}

// TownMutator covers settlement-wide records: pollution and the persistent
// effects that upkeep applies each turn.
type TownMutator interface {
	AddPollution(n int) int
	CleansePollution(n int) int
	AddPersistent(kind effects.EffectKind, magnitude, duration int) string
}
