package game

import (
	"github.com/google/uuid"

	"github.com/gildhall/gildhall-server-go/internal/content"
	"github.com/gildhall/gildhall-server-go/internal/game/actions"
	"github.com/gildhall/gildhall-server-go/internal/game/counters"
	"github.com/gildhall/gildhall-server-go/internal/game/effects"
)

// Card is a live card instance in one of the run's zones. Definition fields
// are copied in at stamp time so a later catalog reload cannot change cards
// mid-run.
type Card struct {
	ID        string
	DefID     string
	Name      string
	Type      effects.CardType
	Grade     effects.TreasureGrade
	BaseValue int
	Cost      actions.Cost
	Groups    []effects.ConditionGroup
	Counters  *counters.Counters
}

func newCard(def *content.CardDefinition) *Card {
	return &Card{
		ID:        uuid.NewString(),
		DefID:     def.ID,
		Name:      def.Name,
		Type:      def.Type,
		Grade:     def.Grade,
		BaseValue: def.GoldValue,
		Cost:      def.Cost,
		Groups:    def.Groups,
		Counters:  counters.NewCounters(),
	}
}

// IsTreasure reports whether the card is a treasure.
func (c *Card) IsTreasure() bool {
	return c.Type == effects.CardTreasure
}

// Boost returns the boost counters stacked on the card.
func (c *Card) Boost() int {
	return c.Counters.Count(counters.CounterBoost)
}

// GoldValue is the card's settle value: printed value plus boosts.
func (c *Card) GoldValue() int {
	return c.BaseValue + c.Boost()
}

// Snapshot produces the read-only view conditions and targeting see.
func (c *Card) Snapshot() effects.CardSnapshot {
	return effects.CardSnapshot{
		ID:        c.ID,
		DefID:     c.DefID,
		Name:      c.Name,
		Type:      c.Type,
		Grade:     c.Grade,
		GoldValue: c.GoldValue(),
		Boost:     c.Boost(),
	}
}

// adoptDefinition rewrites the card in place to a new definition, keeping
// the instance ID. Boost counters survive an upgrade to a higher grade but
// not a transform into an unrelated card.
func (c *Card) adoptDefinition(def *content.CardDefinition, keepCounters bool) {
	c.DefID = def.ID
	c.Name = def.Name
	c.Type = def.Type
	c.Grade = def.Grade
	c.BaseValue = def.GoldValue
	c.Cost = def.Cost
	c.Groups = def.Groups
	if !keepCounters {
		c.Counters = counters.NewCounters()
	}
}

// Unit is a worker living in the settlement. Power derives from the job's
// base power, earned levels and permanent boosts; unhoused units count at
// half power toward the run score.
type Unit struct {
	ID         string
	JobID      string
	Name       string
	Level      int
	BasePower  int
	PowerBonus int
	Housed     bool
	Counters   *counters.Counters
}

func newUnit(job *content.JobDefinition) *Unit {
	return &Unit{
		ID:        uuid.NewString(),
		JobID:     job.ID,
		Name:      job.Name,
		Level:     1,
		BasePower: job.BasePower,
		Counters:  counters.NewCounters(),
	}
}

// Power is the unit's current combat-and-labor rating.
func (u *Unit) Power() int {
	return u.BasePower + 2*(u.Level-1) + u.PowerBonus
}

// Loyalty returns the loyalty counters on the unit.
func (u *Unit) Loyalty() int {
	return u.Counters.Count(counters.CounterLoyalty)
}

// House shelters units. A unit must be housed to contribute full power.
type House struct {
	ID        string
	Slots     int
	Occupants []string
}

func newHouse(slots int) *House {
	if slots < 1 {
		slots = 1
	}
	return &House{
		ID:    uuid.NewString(),
		Slots: slots,
	}
}

// FreeSlots returns the remaining capacity.
func (h *House) FreeSlots() int {
	free := h.Slots - len(h.Occupants)
	if free < 0 {
		return 0
	}
	return free
}
