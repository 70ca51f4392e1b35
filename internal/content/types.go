package content

import (
	"github.com/gildhall/gildhall-server-go/internal/game/actions"
	"github.com/gildhall/gildhall-server-go/internal/game/effects"
)

// CardDefinition is the immutable template a card instance is stamped from.
// Groups is the card's effect program, run top to bottom when the card is
// played.
type CardDefinition struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Type      effects.CardType         `json:"type"`
	Rarity    string                   `json:"rarity,omitempty"`
	Cost      actions.Cost             `json:"cost"`
	Grade     effects.TreasureGrade    `json:"grade,omitempty"`
	GoldValue int                      `json:"gold_value,omitempty"`
	Groups    []effects.ConditionGroup `json:"groups,omitempty"`
	Flavor    string                   `json:"flavor,omitempty"`
}

// IsTreasure reports whether the definition mints treasure cards.
func (d *CardDefinition) IsTreasure() bool {
	return d.Type == effects.CardTreasure
}

// JobDefinition describes a profession villager units can hold. PromoteTo
// lists the jobs offered when a unit outgrows this one; more than one option
// prompts the player to choose.
type JobDefinition struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Pool      string   `json:"pool"`
	BasePower int      `json:"base_power"`
	PromoteTo []string `json:"promote_to,omitempty"`
}

// EventDefinition describes a town event. Conditions gate eligibility
// against run state; Groups is the effect program fired when the event hits.
type EventDefinition struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	Weight     int                      `json:"weight,omitempty"`
	Conditions []effects.Condition      `json:"conditions,omitempty"`
	Groups     []effects.ConditionGroup `json:"groups"`
}

// Document is the on-disk shape of a content file. Any section may be
// omitted; loaded entries override builtins with the same ID.
type Document struct {
	Cards  []*CardDefinition  `json:"cards,omitempty"`
	Jobs   []*JobDefinition   `json:"jobs,omitempty"`
	Events []*EventDefinition `json:"events,omitempty"`
}
