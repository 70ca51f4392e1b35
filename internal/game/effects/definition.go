package effects

// EffectKind identifies one of the closed set of effect behaviours a card,
// job or town event can carry. Kinds unknown to the dispatcher are executed
// as logged no-ops, so content from a newer catalog never crashes an older
// server.
type EffectKind string

const (
	// Economy
	EffectGainGold       EffectKind = "gain_gold"
	EffectLoseGold       EffectKind = "lose_gold"
	EffectGoldMultiplier EffectKind = "gold_multiplier"
	EffectGoldBonus      EffectKind = "gold_bonus"
	EffectPersistentGold EffectKind = "persistent_gold"
	EffectMaintenance    EffectKind = "maintenance"

	// Cards and zones
	EffectDraw           EffectKind = "draw"
	EffectDrawUntil      EffectKind = "draw_until"
	EffectDiscard        EffectKind = "discard"
	EffectShuffleDeck    EffectKind = "shuffle_deck"
	EffectMoveCard       EffectKind = "move_card"
	EffectDestroyCard    EffectKind = "destroy_card"
	EffectDuplicateCard  EffectKind = "duplicate_card"
	EffectTransformCard  EffectKind = "transform_card"
	EffectAddCardDeck    EffectKind = "add_card_deck"
	EffectAddCardHand    EffectKind = "add_card_hand"
	EffectReclaimDiscard EffectKind = "reclaim_discard"
	EffectSalvageDiscard EffectKind = "salvage_discard"
	EffectRevealTop      EffectKind = "reveal_top"

	// Treasure
	EffectCreateTreasure  EffectKind = "create_treasure"
	EffectBoostTreasure   EffectKind = "boost_treasure"
	EffectUpgradeTreasure EffectKind = "upgrade_treasure"
	EffectSettleTreasure  EffectKind = "settle_treasure"

	// Units
	EffectCreateUnit     EffectKind = "create_unit"
	EffectHireUnit       EffectKind = "hire_unit"
	EffectKillUnit       EffectKind = "kill_unit"
	EffectPromoteUnit    EffectKind = "promote_unit"
	EffectDemoteUnit     EffectKind = "demote_unit"
	EffectBoostUnitPower EffectKind = "boost_unit_power"
	EffectUnitLoyalty    EffectKind = "unit_loyalty"

	// Town
	EffectBuildHouse       EffectKind = "build_house"
	EffectGainPollution    EffectKind = "gain_pollution"
	EffectCleansePollution EffectKind = "cleanse_pollution"
	EffectIgnorePollution  EffectKind = "ignore_pollution"

	// Flow
	EffectExtraAction  EffectKind = "extra_action"
	EffectGamble       EffectKind = "gamble"
	EffectTriggerEvent EffectKind = "trigger_event"
)

// ConditionKind identifies the state quantity a condition compares.
type ConditionKind string

const (
	ConditionGold              ConditionKind = "gold"
	ConditionHandCount         ConditionKind = "hand_count"
	ConditionDeckCount         ConditionKind = "deck_count"
	ConditionDiscardCount      ConditionKind = "discard_count"
	ConditionUnitCount         ConditionKind = "unit_count"
	ConditionHandTreasureCount ConditionKind = "hand_treasure_count"
	ConditionDeckTopTreasure   ConditionKind = "deck_top_treasure"
	ConditionPrevSuccess       ConditionKind = "prev_success"
	ConditionPrevCount         ConditionKind = "prev_count"
	ConditionPrevValue         ConditionKind = "prev_value"
	ConditionCardInDeck        ConditionKind = "card_in_deck"
	ConditionCardInDiscard     ConditionKind = "card_in_discard"
	ConditionPollution         ConditionKind = "pollution"
	ConditionTurn              ConditionKind = "turn"
	ConditionHouseFreeSlots    ConditionKind = "house_free_slots"
)

// ValueKind identifies how a dynamic magnitude is derived.
type ValueKind string

const (
	ValueFixed        ValueKind = "fixed"
	ValuePrevCount    ValueKind = "prev_count"
	ValuePrevValue    ValueKind = "prev_value"
	ValueGold         ValueKind = "gold"
	ValueGoldPercent  ValueKind = "gold_percent"
	ValueHandCount    ValueKind = "hand_count"
	ValueDeckCount    ValueKind = "deck_count"
	ValueUnitCount    ValueKind = "unit_count"
	ValueDeckTopValue ValueKind = "deck_top_value"
	ValueRandomRange  ValueKind = "random_range"
	ValueDice         ValueKind = "dice"
)

// TargetKind identifies what an effect acts on and whether the player must
// choose. The split between automatic and selection kinds lives in the
// targeting package.
type TargetKind string

const (
	TargetNone         TargetKind = "none"
	TargetSelf         TargetKind = "self"
	TargetDeckTop      TargetKind = "deck_top"
	TargetRandomHand   TargetKind = "random_hand"
	TargetRandomUnit   TargetKind = "random_unit"
	TargetAllTreasures TargetKind = "all_treasures"
	TargetAllOfType    TargetKind = "all_of_type"
	TargetPickHand     TargetKind = "pick_hand"
	TargetPickTreasure TargetKind = "pick_treasure"
	TargetPickOfType   TargetKind = "pick_of_type"
)

// Comparator is a comparison operator in condition checks.
type Comparator string

const (
	OpEqual        Comparator = "eq"
	OpNotEqual     Comparator = "ne"
	OpGreater      Comparator = "gt"
	OpLess         Comparator = "lt"
	OpGreaterEqual Comparator = "ge"
	OpLessEqual    Comparator = "le"
)

// CardType classifies catalog cards.
type CardType string

const (
	CardAction    CardType = "action"
	CardTreasure  CardType = "treasure"
	CardStructure CardType = "structure"
)

// TreasureGrade orders treasure tiers from copper (1) to relic (5).
type TreasureGrade int

const (
	GradeCopper TreasureGrade = 1 + iota
	GradeSilver
	GradeGold
	GradeJewel
	GradeRelic
)

// MoveZone is the destination of a move_card effect.
type MoveZone string

const (
	ZoneDeckTop    MoveZone = "deck_top"
	ZoneDeckBottom MoveZone = "deck_bottom"
	ZoneDiscard    MoveZone = "discard"
	ZoneHand       MoveZone = "hand"
)

// ValueSource derives an effect magnitude from game state at resolution
// time. The final magnitude is round(base * multiplier); a zero multiplier
// means unset and is treated as 1.
type ValueSource struct {
	Kind       ValueKind `json:"kind"`
	Base       int       `json:"base,omitempty"`
	Multiplier float64   `json:"multiplier,omitempty"`
	Min        int       `json:"min,omitempty"`
	Max        int       `json:"max,omitempty"`
}

// Condition compares one state quantity against an operand. A whole group of
// conditions is conjunctive.
type Condition struct {
	Kind    ConditionKind `json:"kind"`
	Op      Comparator    `json:"op"`
	Operand int           `json:"operand"`
	Card    string        `json:"card,omitempty"`
}

// Definition describes a single effect. Kind decides which of the optional
// fields matter; unused fields stay at their zero value.
type Definition struct {
	Kind       EffectKind   `json:"kind"`
	Amount     int          `json:"amount,omitempty"`
	Value      *ValueSource `json:"value,omitempty"`
	Target     TargetKind   `json:"target,omitempty"`
	MaxTargets int          `json:"max_targets,omitempty"`

	Grade    TreasureGrade `json:"grade,omitempty"`
	Duration int           `json:"duration,omitempty"`

	Chance     int          `json:"chance,omitempty"`
	WinAmount  int          `json:"win_amount,omitempty"`
	WinValue   *ValueSource `json:"win_value,omitempty"`
	LoseAmount int          `json:"lose_amount,omitempty"`
	LoseValue  *ValueSource `json:"lose_value,omitempty"`

	Card     string   `json:"card,omitempty"`
	Rarity   string   `json:"rarity,omitempty"`
	JobPool  string   `json:"job_pool,omitempty"`
	CardType CardType `json:"card_type,omitempty"`
	Zone     MoveZone `json:"zone,omitempty"`
}

// ConditionGroup gates a list of effects behind conjunctive conditions. An
// empty condition list always passes. ElseEffects run when the conditions do
// not hold.
type ConditionGroup struct {
	Conditions  []Condition  `json:"conditions,omitempty"`
	Effects     []Definition `json:"effects"`
	ElseEffects []Definition `json:"else_effects,omitempty"`
}

// PersistentEffect is a town-wide effect that outlives its activation. The
// engine only appends these records; the run's upkeep phase applies and
// expires them.
type PersistentEffect struct {
	ID             string     `json:"id"`
	Kind           EffectKind `json:"kind"`
	Magnitude      int        `json:"magnitude"`
	RemainingTurns int        `json:"remaining_turns"`
}

// CardSnapshot is the read-only view of a card instance that conditions,
// value sources and targeting see. GoldValue already includes boosts.
type CardSnapshot struct {
	ID        string        `json:"id"`
	DefID     string        `json:"def_id"`
	Name      string        `json:"name"`
	Type      CardType      `json:"type"`
	Grade     TreasureGrade `json:"grade,omitempty"`
	GoldValue int           `json:"gold_value,omitempty"`
	Boost     int           `json:"boost,omitempty"`
}

// IsTreasure reports whether the snapshot is a treasure card.
func (c CardSnapshot) IsTreasure() bool {
	return c.Type == CardTreasure
}

// RNG is the single source of randomness for gambles, dice and random
// ranges. Production seeds math/rand per run; tests inject fixed sequences.
type RNG interface {
	Intn(n int) int
}

// StateReader is the narrow read surface the evaluator, resolver and
// targeting gateway see. The live run state implements it; the engine never
// reaches past it.
type StateReader interface {
	Gold() int
	Pollution() int
	Turn() int
	HandCount() int
	DeckCount() int
	DiscardCount() int
	UnitCount() int
	FreeHouseSlots() int
	Hand() []CardSnapshot
	DeckTop() (CardSnapshot, bool)
	CardInDeck(defID string) bool
	CardInDiscard(defID string) bool
	PersistentEffects() []PersistentEffect
}
