package content

import (
	"go.uber.org/zap"

	"github.com/gildhall/gildhall-server-go/internal/game/actions"
	"github.com/gildhall/gildhall-server-go/internal/game/effects"
)

// BuiltinCatalog returns a catalog preloaded with the starter set. Content
// files loaded afterwards may override individual entries.
func BuiltinCatalog(logger *zap.Logger) *Catalog {
	c := NewCatalog(logger)
	for _, card := range starterCards() {
		c.AddCard(card)
	}
	for _, job := range starterJobs() {
		c.AddJob(job)
	}
	for _, event := range starterEvents() {
		c.AddEvent(event)
	}
	return c
}

// StarterDeck returns the definition IDs of the ten-card opening deck.
func StarterDeck() []string {
	return []string{
		"card_day_labor", "card_day_labor", "card_day_labor", "card_day_labor",
		"card_forage", "card_forage", "card_forage",
		"treasure_copper", "treasure_copper",
		"card_alms",
	}
}

func starterCards() []*CardDefinition {
	return []*CardDefinition{
		{
			ID:   "card_day_labor",
			Name: "Day Labor",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectGainGold, Amount: 3},
				},
			}},
			Flavor: "An honest wage for an honest back.",
		},
		{
			ID:   "card_forage",
			Name: "Forage",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectDraw, Amount: 2},
				},
			}},
		},
		{
			ID:   "card_alms",
			Name: "Alms",
			Type: effects.CardAction,
			Cost: actions.Cost{Free: true},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectGainGold, Amount: 1},
					{Kind: effects.EffectGoldBonus, Amount: 1, Duration: 2},
				},
			}},
		},
		{
			ID:   "card_prospect",
			Name: "Prospect",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Conditions: []effects.Condition{
					{Kind: effects.ConditionDeckTopTreasure, Op: effects.OpEqual, Operand: 1},
				},
				Effects: []effects.Definition{
					{Kind: effects.EffectMoveCard, Target: effects.TargetDeckTop, Zone: effects.ZoneHand},
				},
				ElseEffects: []effects.Definition{
					{Kind: effects.EffectDraw, Amount: 1},
				},
			}},
		},
		{
			ID:   "card_caravan",
			Name: "Caravan",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1, Gold: 2},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectCreateTreasure, Grade: effects.GradeSilver},
					{Kind: effects.EffectDraw, Amount: 1},
				},
			}},
		},
		{
			ID:   "card_market_haggle",
			Name: "Market Haggle",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{
						Kind:       effects.EffectGamble,
						Chance:     60,
						WinValue:   &effects.ValueSource{Kind: effects.ValueDice, Max: 6},
						LoseAmount: 2,
					},
				},
			}},
		},
		{
			ID:   "card_tithe",
			Name: "Tithe",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{
						Kind:  effects.EffectGainGold,
						Value: &effects.ValueSource{Kind: effects.ValueGoldPercent, Base: 10},
					},
				},
			}},
			Flavor: "The guild takes its tenth; the town keeps the rest.",
		},
		{
			ID:   "card_appraise",
			Name: "Appraise",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectBoostTreasure, Amount: 2, Target: effects.TargetPickTreasure, MaxTargets: 1},
				},
			}},
		},
		{
			ID:   "card_grand_bazaar",
			Name: "Grand Bazaar",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 2},
			Groups: []effects.ConditionGroup{
				{
					Effects: []effects.Definition{
						{Kind: effects.EffectSettleTreasure, Target: effects.TargetAllTreasures},
					},
				},
				{
					Conditions: []effects.Condition{
						{Kind: effects.ConditionPrevCount, Op: effects.OpGreaterEqual, Operand: 1},
					},
					Effects: []effects.Definition{
						{Kind: effects.EffectDraw, Value: &effects.ValueSource{Kind: effects.ValuePrevCount}},
					},
				},
			},
		},
		{
			ID:   "card_smuggler",
			Name: "Smuggler",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{
				{
					Effects: []effects.Definition{
						{Kind: effects.EffectDiscard, Target: effects.TargetPickHand, MaxTargets: 2},
					},
				},
				{
					Conditions: []effects.Condition{
						{Kind: effects.ConditionPrevSuccess, Op: effects.OpEqual, Operand: 1},
					},
					Effects: []effects.Definition{
						{Kind: effects.EffectGainGold, Value: &effects.ValueSource{Kind: effects.ValuePrevCount, Multiplier: 3}},
					},
				},
			},
			Flavor: "No questions on the goods, no receipts on the gold.",
		},
		{
			ID:   "card_relic_hunt",
			Name: "Relic Hunt",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 2},
			Groups: []effects.ConditionGroup{{
				Conditions: []effects.Condition{
					{Kind: effects.ConditionGold, Op: effects.OpGreaterEqual, Operand: 8},
				},
				Effects: []effects.Definition{
					{Kind: effects.EffectUpgradeTreasure, Target: effects.TargetPickTreasure, MaxTargets: 1},
				},
				ElseEffects: []effects.Definition{
					{Kind: effects.EffectCreateTreasure, Grade: effects.GradeCopper},
				},
			}},
		},
		{
			ID:   "card_scribe",
			Name: "Scribe",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1, Gold: 1},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectDuplicateCard, Target: effects.TargetPickHand, MaxTargets: 1},
				},
			}},
		},
		{
			ID:   "card_beacon",
			Name: "Harbor Beacon",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectDrawUntil, Amount: 5},
				},
			}},
		},
		{
			ID:   "card_sluice",
			Name: "Sluice",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Conditions: []effects.Condition{
					{Kind: effects.ConditionDiscardCount, Op: effects.OpGreaterEqual, Operand: 3},
				},
				Effects: []effects.Definition{
					{Kind: effects.EffectSalvageDiscard, Amount: 1},
				},
				ElseEffects: []effects.Definition{
					{Kind: effects.EffectGainGold, Amount: 1},
				},
			}},
		},
		{
			ID:   "card_recruiter",
			Name: "Recruiter",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1, Gold: 3},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectCreateUnit, JobPool: "villager"},
				},
			}},
		},
		{
			ID:   "card_press_gang",
			Name: "Press Gang",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectHireUnit, Amount: 4, JobPool: "villager"},
					{Kind: effects.EffectUnitLoyalty, Amount: -1},
				},
			}},
		},
		{
			ID:   "card_overseer",
			Name: "Overseer",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Conditions: []effects.Condition{
					{Kind: effects.ConditionUnitCount, Op: effects.OpGreaterEqual, Operand: 1},
				},
				Effects: []effects.Definition{
					{Kind: effects.EffectPromoteUnit, Amount: 1},
					{Kind: effects.EffectUnitLoyalty, Amount: 1},
				},
				ElseEffects: []effects.Definition{
					{Kind: effects.EffectGainGold, Amount: 1},
				},
			}},
		},
		{
			ID:   "card_mason",
			Name: "Mason",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1, Gold: 4},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectBuildHouse, Amount: 2},
				},
			}},
		},
		{
			ID:   "card_festival",
			Name: "Festival",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 2, Gold: 3},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectExtraAction, Amount: 2},
					{Kind: effects.EffectUnitLoyalty, Amount: 2},
				},
			}},
			Flavor: "For one night the whole town forgets the ledger.",
		},
		{
			ID:   "card_town_crier",
			Name: "Town Crier",
			Type: effects.CardAction,
			Cost: actions.Cost{Actions: 1},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectTriggerEvent, Card: "event_market_day"},
				},
			}},
		},

		// Treasures, one per grade.
		{
			ID:        "treasure_copper",
			Name:      "Copper Lode",
			Type:      effects.CardTreasure,
			Grade:     effects.GradeCopper,
			GoldValue: 2,
		},
		{
			ID:        "treasure_silver",
			Name:      "Silver Lode",
			Type:      effects.CardTreasure,
			Grade:     effects.GradeSilver,
			GoldValue: 4,
		},
		{
			ID:        "treasure_gold",
			Name:      "Gold Lode",
			Type:      effects.CardTreasure,
			Grade:     effects.GradeGold,
			GoldValue: 7,
		},
		{
			ID:        "treasure_jewel",
			Name:      "Jewel Cache",
			Type:      effects.CardTreasure,
			Grade:     effects.GradeJewel,
			GoldValue: 11,
		},
		{
			ID:        "treasure_relic",
			Name:      "Ancient Relic",
			Type:      effects.CardTreasure,
			Grade:     effects.GradeRelic,
			GoldValue: 16,
		},

		// Structures.
		{
			ID:   "structure_windmill",
			Name: "Windmill",
			Type: effects.CardStructure,
			Cost: actions.Cost{Actions: 1, Gold: 3},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectPersistentGold, Amount: 2, Duration: 5},
				},
			}},
		},
		{
			ID:   "structure_foundry",
			Name: "Foundry",
			Type: effects.CardStructure,
			Cost: actions.Cost{Actions: 2, Gold: 6},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectPersistentGold, Amount: 3},
					{Kind: effects.EffectGainPollution, Amount: 1},
				},
			}},
			Flavor: "The smoke is the price. The ingots are the reason.",
		},
		{
			ID:   "structure_scrubber",
			Name: "Chimney Scrubber",
			Type: effects.CardStructure,
			Cost: actions.Cost{Actions: 1, Gold: 2},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectIgnorePollution, Duration: 3},
				},
			}},
		},
	}
}

func starterJobs() []*JobDefinition {
	return []*JobDefinition{
		{ID: "job_farmhand", Name: "Farmhand", Pool: "villager", BasePower: 2, PromoteTo: []string{"job_yeoman"}},
		{ID: "job_porter", Name: "Porter", Pool: "villager", BasePower: 3, PromoteTo: []string{"job_yeoman"}},
		{ID: "job_yeoman", Name: "Yeoman", Pool: "villager", BasePower: 4, PromoteTo: []string{"job_reeve", "job_militia"}},
		{ID: "job_reeve", Name: "Reeve", Pool: "guild", BasePower: 6},
		{ID: "job_militia", Name: "Militia Captain", Pool: "guild", BasePower: 5},
	}
}

func starterEvents() []*EventDefinition {
	return []*EventDefinition{
		{
			ID:     "event_market_day",
			Name:   "Market Day",
			Weight: 3,
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectGainGold, Amount: 2},
				},
			}},
		},
		{
			ID:     "event_beggars",
			Name:   "Beggars at the Gate",
			Weight: 2,
			Conditions: []effects.Condition{
				{Kind: effects.ConditionGold, Op: effects.OpGreaterEqual, Operand: 5},
			},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectLoseGold, Amount: 2},
					{Kind: effects.EffectUnitLoyalty, Amount: 1},
				},
			}},
		},
		{
			ID:     "event_granary_rats",
			Name:   "Granary Rats",
			Weight: 2,
			Conditions: []effects.Condition{
				{Kind: effects.ConditionHandCount, Op: effects.OpGreaterEqual, Operand: 1},
			},
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectDiscard, Target: effects.TargetRandomHand, MaxTargets: 1},
				},
			}},
		},
		{
			ID:     "event_windfall",
			Name:   "Merchant's Windfall",
			Weight: 1,
			Groups: []effects.ConditionGroup{{
				Effects: []effects.Definition{
					{Kind: effects.EffectCreateTreasure, Grade: effects.GradeSilver},
				},
			}},
		},
		{
			ID:     "event_blight",
			Name:   "Blight",
			Weight: 1,
			Groups: []effects.ConditionGroup{{
				Conditions: []effects.Condition{
					{Kind: effects.ConditionPollution, Op: effects.OpGreaterEqual, Operand: 2},
				},
				Effects: []effects.Definition{
					{Kind: effects.EffectLoseGold, Amount: 3},
					{Kind: effects.EffectGainPollution, Amount: 1},
				},
				ElseEffects: []effects.Definition{
					{Kind: effects.EffectGainPollution, Amount: 1},
				},
			}},
		},
	}
}
