package game

import (
	"testing"

	"github.com/gildhall/gildhall-server-go/internal/game/effects"
	"github.com/gildhall/gildhall-server-go/internal/game/rules"
)

// TestGroupsRunInOrderWithElseBranch plays a two-group program: the first
// group's gain pushes the treasury past its own threshold but not the
// second group's, so the second group falls through to its else branch.
func TestGroupsRunInOrderWithElseBranch(t *testing.T) {
	h := newEngineHarness(t)
	h.state.gold = 12
	h.seedDeck("card_day_labor")

	outcome := h.activateGroups(
		effects.ConditionGroup{
			Conditions: []effects.Condition{{Kind: effects.ConditionGold, Op: effects.OpGreaterEqual, Operand: 10}},
			Effects:    []effects.Definition{{Kind: effects.EffectGainGold, Amount: 3}},
		},
		effects.ConditionGroup{
			Conditions:  []effects.Condition{{Kind: effects.ConditionGold, Op: effects.OpGreaterEqual, Operand: 100}},
			Effects:     []effects.Definition{{Kind: effects.EffectGainGold, Amount: 99}},
			ElseEffects: []effects.Definition{{Kind: effects.EffectDraw, Amount: 1}},
		},
	)

	h.assertCompleted(outcome)
	if h.state.Gold() != 15 {
		t.Fatalf("expected 15 gold, got %d", h.state.Gold())
	}
	if h.engine.Results().Len() != 2 {
		t.Fatalf("expected 2 results, got %d", h.engine.Results().Len())
	}
	top := h.topResult()
	if top.Kind != effects.EffectDraw || !top.Success || top.Count != 1 {
		t.Fatalf("expected a successful draw of 1 on top, got %+v", top)
	}
}

// TestLaterGroupsSeeEarlierResults gates the second group on the first
// group's outcome. Groups expand lazily, so the prev_success condition and
// the prev_count value both read the discard that already ran.
func TestLaterGroupsSeeEarlierResults(t *testing.T) {
	h := newEngineHarness(t, 1)
	h.giveHandCard("card_day_labor")
	h.giveHandCard("card_forage")

	outcome := h.activateGroups(
		effects.ConditionGroup{
			Effects: []effects.Definition{{Kind: effects.EffectDiscard, Target: effects.TargetRandomHand}},
		},
		effects.ConditionGroup{
			Conditions: []effects.Condition{{Kind: effects.ConditionPrevSuccess, Op: effects.OpEqual, Operand: 1}},
			Effects: []effects.Definition{{
				Kind:  effects.EffectGainGold,
				Value: &effects.ValueSource{Kind: effects.ValuePrevCount, Multiplier: 3},
			}},
		},
	)

	h.assertCompleted(outcome)
	if h.state.HandCount() != 1 {
		t.Fatalf("expected 1 card left in hand, got %d", h.state.HandCount())
	}
	if h.state.Gold() != 3 {
		t.Fatalf("expected 3 gold from the chained gain, got %d", h.state.Gold())
	}
}

// TestSettledCountFeedsTheNextDraw settles every treasure in hand, then
// draws one card per settled treasure through a prev_count value source.
func TestSettledCountFeedsTheNextDraw(t *testing.T) {
	h := newEngineHarness(t)
	h.giveHandCard("treasure_copper")
	h.giveHandCard("treasure_silver")
	h.seedDeck("card_day_labor", "card_day_labor", "card_forage")

	outcome := h.activateGroups(
		effects.ConditionGroup{
			Effects: []effects.Definition{{Kind: effects.EffectSettleTreasure, Target: effects.TargetAllTreasures}},
		},
		effects.ConditionGroup{
			Effects: []effects.Definition{{
				Kind:  effects.EffectDraw,
				Value: &effects.ValueSource{Kind: effects.ValuePrevCount},
			}},
		},
	)

	h.assertCompleted(outcome)
	settle := h.resultAt(0)
	if !settle.Success || settle.Count != 2 || settle.Value != 6 {
		t.Fatalf("expected settle count 2 value 6, got %+v", settle)
	}
	draw := h.resultAt(1)
	if !draw.Success || draw.Count != 2 {
		t.Fatalf("expected a draw of 2, got %+v", draw)
	}
	if h.state.Gold() != 6 {
		t.Fatalf("expected 6 gold from settling, got %d", h.state.Gold())
	}
	if h.state.HandCount() != 2 {
		t.Fatalf("expected hand of 2 after settle and draw, got %d", h.state.HandCount())
	}
}

// TestGambleWinCreditsWinnings rolls under the chance and pays out.
func TestGambleWinCreditsWinnings(t *testing.T) {
	h := newEngineHarness(t, 30)

	outcome := h.activate(effects.Definition{
		Kind: effects.EffectGamble, Chance: 60, WinAmount: 5, LoseAmount: 2,
	})

	h.assertCompleted(outcome)
	res := h.topResult()
	if !res.Success || res.Count != 30 || res.Value != 5 {
		t.Fatalf("expected win with roll 30 paying 5, got %+v", res)
	}
	if h.state.Gold() != 5 {
		t.Fatalf("expected 5 gold, got %d", h.state.Gold())
	}
}

// TestGambleRollEqualToChanceLoses pins the strict comparison: a roll
// landing exactly on the chance is a loss.
func TestGambleRollEqualToChanceLoses(t *testing.T) {
	h := newEngineHarness(t, 60)
	h.state.gold = 10

	h.activate(effects.Definition{
		Kind: effects.EffectGamble, Chance: 60, WinAmount: 5, LoseAmount: 2,
	})

	res := h.topResult()
	if res.Success {
		t.Fatalf("roll 60 against chance 60 must lose, got %+v", res)
	}
	if res.Value != -2 {
		t.Fatalf("expected -2 gold on the losing branch, got %d", res.Value)
	}
	if h.state.Gold() != 8 {
		t.Fatalf("expected 8 gold after the loss, got %d", h.state.Gold())
	}
}

// TestGambleZeroChanceNeverWins rolls the best possible roll against
// chance zero and still loses.
func TestGambleZeroChanceNeverWins(t *testing.T) {
	h := newEngineHarness(t, 0)

	h.activate(effects.Definition{
		Kind: effects.EffectGamble, Chance: 0, WinAmount: 5, LoseAmount: 2,
	})

	res := h.topResult()
	if res.Success {
		t.Fatalf("chance 0 can never win, got %+v", res)
	}
}

// TestGambleFullChanceAlwaysWins rolls the worst possible roll against
// chance 100 and still wins.
func TestGambleFullChanceAlwaysWins(t *testing.T) {
	h := newEngineHarness(t, 99)

	h.activate(effects.Definition{
		Kind: effects.EffectGamble, Chance: 100, WinAmount: 5,
	})

	res := h.topResult()
	if !res.Success || res.Count != 99 {
		t.Fatalf("chance 100 must always win, got %+v", res)
	}
}

// TestEmptyPickSkipsWithoutPrompt runs a pick-targeted effect with no
// eligible candidates. The effect fails in place; the player is never
// asked.
func TestEmptyPickSkipsWithoutPrompt(t *testing.T) {
	h := newEngineHarness(t)

	outcome := h.activate(effects.Definition{
		Kind: effects.EffectBoostTreasure, Amount: 2, Target: effects.TargetPickTreasure,
	})

	h.assertCompleted(outcome)
	if h.engine.AwaitingRequest() != nil {
		t.Fatalf("no targeting request should be raised for an empty candidate set")
	}
	res := h.topResult()
	if res.Success || res.Count != 0 {
		t.Fatalf("expected a skipped failure, got %+v", res)
	}
}

// TestPickSuspendsUntilResumed suspends on a treasure pick, then resumes
// with a selection and checks the boost landed on the chosen card.
func TestPickSuspendsUntilResumed(t *testing.T) {
	h := newEngineHarness(t)
	copperID := h.giveHandCard("treasure_copper")
	h.giveHandCard("treasure_silver")

	outcome := h.activate(effects.Definition{
		Kind: effects.EffectBoostTreasure, Amount: 2, Target: effects.TargetPickTreasure, MaxTargets: 1,
	})

	h.assertAwaiting(outcome)
	if outcome.Request.Cap != 1 {
		t.Fatalf("expected a cap of 1, got %d", outcome.Request.Cap)
	}
	if len(outcome.Request.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(outcome.Request.Candidates))
	}

	resumed, err := h.engine.Resume([]string{copperID})
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	h.assertCompleted(resumed)

	res := h.topResult()
	if !res.Success || res.Count != 1 || res.Value != 2 {
		t.Fatalf("expected one boosted treasure, got %+v", res)
	}
	for _, snap := range h.state.Hand() {
		if snap.ID == copperID && snap.GoldValue != 4 {
			t.Fatalf("expected boosted copper worth 4, got %d", snap.GoldValue)
		}
	}
}

// TestResumeRejectsInvalidSelection keeps the suspension alive when the
// selection names a card outside the candidate set or overshoots the cap.
func TestResumeRejectsInvalidSelection(t *testing.T) {
	h := newEngineHarness(t)
	copperID := h.giveHandCard("treasure_copper")
	silverID := h.giveHandCard("treasure_silver")

	h.activate(effects.Definition{
		Kind: effects.EffectBoostTreasure, Amount: 2, Target: effects.TargetPickTreasure, MaxTargets: 1,
	})

	if _, err := h.engine.Resume([]string{"no-such-card"}); err == nil {
		t.Fatalf("expected an error for a selection outside the candidates")
	}
	if _, err := h.engine.Resume([]string{copperID, silverID}); err == nil {
		t.Fatalf("expected an error for a selection over the cap")
	}
	if h.engine.State() != StateAwaitingTarget {
		t.Fatalf("a rejected selection must keep the engine suspended, got %s", h.engine.State())
	}

	resumed, err := h.engine.Resume([]string{silverID})
	if err != nil {
		t.Fatalf("valid selection after rejects failed: %v", err)
	}
	h.assertCompleted(resumed)
}

// TestCancelledPickFailsButQueueContinues cancels a suspended pick and
// checks the rest of the activation still runs.
func TestCancelledPickFailsButQueueContinues(t *testing.T) {
	h := newEngineHarness(t)
	h.giveHandCard("treasure_copper")

	outcome := h.activate(
		effects.Definition{Kind: effects.EffectBoostTreasure, Amount: 2, Target: effects.TargetPickTreasure},
		effects.Definition{Kind: effects.EffectGainGold, Amount: 2},
	)
	h.assertAwaiting(outcome)

	cancelled, err := h.engine.CancelTargeting()
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	h.assertCompleted(cancelled)

	boost := h.resultAt(0)
	if boost.Success || boost.Count != 0 || boost.Value != 0 {
		t.Fatalf("a cancelled effect must fail with zero count, got %+v", boost)
	}
	gain := h.resultAt(1)
	if !gain.Success || gain.Value != 2 {
		t.Fatalf("the queue must keep running after a cancel, got %+v", gain)
	}
	if h.state.Gold() != 2 {
		t.Fatalf("expected 2 gold, got %d", h.state.Gold())
	}
}

// TestCancelWithoutSuspensionErrors rejects Resume and CancelTargeting
// when nothing is suspended.
func TestCancelWithoutSuspensionErrors(t *testing.T) {
	h := newEngineHarness(t)

	if _, err := h.engine.Resume([]string{"x"}); err != ErrNotAwaitingTargets {
		t.Fatalf("expected ErrNotAwaitingTargets from Resume, got %v", err)
	}
	if _, err := h.engine.CancelTargeting(); err != ErrNotAwaitingTargets {
		t.Fatalf("expected ErrNotAwaitingTargets from CancelTargeting, got %v", err)
	}
}

// TestNewActivationOverwritesSuspendedOne starts a second activation while
// the first is suspended. The first one's remaining effects never run.
func TestNewActivationOverwritesSuspendedOne(t *testing.T) {
	h := newEngineHarness(t)
	h.giveHandCard("treasure_copper")

	outcome := h.activate(
		effects.Definition{Kind: effects.EffectBoostTreasure, Amount: 2, Target: effects.TargetPickTreasure},
		effects.Definition{Kind: effects.EffectGainGold, Amount: 100},
	)
	h.assertAwaiting(outcome)

	second := h.activate(effects.Definition{Kind: effects.EffectGainGold, Amount: 1})
	h.assertCompleted(second)

	if h.engine.AwaitingRequest() != nil {
		t.Fatalf("the abandoned suspension must be cleared")
	}
	if h.engine.Results().Len() != 1 {
		t.Fatalf("expected only the new activation's result, got %d entries", h.engine.Results().Len())
	}
	if h.state.Gold() != 1 {
		t.Fatalf("the abandoned queue must never run; expected 1 gold, got %d", h.state.Gold())
	}
}

// TestUnknownEffectKindIsANoOp dispatches a kind the engine has never
// heard of. It fails in place and the activation keeps going.
func TestUnknownEffectKindIsANoOp(t *testing.T) {
	h := newEngineHarness(t)

	outcome := h.activate(
		effects.Definition{Kind: effects.EffectKind("summon_dragon")},
		effects.Definition{Kind: effects.EffectGainGold, Amount: 2},
	)

	h.assertCompleted(outcome)
	unknown := h.resultAt(0)
	if unknown.Success || unknown.Count != 0 || unknown.Value != 0 {
		t.Fatalf("unknown kinds must fail as no-ops, got %+v", unknown)
	}
	if h.state.Gold() != 2 {
		t.Fatalf("the activation must continue past an unknown kind, got %d gold", h.state.Gold())
	}
}

// TestPendingPreviewIsSpeculative suspends with a dice-valued gain queued
// behind the pick. The preview shows one roll, the dispatch makes its own,
// and only the dispatched roll moves gold.
func TestPendingPreviewIsSpeculative(t *testing.T) {
	h := newEngineHarness(t, 2, 4)
	copperID := h.giveHandCard("treasure_copper")

	outcome := h.activate(
		effects.Definition{Kind: effects.EffectBoostTreasure, Amount: 2, Target: effects.TargetPickTreasure},
		effects.Definition{Kind: effects.EffectGainGold, Value: &effects.ValueSource{Kind: effects.ValueDice, Max: 6}},
	)
	h.assertAwaiting(outcome)

	preview := h.engine.PendingPreview()
	if len(preview) != 2 {
		t.Fatalf("expected 2 previewed effects, got %d", len(preview))
	}
	if !preview[0].NeedsPick {
		t.Fatalf("the suspended boost must be marked as needing a pick")
	}
	if preview[1].Value != 3 {
		t.Fatalf("expected speculative dice value 3, got %d", preview[1].Value)
	}

	resumed, err := h.engine.Resume([]string{copperID})
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	h.assertCompleted(resumed)

	if h.state.Gold() != 5 {
		t.Fatalf("expected the authoritative roll of 5 to be credited, got %d", h.state.Gold())
	}
}

// TestTriggerEventQueuesForcedEvent forces a registered town event and
// checks it lands in the director's forced queue instead of firing inline.
func TestTriggerEventQueuesForcedEvent(t *testing.T) {
	h := newEngineHarness(t)
	h.director.Register(rules.TownEvent{ID: "event_market_day", Name: "Market Day", Weight: 5})

	outcome := h.activate(effects.Definition{Kind: effects.EffectTriggerEvent, Card: "event_market_day"})

	h.assertCompleted(outcome)
	if res := h.topResult(); !res.Success {
		t.Fatalf("expected a successful trigger, got %+v", res)
	}
	forced, ok := h.director.NextForced()
	if !ok || forced.ID != "event_market_day" {
		t.Fatalf("expected the market day event queued, got %+v ok=%v", forced, ok)
	}
	if _, ok := h.director.NextForced(); ok {
		t.Fatalf("only one forced event should be queued")
	}
}

// TestTriggerUnregisteredEventFails refuses to force an event the
// director does not know.
func TestTriggerUnregisteredEventFails(t *testing.T) {
	h := newEngineHarness(t)

	h.activate(effects.Definition{Kind: effects.EffectTriggerEvent, Card: "event_unheard_of"})

	if res := h.topResult(); res.Success {
		t.Fatalf("triggering an unregistered event must fail, got %+v", res)
	}
	if _, ok := h.director.NextForced(); ok {
		t.Fatalf("nothing should be queued for an unregistered event")
	}
}

// TestExtraActionGoesThroughTheTurnCollaborator routes action grants to
// the turn collaborator rather than touching state directly.
func TestExtraActionGoesThroughTheTurnCollaborator(t *testing.T) {
	h := newEngineHarness(t)

	h.activate(effects.Definition{Kind: effects.EffectExtraAction, Amount: 2})

	if h.granted != 2 {
		t.Fatalf("expected 2 actions granted, got %d", h.granted)
	}
	if res := h.topResult(); !res.Success || res.Count != 2 {
		t.Fatalf("expected a successful grant of 2, got %+v", res)
	}
}

// TestHireUnitRefundsWhenPoolIsEmpty pays the fee, fails to hire from an
// unknown pool and puts the fee back unmodified.
func TestHireUnitRefundsWhenPoolIsEmpty(t *testing.T) {
	h := newEngineHarness(t)
	h.state.gold = 10

	h.activate(effects.Definition{Kind: effects.EffectHireUnit, Amount: 4, JobPool: "ghost_town"})

	if res := h.topResult(); res.Success {
		t.Fatalf("hiring from an empty pool must fail, got %+v", res)
	}
	if h.state.Gold() != 10 {
		t.Fatalf("the fee must be refunded, got %d gold", h.state.Gold())
	}
	if h.state.UnitCount() != 0 {
		t.Fatalf("no unit should exist, got %d", h.state.UnitCount())
	}
}

// TestHireUnitFailsWithoutTheFee refuses a hire the treasury cannot cover.
func TestHireUnitFailsWithoutTheFee(t *testing.T) {
	h := newEngineHarness(t)
	h.state.gold = 3

	h.activate(effects.Definition{Kind: effects.EffectHireUnit, Amount: 4, JobPool: "villager"})

	if res := h.topResult(); res.Success {
		t.Fatalf("an unaffordable hire must fail, got %+v", res)
	}
	if h.state.Gold() != 3 {
		t.Fatalf("a failed hire must not move gold, got %d", h.state.Gold())
	}
}
