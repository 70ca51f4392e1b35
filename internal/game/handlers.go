package game

import (
	"go.uber.org/zap"

	"github.com/gildhall/gildhall-server-go/internal/game/effects"
)

// countOrOne turns a resolved magnitude into a repetition count. Content
// that omits the amount means "once".
func countOrOne(value int) int {
	if value < 1 {
		return 1
	}
	return value
}

// cardTargets resolves the IDs an effect acts on. Self and deck-top kinds
// resolve here; everything else uses whatever the targeting step produced.
func (e *Engine) cardTargets(def effects.Definition, targets []string) []string {
	switch def.Target {
	case effects.TargetSelf:
		if e.sourceID == "" {
			return nil
		}
		return []string{e.sourceID}
	case effects.TargetDeckTop:
		top, ok := e.state.DeckTop()
		if !ok {
			return nil
		}
		return []string{top.ID}
	default:
		return targets
	}
}

// execute runs one effect against the run and reports what happened. Every
// kind is total: whatever the state, it returns a Result rather than
// failing the activation.
func (e *Engine) execute(def effects.Definition, value int, targets []string) effects.Result {
	switch def.Kind {

	// --- Economy ---

	case effects.EffectGainGold:
		credited := e.economy.AddGold(value, true)
		return effects.Result{Kind: def.Kind, Success: true, Count: 1, Value: credited}

	case effects.EffectLoseGold:
		drained := e.economy.DrainGold(value)
		return effects.Result{Kind: def.Kind, Success: true, Count: 1, Value: drained}

	case effects.EffectGoldMultiplier, effects.EffectGoldBonus,
		effects.EffectPersistentGold, effects.EffectMaintenance,
		effects.EffectIgnorePollution:
		e.town.AddPersistent(def.Kind, value, def.Duration)
		return effects.Result{Kind: def.Kind, Success: true, Count: 1, Value: value}

	// --- Cards and zones ---

	case effects.EffectDraw:
		drawn := e.deck.Draw(value)
		return effects.Result{Kind: def.Kind, Success: drawn > 0, Count: drawn}

	case effects.EffectDrawUntil:
		drawn := e.deck.DrawUntil(value)
		return effects.Result{Kind: def.Kind, Success: e.state.HandCount() >= value, Count: drawn}

	case effects.EffectDiscard:
		moved := 0
		for _, id := range e.cardTargets(def, targets) {
			if e.deck.MoveCard(id, effects.ZoneDiscard) {
				moved++
			}
		}
		return effects.Result{Kind: def.Kind, Success: moved > 0, Count: moved}

	case effects.EffectShuffleDeck:
		e.deck.Shuffle()
		return effects.Result{Kind: def.Kind, Success: true, Count: e.state.DeckCount()}

	case effects.EffectMoveCard:
		moved := 0
		for _, id := range e.cardTargets(def, targets) {
			if e.deck.MoveCard(id, def.Zone) {
				moved++
			}
		}
		return effects.Result{Kind: def.Kind, Success: moved > 0, Count: moved}

	case effects.EffectDestroyCard:
		destroyed := 0
		for _, id := range e.cardTargets(def, targets) {
			if e.deck.DestroyCard(id) {
				destroyed++
			}
		}
		return effects.Result{Kind: def.Kind, Success: destroyed > 0, Count: destroyed}

	case effects.EffectDuplicateCard:
		copied := 0
		for _, id := range e.cardTargets(def, targets) {
			if e.deck.DuplicateCard(id) {
				copied++
			}
		}
		return effects.Result{Kind: def.Kind, Success: copied > 0, Count: copied}

	case effects.EffectTransformCard:
		changed := 0
		for _, id := range e.cardTargets(def, targets) {
			if e.deck.TransformCard(id, def.Card) {
				changed++
			}
		}
		return effects.Result{Kind: def.Kind, Success: changed > 0, Count: changed}

	case effects.EffectAddCardDeck:
		added := 0
		for i := 0; i < countOrOne(value); i++ {
			if e.deck.AddCardToDeck(def.Card, def.Zone == effects.ZoneDeckTop) {
				added++
			}
		}
		return effects.Result{Kind: def.Kind, Success: added > 0, Count: added}

	case effects.EffectAddCardHand:
		added := 0
		for i := 0; i < countOrOne(value); i++ {
			if e.deck.AddCardToHand(def.Card) {
				added++
			}
		}
		return effects.Result{Kind: def.Kind, Success: added > 0, Count: added}

	case effects.EffectReclaimDiscard:
		reclaimed := 0
		for i := 0; i < countOrOne(value); i++ {
			if !e.deck.ReclaimDiscard() {
				break
			}
			reclaimed++
		}
		return effects.Result{Kind: def.Kind, Success: reclaimed > 0, Count: reclaimed}

	case effects.EffectSalvageDiscard:
		cards := e.deck.SalvageDiscard()
		credited := 0
		if cards > 0 {
			credited = e.economy.AddGold(cards*countOrOne(value), true)
		}
		return effects.Result{Kind: def.Kind, Success: cards > 0, Count: cards, Value: credited}

	case effects.EffectRevealTop:
		top, ok := e.deck.RevealTop()
		if !ok {
			return effects.Result{Kind: def.Kind, Success: false}
		}
		return effects.Result{Kind: def.Kind, Success: true, Count: 1, Value: top.GoldValue}

	// --- Treasure ---

	case effects.EffectCreateTreasure:
		created := 0
		for i := 0; i < countOrOne(value); i++ {
			if e.deck.CreateTreasure(def.Grade) {
				created++
			}
		}
		return effects.Result{Kind: def.Kind, Success: created > 0, Count: created}

	case effects.EffectBoostTreasure:
		boosted := 0
		for _, id := range e.cardTargets(def, targets) {
			if e.deck.BoostTreasure(id, value) {
				boosted++
			}
		}
		return effects.Result{Kind: def.Kind, Success: boosted > 0, Count: boosted, Value: value}

	case effects.EffectUpgradeTreasure:
		upgraded := 0
		for _, id := range e.cardTargets(def, targets) {
			if e.deck.UpgradeTreasure(id) {
				upgraded++
			}
		}
		return effects.Result{Kind: def.Kind, Success: upgraded > 0, Count: upgraded}

	case effects.EffectSettleTreasure:
		gold, settled := e.deck.SettleTreasures(e.cardTargets(def, targets))
		credited := 0
		if gold > 0 {
			credited = e.economy.AddGold(gold, true)
		}
		return effects.Result{Kind: def.Kind, Success: settled > 0, Count: settled, Value: credited}

	// --- Units ---

	case effects.EffectCreateUnit:
		created := 0
		for i := 0; i < countOrOne(value); i++ {
			if _, ok := e.units.CreateUnit(def.JobPool); ok {
				created++
			}
		}
		return effects.Result{Kind: def.Kind, Success: created > 0, Count: created}

	case effects.EffectHireUnit:
		// The magnitude is the hiring fee; no fee means a free hire.
		if value > 0 && !e.economy.SpendGold(value) {
			return effects.Result{Kind: def.Kind, Success: false, Value: value}
		}
		if _, ok := e.units.CreateUnit(def.JobPool); !ok {
			e.economy.AddGold(value, false)
			return effects.Result{Kind: def.Kind, Success: false}
		}
		return effects.Result{Kind: def.Kind, Success: true, Count: 1, Value: value}

	case effects.EffectKillUnit:
		killed := 0
		for i := 0; i < countOrOne(value); i++ {
			if _, ok := e.units.KillRandomUnit(); !ok {
				break
			}
			killed++
		}
		return effects.Result{Kind: def.Kind, Success: killed > 0, Count: killed}

	case effects.EffectPromoteUnit:
		if _, ok := e.units.PromoteUnit(value); !ok {
			return effects.Result{Kind: def.Kind, Success: false}
		}
		return effects.Result{Kind: def.Kind, Success: true, Count: 1, Value: countOrOne(value)}

	case effects.EffectDemoteUnit:
		if _, ok := e.units.DemoteUnit(value); !ok {
			return effects.Result{Kind: def.Kind, Success: false}
		}
		return effects.Result{Kind: def.Kind, Success: true, Count: 1, Value: countOrOne(value)}

	case effects.EffectBoostUnitPower:
		affected := e.units.BoostPower(value)
		return effects.Result{Kind: def.Kind, Success: affected > 0, Count: affected, Value: value}

	case effects.EffectUnitLoyalty:
		affected := e.units.AddLoyalty(value)
		return effects.Result{Kind: def.Kind, Success: affected > 0, Count: affected, Value: value}

	// --- Town ---

	case effects.EffectBuildHouse:
		slots := value
		if slots < 1 {
			slots = 2
		}
		e.houses.BuildHouse(slots)
		return effects.Result{Kind: def.Kind, Success: true, Count: 1, Value: slots}

	case effects.EffectGainPollution:
		level := e.town.AddPollution(countOrOne(value))
		return effects.Result{Kind: def.Kind, Success: true, Count: 1, Value: level}

	case effects.EffectCleansePollution:
		before := e.state.Pollution()
		level := e.town.CleansePollution(countOrOne(value))
		return effects.Result{Kind: def.Kind, Success: before > level, Count: before - level, Value: level}

	// --- Flow ---

	case effects.EffectExtraAction:
		granted := e.turn.GrantActions(countOrOne(value))
		return effects.Result{Kind: def.Kind, Success: granted > 0, Count: granted}

	case effects.EffectGamble:
		return e.gamble(def)

	case effects.EffectTriggerEvent:
		if e.director == nil {
			return effects.Result{Kind: def.Kind, Success: false}
		}
		if _, ok := e.director.Lookup(def.Card); !ok {
			e.logger.Warn("trigger references unregistered event",
				zap.String("event_id", def.Card))
			return effects.Result{Kind: def.Kind, Success: false}
		}
		e.director.Force(def.Card)
		return effects.Result{Kind: def.Kind, Success: true, Count: 1}

	default:
		e.logger.Warn("unknown effect kind, skipping",
			zap.String("run_id", e.runID),
			zap.String("kind", string(def.Kind)),
			zap.String("source", e.sourceID))
		return effects.Result{Kind: def.Kind, Success: false, Count: 0, Value: 0}
	}
}

// gamble rolls d100 against the chance. The roll must come in strictly
// under the chance to win, so chance 0 can never win and chance 100 always
// does. Count carries the roll for the client's dice animation.
func (e *Engine) gamble(def effects.Definition) effects.Result {
	roll := e.rng.Intn(100)
	win := roll < def.Chance

	var moved int
	if win {
		amount := e.resolver.Resolve(def.WinAmount, def.WinValue, e.state, e.results, e.rng)
		moved = e.economy.AddGold(amount, true)
	} else {
		amount := e.resolver.Resolve(def.LoseAmount, def.LoseValue, e.state, e.results, e.rng)
		moved = -e.economy.DrainGold(amount)
	}

	e.logger.Debug("gamble resolved",
		zap.String("run_id", e.runID),
		zap.Int("roll", roll),
		zap.Int("chance", def.Chance),
		zap.Bool("win", win),
		zap.Int("gold", moved))

	return effects.Result{Kind: def.Kind, Success: win, Count: roll, Value: moved}
}
