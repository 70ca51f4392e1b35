package targeting

import (
	"github.com/gildhall/gildhall-server-go/internal/game/effects"
)

// Request is handed to the client when an effect needs the player to choose
// cards. Cap is the most cards the player may pick; Candidates is the
// eligible set the pick must come from.
type Request struct {
	Source     string                 `json:"source,omitempty"`
	Kind       effects.TargetKind     `json:"kind"`
	CardType   effects.CardType       `json:"card_type,omitempty"`
	Cap        int                    `json:"cap"`
	Candidates []effects.CardSnapshot `json:"candidates"`
}

// NeedsSelection reports whether a target kind requires the player to
// choose. Everything else resolves inside the engine without a UI round
// trip.
func NeedsSelection(kind effects.TargetKind) bool {
	switch kind {
	case effects.TargetPickHand, effects.TargetPickTreasure, effects.TargetPickOfType:
		return true
	default:
		return false
	}
}

// Candidates returns the cards eligible under the definition's target kind.
// Selection and collection kinds share these filters; kinds that do not act
// on hand cards return nil.
func Candidates(def effects.Definition, state effects.StateReader) []effects.CardSnapshot {
	hand := state.Hand()
	switch def.Target {
	case effects.TargetPickHand, effects.TargetRandomHand:
		return hand
	case effects.TargetPickTreasure, effects.TargetAllTreasures:
		var out []effects.CardSnapshot
		for _, card := range hand {
			if card.IsTreasure() {
				out = append(out, card)
			}
		}
		return out
	case effects.TargetPickOfType, effects.TargetAllOfType:
		var out []effects.CardSnapshot
		for _, card := range hand {
			if card.Type == def.CardType {
				out = append(out, card)
			}
		}
		return out
	default:
		return nil
	}
}

// Cap resolves a definition's MaxTargets against the candidate count. Zero
// means unbounded and takes every candidate.
func Cap(def effects.Definition, candidates int) int {
	if def.MaxTargets <= 0 || def.MaxTargets > candidates {
		return candidates
	}
	return def.MaxTargets
}

// AutoSelect resolves an automatic target kind to concrete card IDs.
// Random picks default to a single card unless MaxTargets widens them;
// collection kinds take every candidate up to the cap.
func AutoSelect(def effects.Definition, state effects.StateReader, rng effects.RNG) []string {
	candidates := Candidates(def, state)
	if len(candidates) == 0 {
		return nil
	}
	switch def.Target {
	case effects.TargetRandomHand:
		count := def.MaxTargets
		if count <= 0 {
			count = 1
		}
		if count > len(candidates) {
			count = len(candidates)
		}
		picked := make([]string, 0, count)
		pool := make([]effects.CardSnapshot, len(candidates))
		copy(pool, candidates)
		for i := 0; i < count; i++ {
			j := rng.Intn(len(pool))
			picked = append(picked, pool[j].ID)
			pool = append(pool[:j], pool[j+1:]...)
		}
		return picked
	case effects.TargetAllTreasures, effects.TargetAllOfType:
		cap := Cap(def, len(candidates))
		ids := make([]string, 0, cap)
		for _, card := range candidates[:cap] {
			ids = append(ids, card.ID)
		}
		return ids
	default:
		return nil
	}
}
