package effects

import (
	"math"

	"go.uber.org/zap"
)

// Resolver turns a fixed amount or a dynamic value source into a concrete
// magnitude. Each effect is resolved twice: speculatively when it is queued,
// so the client can preview the pending stack, and authoritatively when it
// is dispatched. Both resolutions draw from the run RNG; only the second one
// reaches the handlers.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a value resolver.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// Resolve computes the magnitude for an effect. A nil source means the fixed
// amount stands as-is.
func (r *Resolver) Resolve(amount int, src *ValueSource, state StateReader, results *ResultStack, rng RNG) int {
	if src == nil {
		return amount
	}
	base := r.base(src, state, results, rng)
	multiplier := src.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	return int(math.Round(float64(base) * multiplier))
}

func (r *Resolver) base(src *ValueSource, state StateReader, results *ResultStack, rng RNG) int {
	switch src.Kind {
	case ValueFixed:
		return src.Base
	case ValuePrevCount:
		prev, _ := results.Top()
		return prev.Count
	case ValuePrevValue:
		prev, _ := results.Top()
		return prev.Value
	case ValueGold:
		return state.Gold()
	case ValueGoldPercent:
		return int(math.Round(float64(state.Gold()) * float64(src.Base) / 100))
	case ValueHandCount:
		return state.HandCount()
	case ValueDeckCount:
		return state.DeckCount()
	case ValueUnitCount:
		return state.UnitCount()
	case ValueDeckTopValue:
		top, ok := state.DeckTop()
		if !ok || !top.IsTreasure() {
			return 0
		}
		return top.GoldValue
	case ValueRandomRange:
		if src.Max <= src.Min {
			return src.Min
		}
		return src.Min + rng.Intn(src.Max-src.Min+1)
	case ValueDice:
		if src.Max < 1 {
			return 0
		}
		return rng.Intn(src.Max) + 1
	default:
		r.logger.Warn("unknown value source kind, using base",
			zap.String("kind", string(src.Kind)))
		return src.Base
	}
}
