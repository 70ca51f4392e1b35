package effects

import "go.uber.org/zap"

// Evaluator checks condition groups against the current run state and the
// results of earlier effects in the same activation.
type Evaluator struct {
	logger *zap.Logger
}

// NewEvaluator creates a condition evaluator.
func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger}
}

// Compare applies a comparator. Unknown comparators never match.
func Compare(a int, op Comparator, b int) bool {
	switch op {
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	case OpGreater:
		return a > b
	case OpLess:
		return a < b
	case OpGreaterEqual:
		return a >= b
	case OpLessEqual:
		return a <= b
	default:
		return false
	}
}

// GroupSatisfied reports whether every condition in the group holds. An
// empty condition list is vacuously true.
func (e *Evaluator) GroupSatisfied(g ConditionGroup, state StateReader, results *ResultStack) bool {
	for _, c := range g.Conditions {
		if !e.Evaluate(c, state, results) {
			return false
		}
	}
	return true
}

// Evaluate checks a single condition. Kinds this evaluator does not know are
// treated as satisfied so that newer content degrades to "effects apply"
// rather than silently dead cards.
func (e *Evaluator) Evaluate(c Condition, state StateReader, results *ResultStack) bool {
	quantity, ok := e.quantity(c, state, results)
	if !ok {
		e.logger.Warn("unknown condition kind, treating as satisfied",
			zap.String("kind", string(c.Kind)))
		return true
	}
	return Compare(quantity, c.Op, c.Operand)
}

// quantity maps a condition kind to the number it compares. Boolean kinds
// report 1 or 0 so that content can use eq/ne against either polarity.
func (e *Evaluator) quantity(c Condition, state StateReader, results *ResultStack) (int, bool) {
	switch c.Kind {
	case ConditionGold:
		return state.Gold(), true
	case ConditionHandCount:
		return state.HandCount(), true
	case ConditionDeckCount:
		return state.DeckCount(), true
	case ConditionDiscardCount:
		return state.DiscardCount(), true
	case ConditionUnitCount:
		return state.UnitCount(), true
	case ConditionHandTreasureCount:
		n := 0
		for _, card := range state.Hand() {
			if card.IsTreasure() {
				n++
			}
		}
		return n, true
	case ConditionDeckTopTreasure:
		top, ok := state.DeckTop()
		return boolQuantity(ok && top.IsTreasure()), true
	case ConditionPrevSuccess:
		prev, ok := results.Top()
		return boolQuantity(ok && prev.Success), true
	case ConditionPrevCount:
		prev, _ := results.Top()
		return prev.Count, true
	case ConditionPrevValue:
		prev, _ := results.Top()
		return prev.Value, true
	case ConditionCardInDeck:
		return boolQuantity(state.CardInDeck(c.Card)), true
	case ConditionCardInDiscard:
		return boolQuantity(state.CardInDiscard(c.Card)), true
	case ConditionPollution:
		return state.Pollution(), true
	case ConditionTurn:
		return state.Turn(), true
	case ConditionHouseFreeSlots:
		return state.FreeHouseSlots(), true
	default:
		return 0, false
	}
}

func boolQuantity(b bool) int {
	if b {
		return 1
	}
	return 0
}
