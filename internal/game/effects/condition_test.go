package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCompareOperators(t *testing.T) {
	cases := []struct {
		a    int
		op   Comparator
		b    int
		want bool
	}{
		{5, OpEqual, 5, true},
		{5, OpEqual, 4, false},
		{5, OpNotEqual, 4, true},
		{5, OpNotEqual, 5, false},
		{5, OpGreater, 4, true},
		{5, OpGreater, 5, false},
		{4, OpLess, 5, true},
		{5, OpLess, 5, false},
		{5, OpGreaterEqual, 5, true},
		{4, OpGreaterEqual, 5, false},
		{5, OpLessEqual, 5, true},
		{6, OpLessEqual, 5, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Compare(tc.a, tc.op, tc.b),
			"%d %s %d", tc.a, tc.op, tc.b)
	}
}

func TestCompareUnknownOperator(t *testing.T) {
	assert.False(t, Compare(1, Comparator("spaceship"), 1))
}

func TestEmptyGroupAlwaysSatisfied(t *testing.T) {
	ev := NewEvaluator(zap.NewNop())
	g := ConditionGroup{Effects: []Definition{{Kind: EffectDraw, Amount: 1}}}
	assert.True(t, ev.GroupSatisfied(g, &fakeState{}, NewResultStack()))
}

func TestGroupIsConjunctive(t *testing.T) {
	ev := NewEvaluator(zap.NewNop())
	state := &fakeState{gold: 10, deckCount: 3}
	g := ConditionGroup{Conditions: []Condition{
		{Kind: ConditionGold, Op: OpGreaterEqual, Operand: 10},
		{Kind: ConditionDeckCount, Op: OpGreater, Operand: 5},
	}}
	assert.False(t, ev.GroupSatisfied(g, state, NewResultStack()))

	g.Conditions[1].Operand = 2
	assert.True(t, ev.GroupSatisfied(g, state, NewResultStack()))
}

func TestEvaluateStateQuantities(t *testing.T) {
	ev := NewEvaluator(zap.NewNop())
	state := &fakeState{
		gold:         12,
		pollution:    2,
		turn:         4,
		deckCount:    8,
		discardCount: 1,
		unitCount:    3,
		freeSlots:    2,
		hand: []CardSnapshot{
			{ID: "a", Type: CardAction},
			{ID: "b", Type: CardTreasure, Grade: GradeSilver},
			{ID: "c", Type: CardTreasure, Grade: GradeCopper},
		},
		deckTop:   &CardSnapshot{ID: "top", Type: CardTreasure},
		inDeck:    map[string]bool{"mill": true},
		inDiscard: map[string]bool{},
	}
	rs := NewResultStack()

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"gold ge", Condition{Kind: ConditionGold, Op: OpGreaterEqual, Operand: 12}, true},
		{"gold lt", Condition{Kind: ConditionGold, Op: OpLess, Operand: 12}, false},
		{"hand count", Condition{Kind: ConditionHandCount, Op: OpEqual, Operand: 3}, true},
		{"hand treasures", Condition{Kind: ConditionHandTreasureCount, Op: OpEqual, Operand: 2}, true},
		{"deck top treasure", Condition{Kind: ConditionDeckTopTreasure, Op: OpEqual, Operand: 1}, true},
		{"card in deck", Condition{Kind: ConditionCardInDeck, Op: OpEqual, Operand: 1, Card: "mill"}, true},
		{"card in discard", Condition{Kind: ConditionCardInDiscard, Op: OpEqual, Operand: 1, Card: "mill"}, false},
		{"pollution", Condition{Kind: ConditionPollution, Op: OpLessEqual, Operand: 2}, true},
		{"turn", Condition{Kind: ConditionTurn, Op: OpGreater, Operand: 3}, true},
		{"house slots", Condition{Kind: ConditionHouseFreeSlots, Op: OpGreater, Operand: 0}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ev.Evaluate(tc.cond, state, rs))
		})
	}
}

func TestEvaluatePreviousResultConditions(t *testing.T) {
	ev := NewEvaluator(zap.NewNop())
	state := &fakeState{}
	rs := NewResultStack()

	// Empty stack: prev_success compares against 0, counts read as 0.
	assert.True(t, ev.Evaluate(Condition{Kind: ConditionPrevSuccess, Op: OpEqual, Operand: 0}, state, rs))
	assert.True(t, ev.Evaluate(Condition{Kind: ConditionPrevCount, Op: OpEqual, Operand: 0}, state, rs))

	rs.Push(Result{Kind: EffectDraw, Success: true, Count: 3, Value: 0})
	assert.True(t, ev.Evaluate(Condition{Kind: ConditionPrevSuccess, Op: OpEqual, Operand: 1}, state, rs))
	assert.True(t, ev.Evaluate(Condition{Kind: ConditionPrevCount, Op: OpGreaterEqual, Operand: 3}, state, rs))
	assert.False(t, ev.Evaluate(Condition{Kind: ConditionPrevValue, Op: OpGreater, Operand: 0}, state, rs))

	rs.Push(Result{Kind: EffectGamble, Success: false, Count: 0, Value: 5})
	assert.True(t, ev.Evaluate(Condition{Kind: ConditionPrevSuccess, Op: OpEqual, Operand: 0}, state, rs))
	assert.True(t, ev.Evaluate(Condition{Kind: ConditionPrevValue, Op: OpEqual, Operand: 5}, state, rs))
}

func TestUnknownConditionKindIsPermissive(t *testing.T) {
	ev := NewEvaluator(zap.NewNop())
	state := &fakeState{gold: 0}

	for _, op := range []Comparator{OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual} {
		cond := Condition{Kind: ConditionKind("moon_phase"), Op: op, Operand: 99}
		require.True(t, ev.Evaluate(cond, state, NewResultStack()),
			"unknown kind must pass under %s", op)
	}
}
