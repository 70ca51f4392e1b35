package actions

import "fmt"

// Cost is the price of playing a card: action points from the turn pool and
// gold from the treasury. Both default to zero; a zero-action cost is
// normalized to one action when the card is played, free cards are expressed
// with Free.
type Cost struct {
	Actions int  `json:"actions,omitempty"`
	Gold    int  `json:"gold,omitempty"`
	Free    bool `json:"free,omitempty"`
}

// EffectiveActions returns the action points the cost actually consumes.
func (c Cost) EffectiveActions() int {
	if c.Free {
		return 0
	}
	if c.Actions <= 0 {
		return 1
	}
	return c.Actions
}

// String renders the cost for logs and views, e.g. "1A 3G".
func (c Cost) String() string {
	if c.Free {
		return "free"
	}
	if c.Gold > 0 {
		return fmt.Sprintf("%dA %dG", c.EffectiveActions(), c.Gold)
	}
	return fmt.Sprintf("%dA", c.EffectiveActions())
}
