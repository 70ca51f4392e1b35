package actions

import (
	"sync"
)

// Pool tracks the action points available during one turn. Every card play
// spends at least one action; effects can grant extra actions mid-turn.
// Granted actions do not carry over: ResetForTurn restores the base
// allowance.
type Pool struct {
	mu sync.RWMutex

	base      int
	remaining int
	spent     int
}

// NewPool creates a pool with the given per-turn base allowance.
func NewPool(base int) *Pool {
	if base < 0 {
		base = 0
	}
	return &Pool{
		base:      base,
		remaining: base,
	}
}

// Remaining returns the actions left this turn.
func (p *Pool) Remaining() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.remaining
}

// SpentThisTurn returns the actions spent since the last reset.
func (p *Pool) SpentThisTurn() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.spent
}

// Grant adds extra actions for the current turn.
func (p *Pool) Grant(amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remaining += amount
}

// Spend consumes actions. Returns false without spending anything when not
// enough remain.
func (p *Pool) Spend(amount int) bool {
	if amount <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.remaining < amount {
		return false
	}
	p.remaining -= amount
	p.spent += amount
	return true
}

// ResetForTurn restores the base allowance at the start of a turn.
func (p *Pool) ResetForTurn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remaining = p.base
	p.spent = 0
}
