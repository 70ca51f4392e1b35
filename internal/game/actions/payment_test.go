package actions

import (
	"testing"
)

// testAccount is a minimal GoldAccount.
type testAccount struct {
	gold int
}

func (a *testAccount) Gold() int { return a.gold }

func (a *testAccount) SpendGold(amount int) bool {
	if amount > a.gold {
		return false
	}
	a.gold -= amount
	return true
}

func TestCost_EffectiveActions(t *testing.T) {
	if (Cost{}).EffectiveActions() != 1 {
		t.Error("Zero-action cost should normalize to 1 action")
	}
	if (Cost{Actions: 2}).EffectiveActions() != 2 {
		t.Error("Explicit action cost should stand")
	}
	if (Cost{Free: true}).EffectiveActions() != 0 {
		t.Error("Free cards cost no actions")
	}
}

func TestCost_String(t *testing.T) {
	if got := (Cost{Actions: 1, Gold: 3}).String(); got != "1A 3G" {
		t.Errorf("Expected 1A 3G, got %s", got)
	}
	if got := (Cost{Actions: 2}).String(); got != "2A" {
		t.Errorf("Expected 2A, got %s", got)
	}
	if got := (Cost{Free: true}).String(); got != "free" {
		t.Errorf("Expected free, got %s", got)
	}
}

func TestCanPay(t *testing.T) {
	pool := NewPool(1)
	account := &testAccount{gold: 2}

	if !CanPay(Cost{Actions: 1, Gold: 2}, pool, account) {
		t.Error("Expected payable cost")
	}
	if CanPay(Cost{Actions: 2}, pool, account) {
		t.Error("Expected too few actions")
	}
	if CanPay(Cost{Gold: 3}, pool, account) {
		t.Error("Expected too little gold")
	}
}

func TestPay_SpendsBoth(t *testing.T) {
	pool := NewPool(2)
	account := &testAccount{gold: 5}

	if !Pay(Cost{Actions: 1, Gold: 3}, pool, account) {
		t.Fatal("Expected payment to succeed")
	}
	if pool.Remaining() != 1 {
		t.Errorf("Expected 1 action remaining, got %d", pool.Remaining())
	}
	if account.gold != 2 {
		t.Errorf("Expected 2 gold remaining, got %d", account.gold)
	}
}

func TestPay_RefundsActionsOnGoldFailure(t *testing.T) {
	pool := NewPool(2)
	account := &testAccount{gold: 1}

	if Pay(Cost{Actions: 1, Gold: 3}, pool, account) {
		t.Fatal("Expected payment to fail")
	}
	if pool.Remaining() != 2 {
		t.Errorf("Expected actions refunded, got %d", pool.Remaining())
	}
	if account.gold != 1 {
		t.Errorf("Expected gold untouched, got %d", account.gold)
	}
}

func TestPay_FreeCard(t *testing.T) {
	pool := NewPool(0)
	account := &testAccount{}

	if !Pay(Cost{Free: true}, pool, account) {
		t.Error("Free cards must be payable with an empty pool")
	}
}
