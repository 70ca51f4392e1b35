package actions

// GoldAccount is the slice of the economy that payments need.
type GoldAccount interface {
	Gold() int
	SpendGold(amount int) bool
}

// CanPay reports whether the cost is payable right now without spending
// anything.
func CanPay(cost Cost, pool *Pool, account GoldAccount) bool {
	if pool.Remaining() < cost.EffectiveActions() {
		return false
	}
	if cost.Gold > 0 && account.Gold() < cost.Gold {
		return false
	}
	return true
}

// Pay spends the cost. Actions are taken first; if the gold spend then
// fails, the actions are refunded so a failed payment leaves the pool
// untouched.
func Pay(cost Cost, pool *Pool, account GoldAccount) bool {
	needed := cost.EffectiveActions()
	if !pool.Spend(needed) {
		return false
	}
	if cost.Gold > 0 && !account.SpendGold(cost.Gold) {
		pool.Grant(needed)
		return false
	}
	return true
}
