package counters

// CounterType represents a type of counter.
type CounterType string

const (
	// CounterBoost raises a treasure's settled gold value by one per counter.
	CounterBoost CounterType = "boost"
	// CounterLoyalty accumulates on units and feeds promotion checks.
	CounterLoyalty CounterType = "loyalty"
	// CounterCharge accumulates on structures between activations.
	CounterCharge CounterType = "charge"
	// CounterBlight marks cards touched by pollution events.
	CounterBlight CounterType = "blight"
)

// String returns the string representation of the counter type.
func (ct CounterType) String() string {
	return string(ct)
}
