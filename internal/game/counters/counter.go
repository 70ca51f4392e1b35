package counters

// Counter represents a named counter on a card or unit.
type Counter struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NewCounter creates a new counter with the given name and count.
func NewCounter(name string, count int) *Counter {
	if count <= 0 {
		count = 1
	}
	return &Counter{
		Name:  name,
		Count: count,
	}
}

// Add adds the specified amount to the counter.
func (c *Counter) Add(amount int) {
	if amount > 0 {
		c.Count += amount
	}
}

// Remove removes the specified amount from the counter, floored at 0.
func (c *Counter) Remove(amount int) {
	if amount > 0 {
		if c.Count >= amount {
			c.Count -= amount
		} else {
			c.Count = 0
		}
	}
}

// Copy creates a deep copy of the counter.
func (c *Counter) Copy() *Counter {
	return &Counter{
		Name:  c.Name,
		Count: c.Count,
	}
}

// Counters manages a collection of counters keyed by name.
type Counters struct {
	Counters map[string]*Counter `json:"counters,omitempty"`
}

// NewCounters creates a new Counters collection.
func NewCounters() *Counters {
	return &Counters{
		Counters: make(map[string]*Counter),
	}
}

// Add adds amount counters of the given type, merging with any existing.
func (cs *Counters) Add(ct CounterType, amount int) {
	if amount <= 0 {
		return
	}
	if existing, ok := cs.Counters[string(ct)]; ok {
		existing.Add(amount)
	} else {
		cs.Counters[string(ct)] = NewCounter(string(ct), amount)
	}
}

// Remove removes up to amount counters of the given type. Returns true if
// any counters were removed.
func (cs *Counters) Remove(ct CounterType, amount int) bool {
	if amount <= 0 {
		return false
	}
	if counter, ok := cs.Counters[string(ct)]; ok {
		counter.Remove(amount)
		if counter.Count == 0 {
			delete(cs.Counters, string(ct))
		}
		return true
	}
	return false
}

// Count returns the count of counters of the given type.
func (cs *Counters) Count(ct CounterType) int {
	if counter, ok := cs.Counters[string(ct)]; ok {
		return counter.Count
	}
	return 0
}

// Has returns true if there are any counters of the given type.
func (cs *Counters) Has(ct CounterType) bool {
	return cs.Count(ct) > 0
}

// Total returns the total number of counters of all types.
func (cs *Counters) Total() int {
	total := 0
	for _, counter := range cs.Counters {
		total += counter.Count
	}
	return total
}

// Copy creates a deep copy of the collection.
func (cs *Counters) Copy() *Counters {
	out := NewCounters()
	for name, counter := range cs.Counters {
		out.Counters[name] = counter.Copy()
	}
	return out
}

// ToView converts counters to the view format.
func (cs *Counters) ToView() []CounterView {
	var views []CounterView
	for name, counter := range cs.Counters {
		views = append(views, CounterView{
			Name:  name,
			Count: counter.Count,
		})
	}
	return views
}

// CounterView represents a counter in the view format.
type CounterView struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
