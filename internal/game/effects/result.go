package effects

// Result records the outcome of one dispatched effect. Count carries the
// thing-count the effect touched (cards drawn, targets hit), Value the gold
// or magnitude it moved. Later effects in the same activation read these
// through prev_* conditions and value sources.
type Result struct {
	Kind    EffectKind `json:"kind"`
	Success bool       `json:"success"`
	Count   int        `json:"count"`
	Value   int        `json:"value"`
}

// ResultStack accumulates results over one activation, newest on top. It is
// owned by a single activation and is not goroutine safe.
type ResultStack struct {
	results []Result
}

// NewResultStack creates an empty result stack.
func NewResultStack() *ResultStack {
	return &ResultStack{}
}

// Push appends a result.
func (s *ResultStack) Push(r Result) {
	s.results = append(s.results, r)
}

// Top returns the most recent result. The zero Result and false when the
// stack is empty, so prev_* reads on a fresh activation see zeroes.
func (s *ResultStack) Top() (Result, bool) {
	if len(s.results) == 0 {
		return Result{}, false
	}
	return s.results[len(s.results)-1], true
}

// Len returns the number of recorded results.
func (s *ResultStack) Len() int {
	return len(s.results)
}

// All returns the recorded results oldest-first. The slice is a copy.
func (s *ResultStack) All() []Result {
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}
