package effects

// fakeState is a settable StateReader for evaluator and resolver tests.
type fakeState struct {
	gold         int
	pollution    int
	turn         int
	hand         []CardSnapshot
	deckCount    int
	discardCount int
	unitCount    int
	freeSlots    int
	deckTop      *CardSnapshot
	inDeck       map[string]bool
	inDiscard    map[string]bool
	persistent   []PersistentEffect
}

func (f *fakeState) Gold() int           { return f.gold }
func (f *fakeState) Pollution() int      { return f.pollution }
func (f *fakeState) Turn() int           { return f.turn }
func (f *fakeState) HandCount() int      { return len(f.hand) }
func (f *fakeState) DeckCount() int      { return f.deckCount }
func (f *fakeState) DiscardCount() int   { return f.discardCount }
func (f *fakeState) UnitCount() int      { return f.unitCount }
func (f *fakeState) FreeHouseSlots() int { return f.freeSlots }

func (f *fakeState) Hand() []CardSnapshot { return f.hand }

func (f *fakeState) DeckTop() (CardSnapshot, bool) {
	if f.deckTop == nil {
		return CardSnapshot{}, false
	}
	return *f.deckTop, true
}

func (f *fakeState) CardInDeck(defID string) bool    { return f.inDeck[defID] }
func (f *fakeState) CardInDiscard(defID string) bool { return f.inDiscard[defID] }

func (f *fakeState) PersistentEffects() []PersistentEffect { return f.persistent }

// scriptedRNG replays a fixed sequence of draws. Values are clamped into
// [0, n) the way a real generator would bound them.
type scriptedRNG struct {
	seq []int
	pos int
}

func (r *scriptedRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	if r.pos >= len(r.seq) {
		return 0
	}
	v := r.seq[r.pos] % n
	r.pos++
	if v < 0 {
		v += n
	}
	return v
}
