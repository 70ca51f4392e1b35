package game

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gildhall/gildhall-server-go/internal/content"
	"github.com/gildhall/gildhall-server-go/internal/game/counters"
	"github.com/gildhall/gildhall-server-go/internal/game/effects"
	"github.com/gildhall/gildhall-server-go/internal/game/rules"
)

// ErrUnknownCard is returned when a definition ID does not resolve against
// the catalog.
var ErrUnknownCard = errors.New("unknown card definition")

// Each point of pollution shaves five percent off modified gold gains,
// capped at half the gain.
const (
	pollutionPenaltyPerPoint = 5
	pollutionPenaltyCap      = 50
)

// PromotionChoice is a pending job decision for one unit. It does not block
// the run; the player answers it whenever they like during the main phase.
type PromotionChoice struct {
	UnitID  string   `json:"unit_id"`
	Options []string `json:"options"`
}

// RunState holds everything mutable about one settlement run: treasury,
// card zones, workforce, housing, pollution and the persistent-effect
// records upkeep applies. It is not goroutine safe; the owning Run
// serializes access.
type RunState struct {
	runID   string
	logger  *zap.Logger
	bus     *rules.EventBus
	catalog *content.Catalog
	rng     effects.RNG

	gold      int
	pollution int
	turn      int

	deck    []*Card // index 0 is the top
	hand    []*Card
	discard []*Card

	units  []*Unit
	houses []*House

	persistent []effects.PersistentEffect

	pendingPromotion *PromotionChoice
}

func newRunState(runID string, catalog *content.Catalog, bus *rules.EventBus, rng effects.RNG, logger *zap.Logger) *RunState {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunState{
		runID:   runID,
		logger:  logger,
		bus:     bus,
		catalog: catalog,
		rng:     rng,
		turn:    1,
	}
}

// seedDeck stamps the opening deck from definition IDs, top to bottom.
func (s *RunState) seedDeck(defIDs []string) error {
	for _, id := range defIDs {
		def, ok := s.catalog.Card(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCard, id)
		}
		s.deck = append(s.deck, newCard(def))
	}
	return nil
}

func (s *RunState) publish(evt rules.Event) {
	if s.bus != nil {
		s.bus.Publish(evt)
	}
}

// SetTurn mirrors the turn manager's counter into the readable state.
func (s *RunState) SetTurn(n int) {
	s.turn = n
}

// --- effects.StateReader ---

func (s *RunState) Gold() int         { return s.gold }
func (s *RunState) Pollution() int    { return s.pollution }
func (s *RunState) Turn() int         { return s.turn }
func (s *RunState) HandCount() int    { return len(s.hand) }
func (s *RunState) DeckCount() int    { return len(s.deck) }
func (s *RunState) DiscardCount() int { return len(s.discard) }
func (s *RunState) UnitCount() int    { return len(s.units) }

func (s *RunState) FreeHouseSlots() int {
	free := 0
	for _, h := range s.houses {
		free += h.FreeSlots()
	}
	return free
}

func (s *RunState) Hand() []effects.CardSnapshot {
	out := make([]effects.CardSnapshot, 0, len(s.hand))
	for _, c := range s.hand {
		out = append(out, c.Snapshot())
	}
	return out
}

func (s *RunState) DeckTop() (effects.CardSnapshot, bool) {
	if len(s.deck) == 0 {
		return effects.CardSnapshot{}, false
	}
	return s.deck[0].Snapshot(), true
}

func (s *RunState) CardInDeck(defID string) bool {
	for _, c := range s.deck {
		if c.DefID == defID {
			return true
		}
	}
	return false
}

func (s *RunState) CardInDiscard(defID string) bool {
	for _, c := range s.discard {
		if c.DefID == defID {
			return true
		}
	}
	return false
}

func (s *RunState) PersistentEffects() []effects.PersistentEffect {
	out := make([]effects.PersistentEffect, len(s.persistent))
	copy(out, s.persistent)
	return out
}

// --- EconomyMutator ---

// AddGold credits the treasury. With applyModifiers the gain runs through
// the active multiplier records, then flat bonuses, then the pollution
// penalty unless an ignore_pollution record is live. Returns the gold
// actually credited.
func (s *RunState) AddGold(amount int, applyModifiers bool) int {
	if amount <= 0 {
		return 0
	}
	credited := amount
	if applyModifiers {
		credited = s.modifiedGain(amount)
	}
	s.gold += credited
	s.publish(rules.NewEventWithAmount(rules.EventGoldGained, s.runID, "", "", credited))
	return credited
}

func (s *RunState) modifiedGain(amount int) int {
	pct := 100
	flat := 0
	ignore := false
	for _, rec := range s.persistent {
		switch rec.Kind {
		case effects.EffectGoldMultiplier:
			pct += rec.Magnitude
		case effects.EffectGoldBonus:
			flat += rec.Magnitude
		case effects.EffectIgnorePollution:
			ignore = true
		}
	}
	if pct < 0 {
		pct = 0
	}
	out := int(math.Round(float64(amount)*float64(pct)/100)) + flat

	if !ignore && s.pollution > 0 {
		penalty := s.pollution * pollutionPenaltyPerPoint
		if penalty > pollutionPenaltyCap {
			penalty = pollutionPenaltyCap
		}
		out = int(math.Round(float64(out) * float64(100-penalty) / 100))
	}
	if out < 0 {
		out = 0
	}
	return out
}

// DrainGold removes up to amount from the treasury and returns what was
// actually taken.
func (s *RunState) DrainGold(amount int) int {
	if amount <= 0 {
		return 0
	}
	taken := amount
	if taken > s.gold {
		taken = s.gold
	}
	s.gold -= taken
	if taken > 0 {
		s.publish(rules.NewEventWithAmount(rules.EventGoldSpent, s.runID, "", "", taken))
	}
	return taken
}

// SpendGold removes exactly amount or nothing at all.
func (s *RunState) SpendGold(amount int) bool {
	if amount <= 0 {
		return true
	}
	if s.gold < amount {
		return false
	}
	s.gold -= amount
	s.publish(rules.NewEventWithAmount(rules.EventGoldSpent, s.runID, "", "", amount))
	return true
}

// --- DeckMutator ---

func (s *RunState) Draw(n int) int {
	drawn := 0
	for i := 0; i < n && len(s.deck) > 0; i++ {
		card := s.deck[0]
		s.deck = s.deck[1:]
		s.hand = append(s.hand, card)
		drawn++
		s.publish(rules.NewEvent(rules.EventCardDrawn, s.runID, "", card.ID))
	}
	return drawn
}

func (s *RunState) DrawUntil(handSize int) int {
	if handSize <= len(s.hand) {
		return 0
	}
	return s.Draw(handSize - len(s.hand))
}

func (s *RunState) Shuffle() {
	for i := len(s.deck) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		s.deck[i], s.deck[j] = s.deck[j], s.deck[i]
	}
	s.publish(rules.NewEventWithAmount(rules.EventDeckShuffled, s.runID, "", "", len(s.deck)))
}

// recycleDiscard shuffles the discard pile back under the deck. The draw
// phase uses it when the deck runs dry; effect draws never recycle.
func (s *RunState) recycleDiscard() {
	if len(s.discard) == 0 {
		return
	}
	s.deck = append(s.deck, s.discard...)
	s.discard = nil
	s.Shuffle()
}

func (s *RunState) takeCard(cardID string) (*Card, bool) {
	for i, c := range s.hand {
		if c.ID == cardID {
			s.hand = append(s.hand[:i], s.hand[i+1:]...)
			return c, true
		}
	}
	for i, c := range s.deck {
		if c.ID == cardID {
			s.deck = append(s.deck[:i], s.deck[i+1:]...)
			return c, true
		}
	}
	for i, c := range s.discard {
		if c.ID == cardID {
			s.discard = append(s.discard[:i], s.discard[i+1:]...)
			return c, true
		}
	}
	return nil, false
}

func (s *RunState) cardInHand(cardID string) (*Card, bool) {
	for _, c := range s.hand {
		if c.ID == cardID {
			return c, true
		}
	}
	return nil, false
}

func (s *RunState) MoveCard(cardID string, zone effects.MoveZone) bool {
	card, ok := s.takeCard(cardID)
	if !ok {
		return false
	}
	switch zone {
	case effects.ZoneDeckTop:
		s.deck = append([]*Card{card}, s.deck...)
	case effects.ZoneDeckBottom:
		s.deck = append(s.deck, card)
	case effects.ZoneHand:
		s.hand = append(s.hand, card)
	default:
		s.discard = append(s.discard, card)
	}
	evt := rules.NewEvent(rules.EventCardMoved, s.runID, "", card.ID)
	evt.Data = string(zone)
	s.publish(evt)
	return true
}

func (s *RunState) DestroyCard(cardID string) bool {
	card, ok := s.takeCard(cardID)
	if !ok {
		return false
	}
	s.publish(rules.NewEvent(rules.EventCardDestroyed, s.runID, "", card.ID))
	return true
}

func (s *RunState) DuplicateCard(cardID string) bool {
	card, ok := s.cardInHand(cardID)
	if !ok {
		return false
	}
	def, ok := s.catalog.Card(card.DefID)
	if !ok {
		return false
	}
	dupe := newCard(def)
	dupe.Counters = card.Counters.Copy()
	s.hand = append(s.hand, dupe)
	evt := rules.NewEvent(rules.EventCardCreated, s.runID, card.ID, dupe.ID)
	evt.Data = def.ID
	s.publish(evt)
	return true
}

func (s *RunState) TransformCard(cardID, defID string) bool {
	card, ok := s.cardInHand(cardID)
	if !ok {
		return false
	}
	def, ok := s.catalog.Card(defID)
	if !ok {
		s.logger.Warn("transform target definition missing", zap.String("def_id", defID))
		return false
	}
	card.adoptDefinition(def, false)
	evt := rules.NewEvent(rules.EventCardTransformed, s.runID, "", card.ID)
	evt.Data = defID
	s.publish(evt)
	return true
}

func (s *RunState) AddCardToDeck(defID string, top bool) bool {
	def, ok := s.catalog.Card(defID)
	if !ok {
		return false
	}
	card := newCard(def)
	if top {
		s.deck = append([]*Card{card}, s.deck...)
	} else {
		s.deck = append(s.deck, card)
	}
	s.publish(rules.NewEvent(rules.EventCardCreated, s.runID, "", card.ID))
	return true
}

func (s *RunState) AddCardToHand(defID string) bool {
	def, ok := s.catalog.Card(defID)
	if !ok {
		return false
	}
	card := newCard(def)
	s.hand = append(s.hand, card)
	s.publish(rules.NewEvent(rules.EventCardCreated, s.runID, "", card.ID))
	return true
}

// ReclaimDiscard returns the most recently discarded card to hand.
func (s *RunState) ReclaimDiscard() bool {
	if len(s.discard) == 0 {
		return false
	}
	card := s.discard[len(s.discard)-1]
	s.discard = s.discard[:len(s.discard)-1]
	s.hand = append(s.hand, card)
	evt := rules.NewEvent(rules.EventCardMoved, s.runID, "", card.ID)
	evt.Data = string(effects.ZoneHand)
	s.publish(evt)
	return true
}

// SalvageDiscard destroys the entire discard pile and reports how many
// cards burned.
func (s *RunState) SalvageDiscard() int {
	n := len(s.discard)
	for _, card := range s.discard {
		s.publish(rules.NewEvent(rules.EventCardDestroyed, s.runID, "", card.ID))
	}
	s.discard = nil
	return n
}

func (s *RunState) RevealTop() (effects.CardSnapshot, bool) {
	top, ok := s.DeckTop()
	if !ok {
		return effects.CardSnapshot{}, false
	}
	evt := rules.NewEvent(rules.EventCardRevealed, s.runID, "", top.ID)
	evt.Data = top.Name
	s.publish(evt)
	return top, true
}

func (s *RunState) CreateTreasure(grade effects.TreasureGrade) bool {
	if grade < effects.GradeCopper {
		grade = effects.GradeCopper
	}
	if grade > effects.GradeRelic {
		grade = effects.GradeRelic
	}
	def, ok := s.catalog.TreasureByGrade(grade)
	if !ok {
		s.logger.Warn("no treasure definition for grade", zap.Int("grade", int(grade)))
		return false
	}
	card := newCard(def)
	s.hand = append(s.hand, card)
	s.publish(rules.NewEventWithAmount(rules.EventTreasureCreated, s.runID, "", card.ID, card.GoldValue()))
	return true
}

func (s *RunState) BoostTreasure(cardID string, amount int) bool {
	card, ok := s.cardInHand(cardID)
	if !ok || !card.IsTreasure() || amount <= 0 {
		return false
	}
	card.Counters.Add(counters.CounterBoost, amount)
	s.publish(rules.NewEventWithAmount(rules.EventTreasureBoosted, s.runID, "", card.ID, amount))
	return true
}

func (s *RunState) UpgradeTreasure(cardID string) bool {
	card, ok := s.cardInHand(cardID)
	if !ok || !card.IsTreasure() || card.Grade >= effects.GradeRelic {
		return false
	}
	def, ok := s.catalog.TreasureByGrade(card.Grade + 1)
	if !ok {
		return false
	}
	card.adoptDefinition(def, true)
	s.publish(rules.NewEventWithAmount(rules.EventTreasureUpgraded, s.runID, "", card.ID, int(card.Grade)))
	return true
}

// SettleTreasures moves the given hand treasures to the discard pile and
// returns their summed gold value, boosts included. Crediting the treasury
// is the caller's business.
func (s *RunState) SettleTreasures(cardIDs []string) (gold, settled int) {
	for _, id := range cardIDs {
		card, ok := s.cardInHand(id)
		if !ok || !card.IsTreasure() {
			continue
		}
		value := card.GoldValue()
		s.takeCard(id)
		s.discard = append(s.discard, card)
		gold += value
		settled++
		s.publish(rules.NewEventWithAmount(rules.EventTreasureSettled, s.runID, "", card.ID, value))
	}
	return gold, settled
}

// --- UnitMutator ---

func (s *RunState) CreateUnit(jobPool string) (string, bool) {
	jobs := s.catalog.JobsInPool(jobPool)
	if len(jobs) == 0 {
		s.logger.Warn("empty job pool", zap.String("pool", jobPool))
		return "", false
	}
	job := jobs[s.rng.Intn(len(jobs))]
	unit := newUnit(job)
	s.units = append(s.units, unit)
	evt := rules.NewEvent(rules.EventUnitCreated, s.runID, "", unit.ID)
	evt.Data = job.ID
	s.publish(evt)
	s.PlaceUnit(unit.ID)
	return unit.ID, true
}

func (s *RunState) KillRandomUnit() (string, bool) {
	if len(s.units) == 0 {
		return "", false
	}
	idx := s.rng.Intn(len(s.units))
	unit := s.units[idx]
	s.units = append(s.units[:idx], s.units[idx+1:]...)
	s.evictUnit(unit.ID)
	if s.pendingPromotion != nil && s.pendingPromotion.UnitID == unit.ID {
		s.pendingPromotion = nil
	}
	s.publish(rules.NewEvent(rules.EventUnitKilled, s.runID, "", unit.ID))
	return unit.ID, true
}

func (s *RunState) evictUnit(unitID string) {
	for _, h := range s.houses {
		for i, occ := range h.Occupants {
			if occ == unitID {
				h.Occupants = append(h.Occupants[:i], h.Occupants[i+1:]...)
				return
			}
		}
	}
}

// PromoteUnit levels up the lowest-level unit. When the unit's job offers
// exactly one advancement the job changes immediately; several options
// leave a PromotionChoice pending for the player.
func (s *RunState) PromoteUnit(levels int) (string, bool) {
	if len(s.units) == 0 {
		return "", false
	}
	if levels < 1 {
		levels = 1
	}
	unit := s.units[0]
	for _, u := range s.units[1:] {
		if u.Level < unit.Level {
			unit = u
		}
	}
	unit.Level += levels
	s.publish(rules.NewEventWithAmount(rules.EventUnitPromoted, s.runID, "", unit.ID, levels))

	if job, ok := s.catalog.Job(unit.JobID); ok {
		switch len(job.PromoteTo) {
		case 0:
		case 1:
			s.applyJobChange(unit, job.PromoteTo[0])
		default:
			s.pendingPromotion = &PromotionChoice{
				UnitID:  unit.ID,
				Options: append([]string(nil), job.PromoteTo...),
			}
			evt := rules.NewEvent(rules.EventPromotionChoiceRequired, s.runID, "", unit.ID)
			evt.Data = strings.Join(job.PromoteTo, ",")
			s.publish(evt)
		}
	}
	return unit.ID, true
}

func (s *RunState) applyJobChange(unit *Unit, jobID string) {
	job, ok := s.catalog.Job(jobID)
	if !ok {
		s.logger.Warn("promotion target job missing", zap.String("job_id", jobID))
		return
	}
	unit.JobID = job.ID
	unit.Name = job.Name
	unit.BasePower = job.BasePower
	evt := rules.NewEvent(rules.EventUnitPromoted, s.runID, "", unit.ID)
	evt.Data = job.ID
	s.publish(evt)
}

func (s *RunState) DemoteUnit(levels int) (string, bool) {
	if len(s.units) == 0 {
		return "", false
	}
	if levels < 1 {
		levels = 1
	}
	unit := s.units[0]
	for _, u := range s.units[1:] {
		if u.Level > unit.Level {
			unit = u
		}
	}
	unit.Level -= levels
	if unit.Level < 1 {
		unit.Level = 1
	}
	s.publish(rules.NewEventWithAmount(rules.EventUnitDemoted, s.runID, "", unit.ID, levels))
	return unit.ID, true
}

func (s *RunState) BoostPower(delta int) int {
	for _, u := range s.units {
		u.PowerBonus += delta
	}
	return len(s.units)
}

func (s *RunState) AddLoyalty(delta int) int {
	for _, u := range s.units {
		if delta >= 0 {
			u.Counters.Add(counters.CounterLoyalty, delta)
		} else {
			u.Counters.Remove(counters.CounterLoyalty, -delta)
		}
	}
	return len(s.units)
}

// PendingPromotion returns the outstanding job choice, if any.
func (s *RunState) PendingPromotion() *PromotionChoice {
	return s.pendingPromotion
}

// ApplyPromotionChoice answers a pending promotion with one of its options.
func (s *RunState) ApplyPromotionChoice(unitID, jobID string) error {
	pending := s.pendingPromotion
	if pending == nil || pending.UnitID != unitID {
		return fmt.Errorf("no promotion pending for unit %s", unitID)
	}
	valid := false
	for _, opt := range pending.Options {
		if opt == jobID {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("job %s is not an offered promotion", jobID)
	}
	for _, u := range s.units {
		if u.ID == unitID {
			s.applyJobChange(u, jobID)
			s.pendingPromotion = nil
			return nil
		}
	}
	s.pendingPromotion = nil
	return fmt.Errorf("unit %s no longer exists", unitID)
}

// --- HousePlacer ---

func (s *RunState) BuildHouse(slots int) string {
	house := newHouse(slots)
	s.houses = append(s.houses, house)
	s.publish(rules.NewEventWithAmount(rules.EventHouseBuilt, s.runID, "", house.ID, house.Slots))
	for _, u := range s.units {
		if !u.Housed {
			s.PlaceUnit(u.ID)
		}
	}
	return house.ID
}

func (s *RunState) PlaceUnit(unitID string) bool {
	var unit *Unit
	for _, u := range s.units {
		if u.ID == unitID {
			unit = u
			break
		}
	}
	if unit == nil {
		return false
	}
	if unit.Housed {
		return true
	}
	for _, h := range s.houses {
		if h.FreeSlots() > 0 {
			h.Occupants = append(h.Occupants, unit.ID)
			unit.Housed = true
			s.publish(rules.NewEvent(rules.EventUnitHoused, s.runID, h.ID, unit.ID))
			return true
		}
	}
	return false
}

// --- TownMutator ---

func (s *RunState) AddPollution(n int) int {
	if n > 0 {
		s.pollution += n
		s.publish(rules.NewEventWithAmount(rules.EventPollutionChanged, s.runID, "", "", s.pollution))
	}
	return s.pollution
}

func (s *RunState) CleansePollution(n int) int {
	if n > 0 && s.pollution > 0 {
		s.pollution -= n
		if s.pollution < 0 {
			s.pollution = 0
		}
		s.publish(rules.NewEventWithAmount(rules.EventPollutionChanged, s.runID, "", "", s.pollution))
	}
	return s.pollution
}

// AddPersistent records a town-wide effect. Duration above zero counts down
// one per turn; zero or less means the record lasts the whole run.
func (s *RunState) AddPersistent(kind effects.EffectKind, magnitude, duration int) string {
	remaining := -1
	if duration > 0 {
		remaining = duration
	}
	rec := effects.PersistentEffect{
		ID:             uuid.NewString(),
		Kind:           kind,
		Magnitude:      magnitude,
		RemainingTurns: remaining,
	}
	s.persistent = append(s.persistent, rec)

	evt := rules.NewEventWithAmount(rules.EventPersistentAdded, s.runID, rec.ID, "", magnitude)
	evt.Data = string(kind)
	s.publish(evt)
	switch kind {
	case effects.EffectGoldMultiplier, effects.EffectGoldBonus, effects.EffectIgnorePollution:
		s.publish(rules.NewEventWithAmount(rules.EventGoldModifierAdded, s.runID, rec.ID, "", magnitude))
	}
	return rec.ID
}

// ApplyUpkeep runs the persistent records for a new turn: income pays out,
// maintenance collects, and timed records burn down a turn, expiring at
// zero. Returns the gold gained and lost.
func (s *RunState) ApplyUpkeep() (income, upkeep int) {
	for _, rec := range s.persistent {
		switch rec.Kind {
		case effects.EffectPersistentGold:
			gained := s.AddGold(rec.Magnitude, true)
			income += gained
			s.publish(rules.NewEventWithAmount(rules.EventPersistentApplied, s.runID, rec.ID, "", gained))
		case effects.EffectMaintenance:
			paid := s.DrainGold(rec.Magnitude)
			upkeep += paid
			s.publish(rules.NewEventWithAmount(rules.EventPersistentApplied, s.runID, rec.ID, "", paid))
		}
	}

	kept := s.persistent[:0]
	for _, rec := range s.persistent {
		if rec.RemainingTurns > 0 {
			rec.RemainingTurns--
			if rec.RemainingTurns == 0 {
				evt := rules.NewEvent(rules.EventPersistentExpired, s.runID, rec.ID, "")
				evt.Data = string(rec.Kind)
				s.publish(evt)
				continue
			}
		}
		kept = append(kept, rec)
	}
	s.persistent = kept
	return income, upkeep
}

// Score sums the settlement's worth: treasury, workforce power (halved for
// the unhoused) and standing houses.
func (s *RunState) Score() int {
	score := s.gold
	for _, u := range s.units {
		if u.Housed {
			score += u.Power()
		} else {
			score += u.Power() / 2
		}
	}
	score += 4 * len(s.houses)
	return score
}
