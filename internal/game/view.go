package game

import (
	"github.com/gildhall/gildhall-server-go/internal/game/effects"
	"github.com/gildhall/gildhall-server-go/internal/game/targeting"
)

// CardView is a hand card as the client sees it.
type CardView struct {
	ID    string                `json:"id"`
	DefID string                `json:"def_id"`
	Name  string                `json:"name"`
	Type  effects.CardType      `json:"type"`
	Grade effects.TreasureGrade `json:"grade,omitempty"`
	Value int                   `json:"value,omitempty"`
	Boost int                   `json:"boost,omitempty"`
	Cost  string                `json:"cost"`
}

// UnitView is a unit as the client sees it.
type UnitView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	JobID   string `json:"job_id"`
	Level   int    `json:"level"`
	Power   int    `json:"power"`
	Loyalty int    `json:"loyalty"`
	Housed  bool   `json:"housed"`
}

// HouseView is a house as the client sees it.
type HouseView struct {
	ID        string   `json:"id"`
	Slots     int      `json:"slots"`
	Occupants []string `json:"occupants,omitempty"`
}

// RunView is the full client snapshot of a run. It is safe to serialize
// and carries everything the UI needs to render a decision point.
type RunView struct {
	RunID     string `json:"run_id"`
	Seed      int64  `json:"seed"`
	Turn      int    `json:"turn"`
	Phase     string `json:"phase"`
	Gold      int    `json:"gold"`
	Pollution int    `json:"pollution"`
	Actions   int    `json:"actions"`
	Score     int    `json:"score"`
	Over      bool   `json:"over"`
	EndReason string `json:"end_reason,omitempty"`

	Hand         []CardView `json:"hand"`
	DeckCount    int        `json:"deck_count"`
	DiscardCount int        `json:"discard_count"`

	Units  []UnitView  `json:"units"`
	Houses []HouseView `json:"houses"`

	Persistent []effects.PersistentEffect `json:"persistent,omitempty"`

	Pending          []PendingEffectView `json:"pending,omitempty"`
	Awaiting         *targeting.Request  `json:"awaiting,omitempty"`
	PendingPromotion *PromotionChoice    `json:"pending_promotion,omitempty"`

	Stats RunStats `json:"stats"`
}

// buildRunView assembles the view. The caller holds the run lock.
func buildRunView(r *Run) *RunView {
	view := &RunView{
		RunID:     r.ID,
		Seed:      r.Seed,
		Turn:      r.turns.TurnNumber(),
		Phase:     r.turns.CurrentPhase().String(),
		Gold:      r.state.Gold(),
		Pollution: r.state.Pollution(),
		Actions:   r.pool.Remaining(),
		Score:     r.state.Score(),
		Over:      r.over,
		EndReason: r.endReason,

		DeckCount:    r.state.DeckCount(),
		DiscardCount: r.state.DiscardCount(),

		Persistent:       r.state.PersistentEffects(),
		Pending:          r.engine.PendingPreview(),
		Awaiting:         r.engine.AwaitingRequest(),
		PendingPromotion: r.state.PendingPromotion(),

		Stats: RunStats{
			CardsPlayedThisTurn: r.wPlayed.Count(),
			CardsPlayed:         r.wPlayed.Total(),
			GoldEarned:          r.wGold.Total(),
			TreasuresSettled:    r.wSettled.Count(),
			SettledGold:         r.wSettled.Gold(),
			UnitsLost:           r.wLost.Count(),
		},
	}

	view.Hand = make([]CardView, 0, len(r.state.hand))
	for _, c := range r.state.hand {
		view.Hand = append(view.Hand, CardView{
			ID:    c.ID,
			DefID: c.DefID,
			Name:  c.Name,
			Type:  c.Type,
			Grade: c.Grade,
			Value: c.GoldValue(),
			Boost: c.Boost(),
			Cost:  c.Cost.String(),
		})
	}

	view.Units = make([]UnitView, 0, len(r.state.units))
	for _, u := range r.state.units {
		view.Units = append(view.Units, UnitView{
			ID:      u.ID,
			Name:    u.Name,
			JobID:   u.JobID,
			Level:   u.Level,
			Power:   u.Power(),
			Loyalty: u.Loyalty(),
			Housed:  u.Housed,
		})
	}

	view.Houses = make([]HouseView, 0, len(r.state.houses))
	for _, h := range r.state.houses {
		view.Houses = append(view.Houses, HouseView{
			ID:        h.ID,
			Slots:     h.Slots,
			Occupants: append([]string(nil), h.Occupants...),
		})
	}

	return view
}
