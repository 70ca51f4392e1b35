package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gildhall/gildhall-server-go/internal/game/effects"
)

// CardRecord is one card in a persisted snapshot.
type CardRecord struct {
	ID    string `json:"id"`
	DefID string `json:"def_id"`
	Boost int    `json:"boost,omitempty"`
}

// UnitRecord is one unit in a persisted snapshot.
type UnitRecord struct {
	ID         string `json:"id"`
	JobID      string `json:"job_id"`
	Level      int    `json:"level"`
	PowerBonus int    `json:"power_bonus,omitempty"`
	Loyalty    int    `json:"loyalty,omitempty"`
	Housed     bool   `json:"housed"`
}

// HouseRecord is one house in a persisted snapshot.
type HouseRecord struct {
	ID        string   `json:"id"`
	Slots     int      `json:"slots"`
	Occupants []string `json:"occupants,omitempty"`
}

// RunSnapshot is the storable record of a run: enough to archive a
// finished run, inspect a live one or diff two states. It is not a resume
// point; the RNG stream is not captured.
type RunSnapshot struct {
	RunID     string    `json:"run_id"`
	Seed      int64     `json:"seed"`
	Turn      int       `json:"turn"`
	Phase     string    `json:"phase"`
	Gold      int       `json:"gold"`
	Pollution int       `json:"pollution"`
	Score     int       `json:"score"`
	Over      bool      `json:"over"`
	EndReason string    `json:"end_reason,omitempty"`
	TakenAt   time.Time `json:"taken_at"`

	Deck    []CardRecord `json:"deck"`
	Hand    []CardRecord `json:"hand"`
	Discard []CardRecord `json:"discard"`

	Units  []UnitRecord  `json:"units"`
	Houses []HouseRecord `json:"houses"`

	Persistent []effects.PersistentEffect `json:"persistent,omitempty"`
}

// buildSnapshot captures the run. The caller holds the run lock.
func buildSnapshot(r *Run) *RunSnapshot {
	snap := &RunSnapshot{
		RunID:      r.ID,
		Seed:       r.Seed,
		Turn:       r.turns.TurnNumber(),
		Phase:      r.turns.CurrentPhase().String(),
		Gold:       r.state.Gold(),
		Pollution:  r.state.Pollution(),
		Score:      r.state.Score(),
		Over:       r.over,
		EndReason:  r.endReason,
		TakenAt:    time.Now(),
		Persistent: r.state.PersistentEffects(),
	}
	snap.Deck = cardRecords(r.state.deck)
	snap.Hand = cardRecords(r.state.hand)
	snap.Discard = cardRecords(r.state.discard)

	snap.Units = make([]UnitRecord, 0, len(r.state.units))
	for _, u := range r.state.units {
		snap.Units = append(snap.Units, UnitRecord{
			ID:         u.ID,
			JobID:      u.JobID,
			Level:      u.Level,
			PowerBonus: u.PowerBonus,
			Loyalty:    u.Loyalty(),
			Housed:     u.Housed,
		})
	}
	snap.Houses = make([]HouseRecord, 0, len(r.state.houses))
	for _, h := range r.state.houses {
		snap.Houses = append(snap.Houses, HouseRecord{
			ID:        h.ID,
			Slots:     h.Slots,
			Occupants: append([]string(nil), h.Occupants...),
		})
	}
	return snap
}

func cardRecords(cards []*Card) []CardRecord {
	out := make([]CardRecord, 0, len(cards))
	for _, c := range cards {
		out = append(out, CardRecord{ID: c.ID, DefID: c.DefID, Boost: c.Boost()})
	}
	return out
}

// Marshal renders the snapshot as indented JSON.
func (s *RunSnapshot) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// ParseSnapshot reads a snapshot back from JSON.
func ParseSnapshot(data []byte) (*RunSnapshot, error) {
	var snap RunSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}

// Checksum is a deterministic digest of a snapshot. Two snapshots of the
// same logical state hash identically regardless of capture time or slice
// ordering quirks, which guards replayed runs against divergence.
type Checksum struct {
	Hash    string `json:"hash"`
	Version int    `json:"version"`
}

const checksumVersion = 1

// ComputeChecksum hashes the snapshot's deterministic representation.
func (s *RunSnapshot) ComputeChecksum() Checksum {
	sum := sha256.Sum256([]byte(s.deterministicRepresentation()))
	return Checksum{
		Hash:    hex.EncodeToString(sum[:]),
		Version: checksumVersion,
	}
}

// VerifyChecksum reports whether the snapshot still matches a previously
// computed checksum.
func (s *RunSnapshot) VerifyChecksum(expected Checksum) bool {
	return s.ComputeChecksum().Hash == expected.Hash
}

// deterministicRepresentation renders the snapshot as a canonical string:
// timestamps are excluded, zone order is preserved where it matters (deck
// order is game state) and unordered collections are sorted.
func (s *RunSnapshot) deterministicRepresentation() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "RUN:%s|%d|%d|%s|%d|%d|%d|%t\n",
		s.RunID, s.Seed, s.Turn, s.Phase, s.Gold, s.Pollution, s.Score, s.Over)

	writeZone := func(name string, cards []CardRecord) {
		buf.WriteString(name + ":")
		parts := make([]string, 0, len(cards))
		for _, c := range cards {
			parts = append(parts, fmt.Sprintf("%s=%s+%d", c.ID, c.DefID, c.Boost))
		}
		buf.WriteString(strings.Join(parts, ","))
		buf.WriteString("\n")
	}
	// Deck order is gameplay-relevant; hand and discard order are not.
	writeZone("DECK", s.Deck)
	writeZone("HAND", sortedCards(s.Hand))
	writeZone("DISCARD", sortedCards(s.Discard))

	units := make([]UnitRecord, len(s.Units))
	copy(units, s.Units)
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	for _, u := range units {
		fmt.Fprintf(&buf, "UNIT:%s|%s|%d|%d|%d|%t\n",
			u.ID, u.JobID, u.Level, u.PowerBonus, u.Loyalty, u.Housed)
	}

	houses := make([]HouseRecord, len(s.Houses))
	copy(houses, s.Houses)
	sort.Slice(houses, func(i, j int) bool { return houses[i].ID < houses[j].ID })
	for _, h := range houses {
		occ := append([]string(nil), h.Occupants...)
		sort.Strings(occ)
		fmt.Fprintf(&buf, "HOUSE:%s|%d|%s\n", h.ID, h.Slots, strings.Join(occ, ","))
	}

	recs := make([]effects.PersistentEffect, len(s.Persistent))
	copy(recs, s.Persistent)
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	for _, rec := range recs {
		fmt.Fprintf(&buf, "PERSISTENT:%s|%s|%d|%d\n",
			rec.ID, rec.Kind, rec.Magnitude, rec.RemainingTurns)
	}

	return buf.String()
}

func sortedCards(cards []CardRecord) []CardRecord {
	out := make([]CardRecord, len(cards))
	copy(out, cards)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
