package game

import (
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/gildhall/gildhall-server-go/internal/game/effects"
)

// TestActivationLogRoundTripsThroughDisk saves a small log and reads it
// back unchanged.
func TestActivationLogRoundTripsThroughDisk(t *testing.T) {
	dir := t.TempDir()
	rec := NewRunRecorder("run-log-test", zaptest.NewLogger(t))
	rec.Record(ActivationRecord{
		Turn:       1,
		SourceID:   "card-1",
		SourceName: "Day Labor",
		Results: []effects.Result{
			{Kind: effects.EffectGainGold, Success: true, Count: 1, Value: 3},
		},
	})
	rec.Record(ActivationRecord{
		Turn:       2,
		SourceID:   "event_market_day",
		SourceName: "Market Day",
		Results: []effects.Result{
			{Kind: effects.EffectGainGold, Success: true, Count: 1, Value: 2},
			{Kind: effects.EffectGamble, Success: false, Count: 77, Value: -2},
		},
	})

	if err := rec.SaveToFile(dir); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadRecordsFromFile(dir, "run-log-test")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, rec.Records()) {
		t.Fatalf("round trip changed the log:\n got %+v\nwant %+v", loaded, rec.Records())
	}
}

// TestRecordAtBounds checks index access on the log.
func TestRecordAtBounds(t *testing.T) {
	rec := NewRunRecorder("run-bounds", zaptest.NewLogger(t))
	rec.Record(ActivationRecord{Turn: 1, SourceID: "card-1"})

	if _, ok := rec.RecordAt(-1); ok {
		t.Fatalf("negative index must miss")
	}
	if _, ok := rec.RecordAt(1); ok {
		t.Fatalf("index past the end must miss")
	}
	got, ok := rec.RecordAt(0)
	if !ok || got.SourceID != "card-1" {
		t.Fatalf("expected the first record, got %+v ok=%v", got, ok)
	}
}

// TestRecordsReturnsACopy guards the log against mutation through the
// returned slice.
func TestRecordsReturnsACopy(t *testing.T) {
	rec := NewRunRecorder("run-copy", zaptest.NewLogger(t))
	rec.Record(ActivationRecord{Turn: 1, SourceID: "card-1"})

	out := rec.Records()
	out[0].SourceID = "tampered"

	if got, _ := rec.RecordAt(0); got.SourceID != "card-1" {
		t.Fatalf("the log must be unaffected, got %q", got.SourceID)
	}
}

// TestLoadMissingLogFails reports a useful error for an absent file.
func TestLoadMissingLogFails(t *testing.T) {
	if _, err := LoadRecordsFromFile(t.TempDir(), "never-saved"); err == nil {
		t.Fatalf("expected an error for a missing log file")
	}
}
