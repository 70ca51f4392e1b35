package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/gildhall/gildhall-server-go/internal/content"
	"github.com/gildhall/gildhall-server-go/internal/game/rules"
)

func newTestManager(t *testing.T, cfg RunConfig, logDir string) *Manager {
	t.Helper()
	if cfg.EventChance == 0 {
		cfg.EventChance = -1
	}
	logger := zaptest.NewLogger(t)
	return NewManager(content.BuiltinCatalog(logger), cfg, logDir, logger)
}

// TestManagerStartsAndServesViews creates a run through the service
// surface and reads it back.
func TestManagerStartsAndServesViews(t *testing.T) {
	m := newTestManager(t, RunConfig{}, "")

	view, err := m.StartRun(11)
	if err != nil {
		t.Fatalf("start run failed: %v", err)
	}
	if view.RunID == "" || view.Turn != 1 || view.Phase != "MAIN" {
		t.Fatalf("unexpected opening view: %+v", view)
	}
	if m.RunCount() != 1 {
		t.Fatalf("expected 1 live run, got %d", m.RunCount())
	}

	again, err := m.View(view.RunID)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if again.RunID != view.RunID {
		t.Fatalf("view returned the wrong run: %s", again.RunID)
	}
}

// TestManagerRejectsUnknownRuns returns ErrRunNotFound across the
// service methods.
func TestManagerRejectsUnknownRuns(t *testing.T) {
	m := newTestManager(t, RunConfig{}, "")

	if _, err := m.View("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound from View, got %v", err)
	}
	if _, err := m.PlayCard("missing", "card"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound from PlayCard, got %v", err)
	}
	if err := m.AbandonRun("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound from AbandonRun, got %v", err)
	}
}

// TestManagerEndTurnAdvancesTheRun drives a turn through the service.
func TestManagerEndTurnAdvancesTheRun(t *testing.T) {
	m := newTestManager(t, RunConfig{}, "")
	view, err := m.StartRun(5)
	if err != nil {
		t.Fatalf("start run failed: %v", err)
	}

	after, err := m.EndTurn(view.RunID)
	if err != nil {
		t.Fatalf("end turn failed: %v", err)
	}
	if after.Turn != 2 {
		t.Fatalf("expected turn 2, got %d", after.Turn)
	}
}

// TestManagerRemoveRunForgetsIt drops a run and stops serving it.
func TestManagerRemoveRunForgetsIt(t *testing.T) {
	m := newTestManager(t, RunConfig{}, "")
	view, _ := m.StartRun(5)

	m.RemoveRun(view.RunID)

	if m.RunCount() != 0 {
		t.Fatalf("expected no live runs, got %d", m.RunCount())
	}
	if _, err := m.View(view.RunID); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound after removal, got %v", err)
	}
}

// TestManagerForwardsNotifications wires a handler before starting a run
// and waits for the run-started push.
func TestManagerForwardsNotifications(t *testing.T) {
	m := newTestManager(t, RunConfig{}, "")

	notifications := make(chan RunNotification, 256)
	m.SetNotificationHandler(func(n RunNotification) {
		select {
		case notifications <- n:
		default:
		}
	})

	view, err := m.StartRun(9)
	if err != nil {
		t.Fatalf("start run failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-notifications:
			if n.Type == rules.EventRunStarted {
				if n.RunID != view.RunID {
					t.Fatalf("notification for the wrong run: %s", n.RunID)
				}
				return
			}
		case <-deadline:
			t.Fatalf("run started notification never arrived")
		}
	}
}

// TestManagerSavesTheLogWhenARunEnds finishes a one-turn run and waits
// for the activation log to land in the log directory.
func TestManagerSavesTheLogWhenARunEnds(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, RunConfig{MaxTurns: 1}, dir)

	view, err := m.StartRun(13)
	if err != nil {
		t.Fatalf("start run failed: %v", err)
	}
	if _, err := m.EndTurn(view.RunID); err != nil {
		t.Fatalf("end turn failed: %v", err)
	}

	path := filepath.Join(dir, view.RunID+".log.gz")
	for i := 0; i < 40; i++ {
		if _, err := os.Stat(path); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("the activation log was never written: %v", err)
	}
	if _, err := LoadRecordsFromFile(dir, view.RunID); err != nil {
		t.Fatalf("the saved log must read back: %v", err)
	}
}
