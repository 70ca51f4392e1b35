package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NullService is a stub Service implementation that logs calls and serves
// canned views. Transport tests run against it so gateway behavior can be
// checked without a live run.
type NullService struct {
	logger *zap.Logger

	mu      sync.RWMutex
	views   map[string]*RunView
	calls   []string
	handler NotificationHandler
}

// NewNullService creates a null service.
func NewNullService(logger *zap.Logger) *NullService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NullService{
		logger: logger,
		views:  make(map[string]*RunView),
	}
}

// Calls returns the operations invoked so far, in order.
func (n *NullService) Calls() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.calls))
	copy(out, n.calls)
	return out
}

func (n *NullService) note(format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, fmt.Sprintf(format, args...))
	if len(n.calls) > 200 {
		n.calls = n.calls[len(n.calls)-200:]
	}
}

// StartRun implements Service with an empty turn-one view.
func (n *NullService) StartRun(seed int64) (*RunView, error) {
	view := &RunView{
		RunID:   uuid.NewString(),
		Seed:    seed,
		Turn:    1,
		Phase:   "MAIN",
		Gold:    5,
		Actions: 3,
		Hand:    []CardView{},
		Units:   []UnitView{},
		Houses:  []HouseView{},
	}

	n.mu.Lock()
	n.views[view.RunID] = view
	n.mu.Unlock()

	n.note("start_run seed=%d", seed)
	n.logger.Info("null service started run",
		zap.String("run_id", view.RunID),
		zap.Int64("seed", seed))
	return view, nil
}

func (n *NullService) lookup(runID string) (*RunView, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	view, ok := n.views[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return view, nil
}

// View implements Service.
func (n *NullService) View(runID string) (*RunView, error) {
	n.note("view run=%s", runID)
	return n.lookup(runID)
}

// PlayCard implements Service.
func (n *NullService) PlayCard(runID, cardID string) (*RunView, error) {
	n.note("play_card run=%s card=%s", runID, cardID)
	return n.lookup(runID)
}

// SelectTargets implements Service.
func (n *NullService) SelectTargets(runID string, targets []string) (*RunView, error) {
	n.note("select_targets run=%s count=%d", runID, len(targets))
	return n.lookup(runID)
}

// CancelTargeting implements Service.
func (n *NullService) CancelTargeting(runID string) (*RunView, error) {
	n.note("cancel_targeting run=%s", runID)
	return n.lookup(runID)
}

// EndTurn implements Service.
func (n *NullService) EndTurn(runID string) (*RunView, error) {
	n.note("end_turn run=%s", runID)
	view, err := n.lookup(runID)
	if err != nil {
		return nil, err
	}
	n.mu.Lock()
	view.Turn++
	n.mu.Unlock()
	return view, nil
}

// ChoosePromotion implements Service.
func (n *NullService) ChoosePromotion(runID, unitID, jobID string) (*RunView, error) {
	n.note("choose_promotion run=%s unit=%s job=%s", runID, unitID, jobID)
	return n.lookup(runID)
}

// AbandonRun implements Service.
func (n *NullService) AbandonRun(runID string) error {
	n.note("abandon run=%s", runID)
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.views[runID]; !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	delete(n.views, runID)
	return nil
}

// SetNotificationHandler implements Service.
func (n *NullService) SetNotificationHandler(handler NotificationHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handler = handler
}
