package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gildhall/gildhall-server-go/internal/content"
	"github.com/gildhall/gildhall-server-go/internal/game/rules"
)

// ErrRunNotFound is returned when a run ID does not resolve.
var ErrRunNotFound = errors.New("run not found")

// RunNotification is a run event forwarded to push subscribers such as the
// websocket gateway.
type RunNotification struct {
	RunID     string          `json:"run_id"`
	Type      rules.EventType `json:"type"`
	SourceID  string          `json:"source_id,omitempty"`
	TargetID  string          `json:"target_id,omitempty"`
	Amount    int             `json:"amount,omitempty"`
	Flag      bool            `json:"flag,omitempty"`
	Data      string          `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NotificationHandler receives forwarded run events.
type NotificationHandler func(RunNotification)

// Service is the run-facing surface transports consume. Manager implements
// it against live runs; NullService is the logging stub for gateway tests.
type Service interface {
	StartRun(seed int64) (*RunView, error)
	View(runID string) (*RunView, error)
	PlayCard(runID, cardID string) (*RunView, error)
	SelectTargets(runID string, targets []string) (*RunView, error)
	CancelTargeting(runID string) (*RunView, error)
	EndTurn(runID string) (*RunView, error)
	ChoosePromotion(runID, unitID, jobID string) (*RunView, error)
	AbandonRun(runID string) error
	SetNotificationHandler(handler NotificationHandler)
}

// Manager owns the live runs of this server process.
type Manager struct {
	logger  *zap.Logger
	catalog *content.Catalog
	cfg     RunConfig
	logDir  string

	mu                  sync.RWMutex
	runs                map[string]*Run
	busHandles          map[string]int
	notificationHandler NotificationHandler
}

// NewManager creates a run manager. cfg is the template each new run is
// stamped from; logDir, when set, is where finished runs' activation logs
// land.
func NewManager(catalog *content.Catalog, cfg RunConfig, logDir string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:     logger,
		catalog:    catalog,
		cfg:        cfg,
		logDir:     logDir,
		runs:       make(map[string]*Run),
		busHandles: make(map[string]int),
	}
}

// SetNotificationHandler wires a push subscriber. Handlers run on their own
// goroutine so run logic never blocks on a slow consumer.
func (m *Manager) SetNotificationHandler(handler NotificationHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationHandler = handler
}

func (m *Manager) emit(evt rules.Event) {
	m.mu.RLock()
	handler := m.notificationHandler
	m.mu.RUnlock()
	if handler == nil {
		return
	}
	go handler(RunNotification{
		RunID:     evt.RunID,
		Type:      evt.Type,
		SourceID:  evt.SourceID,
		TargetID:  evt.TargetID,
		Amount:    evt.Amount,
		Flag:      evt.Flag,
		Data:      evt.Data,
		Timestamp: evt.Timestamp,
	})
}

// CreateRun builds, registers and starts a run. Seed zero draws a
// wall-clock seed.
func (m *Manager) CreateRun(seed int64) (*Run, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := m.cfg
	cfg.Seed = seed

	run, err := NewRun(cfg, m.catalog, m.logger)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	handle := run.Bus().Subscribe(func(evt rules.Event) {
		m.emit(evt)
		if evt.Type == rules.EventRunEnded && m.logDir != "" {
			go m.saveLog(run)
		}
	})

	m.mu.Lock()
	m.runs[run.ID] = run
	m.busHandles[run.ID] = handle
	m.mu.Unlock()

	run.Start()

	m.logger.Info("Run created",
		zap.String("run_id", run.ID),
		zap.Int64("seed", seed))
	return run, nil
}

func (m *Manager) saveLog(run *Run) {
	if err := run.Recorder().SaveToFile(m.logDir); err != nil {
		m.logger.Warn("failed to save activation log",
			zap.String("run_id", run.ID),
			zap.Error(err))
	}
}

// Run returns a live run by ID.
func (m *Manager) Run(runID string) (*Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	return run, ok
}

// RemoveRun drops a run from the manager.
func (m *Manager) RemoveRun(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return
	}
	run.Bus().Unsubscribe(m.busHandles[runID])
	delete(m.busHandles, runID)
	delete(m.runs, runID)
	m.logger.Info("Run removed", zap.String("run_id", runID))
}

// RunCount returns the number of live runs.
func (m *Manager) RunCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

// --- Service ---

// StartRun implements Service.
func (m *Manager) StartRun(seed int64) (*RunView, error) {
	run, err := m.CreateRun(seed)
	if err != nil {
		return nil, err
	}
	return run.View(), nil
}

// View implements Service.
func (m *Manager) View(runID string) (*RunView, error) {
	run, ok := m.Run(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run.View(), nil
}

// PlayCard implements Service.
func (m *Manager) PlayCard(runID, cardID string) (*RunView, error) {
	run, ok := m.Run(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if _, err := run.PlayCard(cardID); err != nil {
		return nil, err
	}
	return run.View(), nil
}

// SelectTargets implements Service.
func (m *Manager) SelectTargets(runID string, targets []string) (*RunView, error) {
	run, ok := m.Run(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if _, err := run.Resume(targets); err != nil {
		return nil, err
	}
	return run.View(), nil
}

// CancelTargeting implements Service.
func (m *Manager) CancelTargeting(runID string) (*RunView, error) {
	run, ok := m.Run(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if _, err := run.CancelTargeting(); err != nil {
		return nil, err
	}
	return run.View(), nil
}

// EndTurn implements Service.
func (m *Manager) EndTurn(runID string) (*RunView, error) {
	run, ok := m.Run(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if _, err := run.EndTurn(); err != nil {
		return nil, err
	}
	return run.View(), nil
}

// ChoosePromotion implements Service.
func (m *Manager) ChoosePromotion(runID, unitID, jobID string) (*RunView, error) {
	run, ok := m.Run(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err := run.ResolvePromotion(unitID, jobID); err != nil {
		return nil, err
	}
	return run.View(), nil
}

// AbandonRun implements Service.
func (m *Manager) AbandonRun(runID string) error {
	run, ok := m.Run(runID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	run.Abandon()
	m.RemoveRun(runID)
	return nil
}
