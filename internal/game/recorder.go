package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gildhall/gildhall-server-go/internal/game/effects"
)

// ActivationRecord is one resolved activation in the run log: who fired
// and what every effect did, in dispatch order.
type ActivationRecord struct {
	Turn       int
	SourceID   string
	SourceName string
	Results    []effects.Result
}

// RunRecorder keeps the activation log of a run and can persist it as a
// gzipped gob file for postmortems and balance analysis.
type RunRecorder struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	runID   string
	records []ActivationRecord
}

// NewRunRecorder creates a recorder for one run.
func NewRunRecorder(runID string, logger *zap.Logger) *RunRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunRecorder{
		logger:  logger,
		runID:   runID,
		records: make([]ActivationRecord, 0, 64),
	}
}

// Record appends an activation to the log.
func (rr *RunRecorder) Record(rec ActivationRecord) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	rr.records = append(rr.records, rec)
}

// Size returns the number of recorded activations.
func (rr *RunRecorder) Size() int {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return len(rr.records)
}

// Records returns a copy of the log, oldest first.
func (rr *RunRecorder) Records() []ActivationRecord {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	out := make([]ActivationRecord, len(rr.records))
	copy(out, rr.records)
	return out
}

// RecordAt returns the record at index, or false when out of range.
func (rr *RunRecorder) RecordAt(index int) (ActivationRecord, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	if index < 0 || index >= len(rr.records) {
		return ActivationRecord{}, false
	}
	return rr.records[index], true
}

// logMetadata heads a saved log file.
type logMetadata struct {
	RunID       string
	SavedAt     time.Time
	Version     int
	RecordCount int
}

const logVersion = 1

// SaveToFile writes the log to <dir>/<runID>.log.gz.
func (rr *RunRecorder) SaveToFile(dir string) error {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.Create(logFilename(dir, rr.runID))
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	defer zw.Close()
	enc := gob.NewEncoder(zw)

	meta := logMetadata{
		RunID:       rr.runID,
		SavedAt:     time.Now(),
		Version:     logVersion,
		RecordCount: len(rr.records),
	}
	if err := enc.Encode(&meta); err != nil {
		return fmt.Errorf("encode log metadata: %w", err)
	}
	for i := range rr.records {
		if err := enc.Encode(&rr.records[i]); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}

	rr.logger.Info("Saved activation log",
		zap.String("run_id", rr.runID),
		zap.Int("records", len(rr.records)),
		zap.String("dir", dir))
	return nil
}

// LoadRecordsFromFile reads a saved activation log back.
func LoadRecordsFromFile(dir, runID string) ([]ActivationRecord, error) {
	file, err := os.Open(logFilename(dir, runID))
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer zr.Close()
	dec := gob.NewDecoder(zr)

	var meta logMetadata
	if err := dec.Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode log metadata: %w", err)
	}
	if meta.Version != logVersion {
		return nil, fmt.Errorf("unsupported log version %d", meta.Version)
	}

	records := make([]ActivationRecord, 0, meta.RecordCount)
	for i := 0; i < meta.RecordCount; i++ {
		var rec ActivationRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func logFilename(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.log.gz", runID))
}
