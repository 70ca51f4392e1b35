package repository

import (
	"context"
	"fmt"
	"time"
)

// FinishedRun is a completed run as stored for the leaderboard and history
// queries.
type FinishedRun struct {
	ID          string
	AccountName string
	Seed        int64
	Turns       int
	Score       int
	EndReason   string
	GoldEarned  int
	CardsPlayed int
	FinishedAt  time.Time
}

// RunRepository reads and writes finished runs.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a run repository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// InsertFinished stores a completed run.
func (r *RunRepository) InsertFinished(ctx context.Context, run FinishedRun) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	_, err := r.db.pool.Exec(ctx,
		`INSERT INTO runs (id, account_name, seed, turns, score, end_reason, gold_earned, cards_played, finished_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		run.ID, run.AccountName, run.Seed, run.Turns, run.Score,
		run.EndReason, run.GoldEarned, run.CardsPlayed, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert finished run: %w", err)
	}
	return nil
}

// TopRuns returns the highest-scoring runs, best first.
func (r *RunRepository) TopRuns(ctx context.Context, limit int) ([]FinishedRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.pool.Query(ctx,
		`SELECT id, COALESCE(account_name, ''), seed, turns, score, end_reason, gold_earned, cards_played, finished_at
		 FROM runs ORDER BY score DESC, finished_at ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top runs: %w", err)
	}
	defer rows.Close()

	var out []FinishedRun
	for rows.Next() {
		var run FinishedRun
		if err := rows.Scan(
			&run.ID, &run.AccountName, &run.Seed, &run.Turns, &run.Score,
			&run.EndReason, &run.GoldEarned, &run.CardsPlayed, &run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return out, nil
}

// AccountRuns returns an account's runs, newest first.
func (r *RunRepository) AccountRuns(ctx context.Context, accountName string, limit int) ([]FinishedRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.pool.Query(ctx,
		`SELECT id, COALESCE(account_name, ''), seed, turns, score, end_reason, gold_earned, cards_played, finished_at
		 FROM runs WHERE account_name = $1 ORDER BY finished_at DESC LIMIT $2`,
		accountName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query account runs: %w", err)
	}
	defer rows.Close()

	var out []FinishedRun
	for rows.Next() {
		var run FinishedRun
		if err := rows.Scan(
			&run.ID, &run.AccountName, &run.Seed, &run.Turns, &run.Score,
			&run.EndReason, &run.GoldEarned, &run.CardsPlayed, &run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return out, nil
}
