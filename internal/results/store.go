// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results persists benchmark run records in a SQLite database and
// answers leaderboard and statistics queries over them.
// See docs/ARCHITECTURE.md § Results Store.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scipathbench/pkg/types"
)

const dbFile = "runs.db"

// Store manages the run results SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the results database at resultsDir/runs.db,
// creating the schema if it does not exist.
func NewStore(resultsDir string) (*Store, error) {
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}

	dbPath := filepath.Join(resultsDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			start_id TEXT NOT NULL,
			end_id TEXT NOT NULL,
			ground_truth_length INTEGER NOT NULL,
			difficulty TEXT,
			decider TEXT NOT NULL,
			model TEXT,
			status TEXT NOT NULL,
			agent_path TEXT,
			turns INTEGER NOT NULL,
			success INTEGER NOT NULL,
			optimality REAL,
			steps_used INTEGER NOT NULL,
			faithful INTEGER NOT NULL,
			transcript TEXT,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_decider ON runs(decider)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save persists one run record. A missing ID is assigned a fresh UUID; the
// assigned value is written back into r.
func (s *Store) Save(ctx context.Context, r *types.RunResult) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	pathJSON, err := json.Marshal(r.AgentPath)
	if err != nil {
		return fmt.Errorf("encoding agent path: %w", err)
	}
	transcriptJSON, err := json.Marshal(r.Transcript)
	if err != nil {
		return fmt.Errorf("encoding transcript: %w", err)
	}

	var optimality any
	if r.Score.Optimality != nil {
		optimality = *r.Score.Optimality
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs
			(id, start_id, end_id, ground_truth_length, difficulty, decider, model,
			 status, agent_path, turns, success, optimality, steps_used, faithful,
			 transcript, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Task.StartID, r.Task.EndID, r.Task.GroundTruthLength,
		string(r.Task.Difficulty), r.Decider, r.Model, string(r.Status),
		string(pathJSON), r.Turns, r.Score.Success, optimality,
		r.Score.StepsUsed, r.Score.Faithful, string(transcriptJSON),
		r.StartedAt.UTC().Format(time.RFC3339Nano), r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", r.ID, err)
	}
	return nil
}

// Get returns the run with the given ID.
func (s *Store) Get(ctx context.Context, id string) (types.RunResult, error) {
	rows, err := s.query(ctx, `WHERE id = ?`, 1, id)
	if err != nil {
		return types.RunResult{}, err
	}
	if len(rows) == 0 {
		return types.RunResult{}, fmt.Errorf("run %s not found", id)
	}
	return rows[0], nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.RunResult, error) {
	return s.query(ctx, ``, limit)
}

// ByDecider returns up to limit runs for one decision maker, newest first.
func (s *Store) ByDecider(ctx context.Context, decider string, limit int) ([]types.RunResult, error) {
	return s.query(ctx, `WHERE decider = ?`, limit, decider)
}

func (s *Store) query(ctx context.Context, where string, limit int, args ...any) ([]types.RunResult, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id, start_id, end_id, ground_truth_length, difficulty, decider,
			model, status, agent_path, turns, success, optimality, steps_used,
			faithful, transcript, started_at, duration_ms
		FROM runs ` + where + ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []types.RunResult
	for rows.Next() {
		var (
			r              types.RunResult
			difficulty     string
			status         string
			pathJSON       string
			optimality     sql.NullFloat64
			transcriptJSON string
			startedAt      string
			durationMS     int64
		)
		if err := rows.Scan(&r.ID, &r.Task.StartID, &r.Task.EndID,
			&r.Task.GroundTruthLength, &difficulty, &r.Decider, &r.Model,
			&status, &pathJSON, &r.Turns, &r.Score.Success, &optimality,
			&r.Score.StepsUsed, &r.Score.Faithful, &transcriptJSON,
			&startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		r.Task.Difficulty = types.Difficulty(difficulty)
		r.Status = types.RunStatus(status)
		if optimality.Valid {
			v := optimality.Float64
			r.Score.Optimality = &v
		}
		if err := json.Unmarshal([]byte(pathJSON), &r.AgentPath); err != nil {
			return nil, fmt.Errorf("decoding agent path for %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(transcriptJSON), &r.Transcript); err != nil {
			return nil, fmt.Errorf("decoding transcript for %s: %w", r.ID, err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parsing start time for %s: %w", r.ID, err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}
