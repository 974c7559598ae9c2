// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists tool execution records for auditing and stats.
//
// The store is a single-writer SQLite database (pure Go driver). Every
// dispatch through the registry lands here as one row; Recent and Stats
// serve the service protocol's inspection ops. Recording is best-effort:
// the registry logs store errors and keeps serving.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultRetention is how many execution rows Prune keeps by default.
const DefaultRetention = 1000

// Schema is the execution log schema.
const Schema = `
CREATE TABLE IF NOT EXISTS executions (
    id TEXT PRIMARY KEY,
    tool TEXT NOT NULL,
    args TEXT NOT NULL,
    success INTEGER NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    truncated INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL,
    started_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_executions_tool ON executions(tool);
CREATE INDEX IF NOT EXISTS idx_executions_started_at ON executions(started_at);
`

// Execution is one recorded tool dispatch.
type Execution struct {
	ID         string
	Tool       string
	ArgsJSON   string
	Success    bool
	Error      string
	Truncated  bool
	DurationMS int64
	StartedAt  time.Time
}

// Stats summarizes the store contents. The JSON form is served verbatim by
// the service's stats op.
type Stats struct {
	Total         int64            `json:"total"`
	Failures      int64            `json:"failures"`
	AvgDurationMS float64          `json:"avg_duration_ms"`
	ByTool        map[string]int64 `json:"by_tool"`
}

// Store is a SQLite-backed execution log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite supports one writer at a time; keep a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record inserts one execution row.
func (s *Store) Record(e Execution) error {
	_, err := s.db.Exec(`
		INSERT INTO executions (id, tool, args, success, error, truncated, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Tool, e.ArgsJSON, boolToInt(e.Success), e.Error, boolToInt(e.Truncated),
		e.DurationMS, e.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record execution: %w", err)
	}
	return nil
}

// Recent returns up to limit executions, newest first.
func (s *Store) Recent(limit int) ([]Execution, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, tool, args, success, error, truncated, duration_ms, started_at
		FROM executions
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	var out []Execution
	for rows.Next() {
		var e Execution
		var success, truncated int
		var startedAt string
		if err := rows.Scan(&e.ID, &e.Tool, &e.ArgsJSON, &success, &e.Error,
			&truncated, &e.DurationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		e.Success = success != 0
		e.Truncated = truncated != 0
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			e.StartedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats aggregates the store.
func (s *Store) Stats() (Stats, error) {
	st := Stats{ByTool: make(map[string]int64)}

	row := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(duration_ms), 0)
		FROM executions
	`)
	if err := row.Scan(&st.Total, &st.Failures, &st.AvgDurationMS); err != nil {
		return st, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	rows, err := s.db.Query(`SELECT tool, COUNT(*) FROM executions GROUP BY tool`)
	if err != nil {
		return st, fmt.Errorf("failed to aggregate per-tool stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tool string
		var n int64
		if err := rows.Scan(&tool, &n); err != nil {
			return st, fmt.Errorf("failed to scan per-tool stats: %w", err)
		}
		st.ByTool[tool] = n
	}
	return st, rows.Err()
}

// Prune deletes the oldest rows beyond keep. keep <= 0 uses DefaultRetention.
func (s *Store) Prune(keep int) error {
	if keep <= 0 {
		keep = DefaultRetention
	}
	_, err := s.db.Exec(`
		DELETE FROM executions
		WHERE id NOT IN (
			SELECT id FROM executions ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("failed to prune executions: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
