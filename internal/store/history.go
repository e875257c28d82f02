// Package store provides the embedded SQLite persistence the JSON/JSONL
// contracts elsewhere in this module deliberately avoid: the Orchestrator's
// queryable execution history, and a queryable mirror of the Learning
// Engine's audit trail.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ghostqa/internal/logging"
)

// HistoryEntry is one completed test execution, as recorded for
// Orchestrator.getExecutionHistory.
type HistoryEntry struct {
	ID          string
	TestID      string
	Name        string
	Status      string
	PassRate    float64
	DurationMs  int64
	ProjectID   string
	FeatureID   string
	CompletedAt time.Time
}

// HistoryStore is the Orchestrator's execution-history backing store,
// over github.com/mattn/go-sqlite3 (cgo driver name "sqlite3").
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore opens (creating if absent) the history database at path.
func NewHistoryStore(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history store: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

const historySchema = `
CREATE TABLE IF NOT EXISTS execution_history (
	id           TEXT PRIMARY KEY,
	test_id      TEXT NOT NULL,
	name         TEXT NOT NULL,
	status       TEXT NOT NULL,
	pass_rate    REAL NOT NULL,
	duration_ms  INTEGER NOT NULL,
	project_id   TEXT,
	feature_id   TEXT,
	completed_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_execution_history_completed_at ON execution_history(completed_at);
`

// Record inserts or replaces one execution-history entry.
func (s *HistoryStore) Record(e HistoryEntry) error {
	timer := logging.StartTimer(logging.CategoryStore, "history_record")
	defer timer.Stop()

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO execution_history (id, test_id, name, status, pass_rate, duration_ms, project_id, feature_id, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TestID, e.Name, e.Status, e.PassRate, e.DurationMs, e.ProjectID, e.FeatureID, e.CompletedAt,
	)
	return err
}

// Recent returns the most recently completed entries, newest first,
// bounded by limit).
func (s *HistoryStore) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, test_id, name, status, pass_rate, duration_ms, project_id, feature_id, completed_at
		 FROM execution_history ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.TestID, &e.Name, &e.Status, &e.PassRate, &e.DurationMs, &e.ProjectID, &e.FeatureID, &e.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *HistoryStore) Close() error { return s.db.Close() }
