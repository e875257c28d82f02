package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// LedgerEntry is one learning event, mirrored into SQLite so the JSONL
// audit trail (internal/learning) gains a queryable index alongside its
// append-only file form.
type LedgerEntry struct {
	EventType string
	Domain    string
	Page      string
	Selector  string
	Success   bool
	Message   string
	Recorded  time.Time
}

// LedgerStore is a queryable mirror of the Learning Engine's event
// stream, over modernc.org/sqlite (pure-Go driver name "sqlite").
type LedgerStore struct {
	db *sql.DB
}

// NewLedgerStore opens (creating if absent) the ledger database at path.
func NewLedgerStore(path string) (*LedgerStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w", err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger store: %w", err)
	}
	return &LedgerStore{db: db}, nil
}

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS learning_ledger (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type TEXT NOT NULL,
	domain     TEXT,
	page       TEXT,
	selector   TEXT,
	success    INTEGER NOT NULL,
	message    TEXT,
	recorded_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_learning_ledger_recorded_at ON learning_ledger(recorded_at);
`

// Append inserts one ledger entry. Callers treat failures as best-effort
// (the JSONL file remains the source of truth) rather than propagating
// them into event dispatch.
func (s *LedgerStore) Append(e LedgerEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO learning_ledger (event_type, domain, page, selector, success, message, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.EventType, e.Domain, e.Page, e.Selector, boolToInt(e.Success), e.Message, e.Recorded,
	)
	return err
}

// Recent returns the most recently recorded entries, newest first.
func (s *LedgerStore) Recent(limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT event_type, domain, page, selector, success, message, recorded_at
		 FROM learning_ledger ORDER BY recorded_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		var success int
		if err := rows.Scan(&e.EventType, &e.Domain, &e.Page, &e.Selector, &success, &e.Message, &e.Recorded); err != nil {
			return nil, err
		}
		e.Success = success != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *LedgerStore) Close() error { return s.db.Close() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
