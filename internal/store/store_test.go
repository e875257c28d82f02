package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStoreRecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewHistoryStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	now := time.Now()
	require.NoError(t, s.Record(HistoryEntry{ID: "r1", TestID: "t1", Name: "login", Status: "passed", PassRate: 1.0, DurationMs: 120, CompletedAt: now}))
	require.NoError(t, s.Record(HistoryEntry{ID: "r2", TestID: "t2", Name: "checkout", Status: "failed", PassRate: 0.5, DurationMs: 340, CompletedAt: now.Add(time.Second)}))

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "r2", entries[0].ID) // newest first
}

func TestHistoryStoreRecentDefaultsLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewHistoryStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	entries, err := s.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLedgerStoreAppendAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := NewLedgerStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Append(LedgerEntry{EventType: "ActionSuccess", Domain: "example.com", Selector: "#a", Success: true, Recorded: time.Now()}))
	require.NoError(t, s.Append(LedgerEntry{EventType: "ActionFailure", Domain: "example.com", Selector: "#b", Success: false, Recorded: time.Now().Add(time.Second)}))

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ActionFailure", entries[0].EventType)
	assert.False(t, entries[0].Success)
}
