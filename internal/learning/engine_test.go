package learning

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghostqa/internal/brain"
	"ghostqa/internal/config"
	"ghostqa/internal/selectorkb"
)

func newTestEngine(t *testing.T) (*Engine, *selectorkb.KB, string) {
	t.Helper()
	kb := selectorkb.New(config.DefaultKBConfig(), t.TempDir())
	b := brain.New(t.TempDir())
	auditDir := filepath.Join(t.TempDir(), "events")
	e := New(kb, b, auditDir)
	t.Cleanup(func() {
		e.Close()
		kb.Close()
	})
	return e, kb, auditDir
}

func waitForQueueDrain() { time.Sleep(50 * time.Millisecond) }

func TestActionSuccessEventUpdatesKB(t *testing.T) {
	e, kb, _ := newTestEngine(t)
	e.RecordEvent(Event{Type: EventActionSuccess, Domain: "example.com", Page: "/login", Target: "username", Selector: "#u", Strategy: "css"})
	waitForQueueDrain()

	elem, ok := kb.Lookup("example.com", "/login", "username")
	require.True(t, ok)
	assert.Equal(t, "#u", elem.BestSelector().Value)
}

func TestActionFailureDecrementsConfidence(t *testing.T) {
	e, kb, _ := newTestEngine(t)
	e.RecordEvent(Event{Type: EventActionSuccess, Domain: "example.com", Page: "/login", Target: "username", Selector: "#u", Strategy: "css"})
	e.RecordEvent(Event{Type: EventActionFailure, Domain: "example.com", Page: "/login", Target: "username", Selector: "#u", Strategy: "css", Message: "not found"})
	waitForQueueDrain()

	elem, ok := kb.Lookup("example.com", "/login", "username")
	require.True(t, ok)
	assert.Equal(t, 1, elem.BestSelector().Failures)
}

func TestSessionLifecycleRecordsWorkflow(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartSession("sess-1")
	e.RecordEvent(Event{Type: EventPageLoaded, SessionID: "sess-1", Page: "/login", PageType: "auth", Action: "navigate"})
	e.RecordEvent(Event{Type: EventActionSuccess, SessionID: "sess-1", Page: "/dashboard", PageType: "dashboard", Action: "submit", Domain: "x", Target: "t", Selector: "#s", Strategy: "css"})
	waitForQueueDrain()

	e.EndSession("sess-1", true)
	waitForQueueDrain()
}

func TestAuditTrailAppendsJSONL(t *testing.T) {
	e, _, auditDir := newTestEngine(t)
	e.RecordEvent(Event{Type: EventPageLoaded, Page: "/x", PageType: "unknown"})
	waitForQueueDrain()

	entries, err := os.ReadDir(auditDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestConsolidateDoesNotPanic(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Consolidate()
}
