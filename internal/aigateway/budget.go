package aigateway

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ghostqa/internal/logging"
)

// budgetState is the on-disk shape of the budget counters.
type budgetState struct {
	DayStamp    string `json:"day_stamp"`
	HourStamp   string `json:"hour_stamp"`
	UsedToday   int    `json:"used_today"`
	UsedThisHour int   `json:"used_this_hour"`
}

// Budget enforces three rolling token counters (day, hour, per-test),
// reset by wall-clock comparison against stored timestamps.
type Budget struct {
	mu   sync.Mutex
	path string

	dailyCap   int
	hourlyCap  int
	perTestCap int

	state budgetState

	usedThisTest int
}

// NewBudget loads (or initializes) budget state from dataDir.
func NewBudget(dataDir string, dailyCap, hourlyCap, perTestCap int) *Budget {
	b := &Budget{
		path:       filepath.Join(dataDir, "ai_budget.json"),
		dailyCap:   dailyCap,
		hourlyCap:  hourlyCap,
		perTestCap: perTestCap,
	}
	b.load()
	b.rollover()
	return b
}

func dayStamp(t time.Time) string  { return t.UTC().Format("2006-01-02") }
func hourStamp(t time.Time) string { return t.UTC().Format("2006-01-02T15") }

func (b *Budget) load() {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return
	}
	var s budgetState
	if err := json.Unmarshal(data, &s); err != nil {
		logging.AIGatewayWarn("corrupt ai budget state, resetting: %v", err)
		return
	}
	b.state = s
}

// rollover detects day/hour boundary crossings by comparing stored
// timestamps to now and resets the relevant counter(s).
func (b *Budget) rollover() {
	now := time.Now()
	if b.state.DayStamp != dayStamp(now) {
		b.state.DayStamp = dayStamp(now)
		b.state.UsedToday = 0
	}
	if b.state.HourStamp != hourStamp(now) {
		b.state.HourStamp = hourStamp(now)
		b.state.UsedThisHour = 0
	}
}

// StartTest resets the per-test counter; call once per test execution.
func (b *Budget) StartTest() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.usedThisTest = 0
}

// Allow reports whether a request of the given priority may proceed
// without exceeding budget. Critical requests always bypass limits.
func (b *Budget) Allow(priority Priority) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()

	if priority == PriorityCritical {
		return true
	}
	if b.dailyCap > 0 && b.state.UsedToday >= b.dailyCap {
		return false
	}
	if b.hourlyCap > 0 && b.state.UsedThisHour >= b.hourlyCap {
		return false
	}
	if b.perTestCap > 0 && b.usedThisTest >= b.perTestCap {
		return false
	}
	return true
}

// Deduct records tokens spent on a completed request and persists state.
func (b *Budget) Deduct(tokens int) {
	b.mu.Lock()
	b.rollover()
	b.state.UsedToday += tokens
	b.state.UsedThisHour += tokens
	b.usedThisTest += tokens
	state := b.state
	b.mu.Unlock()

	if err := b.save(state); err != nil {
		logging.AIGatewayWarn("failed to persist ai budget state: %v", err)
	}
}

func (b *Budget) save(state budgetState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return err
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, b.path)
}

// UsedToday returns the current day counter.
func (b *Budget) UsedToday() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return b.state.UsedToday
}
