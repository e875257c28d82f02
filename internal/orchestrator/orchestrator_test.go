package orchestrator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghostqa/internal/actionexecutor"
	"ghostqa/internal/brain"
	"ghostqa/internal/browserdriver"
	"ghostqa/internal/config"
	"ghostqa/internal/decision"
	"ghostqa/internal/learning"
	"ghostqa/internal/patterns"
	"ghostqa/internal/selectorkb"
	"ghostqa/internal/store"
	"ghostqa/internal/unifiedexecutor"
)

type fakeSource struct {
	projects []Project
}

func (f *fakeSource) ListProjects(ctx context.Context) ([]Project, error) { return f.projects, nil }

func passingTestCase(id string) unifiedexecutor.UnifiedTestCase {
	return unifiedexecutor.UnifiedTestCase{
		ID: id, Name: id, Format: unifiedexecutor.FormatActionBased,
		BaseURL: "https://example.com/login",
		Steps: []unifiedexecutor.UnifiedStep{
			{Action: "click", Selector: "#submit", SelectorStrategy: "css"},
		},
	}
}

func newTestOrchestrator(t *testing.T, source ProjectSource) (*Orchestrator, *store.HistoryStore) {
	t.Helper()
	driver := browserdriver.NewRecordingDriverFromPages([]browserdriver.FixturePage{
		{URL: "https://example.com/login", Title: "Sign in", Elements: []browserdriver.FixtureElement{
			{Key: "submit", Selector: "#submit", Text: "Log in", Visible: true},
		}},
	})
	kb := selectorkb.New(config.DefaultKBConfig(), t.TempDir())
	b := brain.New(t.TempDir())
	engine := decision.New(kb, b, nil, config.DefaultExecutionConfig())
	executor := actionexecutor.New(driver, config.DefaultExecutionConfig(), t.TempDir())
	learner := learning.New(kb, b, t.TempDir())
	patternStore := patterns.New(t.TempDir())
	runner := unifiedexecutor.NewRunner(driver, engine, executor, learner, patternStore, nil, unifiedexecutor.ModeStrict)

	hist, err := store.NewHistoryStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)

	cfg := config.DefaultOrchestratorConfig()
	cfg.PollIntervalSec = 0
	cfg.MinTimeBetweenRunsSec = 0
	cfg.MaxQueueSize = 3

	t.Cleanup(func() {
		learner.Close()
		kb.Close()
		patternStore.Close()
		hist.Close()
	})

	return New(cfg, runner, hist, source), hist
}

func TestQueueFeatureAndGetQueueStatus(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	o.QueueFeature("proj", "feat1", passingTestCase("t1"), PriorityHigh)
	status := o.GetQueueStatus()
	assert.Equal(t, 1, status.Total)
	assert.Equal(t, 1, status.Depths[PriorityHigh])
}

func TestQueueOverflowDropsLowestPriorityNewest(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	o.QueueFeature("p", "f1", passingTestCase("t1"), PriorityBackground)
	o.QueueFeature("p", "f2", passingTestCase("t2"), PriorityBackground)
	o.QueueFeature("p", "f3", passingTestCase("t3"), PriorityBackground)
	// queue at capacity (3); next push should evict the most recent Background item
	o.QueueFeature("p", "f4", passingTestCase("t4"), PriorityCritical)

	status := o.GetQueueStatus()
	assert.Equal(t, 3, status.Total)
	assert.Equal(t, 1, status.Depths[PriorityCritical])
	assert.Equal(t, 2, status.Depths[PriorityBackground])
}

func TestExecutionLoopDrainsQueueAndRecordsHistory(t *testing.T) {
	o, hist := newTestOrchestrator(t, nil)
	o.QueueFeature("proj", "feat1", passingTestCase("t1"), PriorityHigh)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, o.Start(ctx))

	assert.Eventually(t, func() bool {
		return o.GetQueueStatus().Total == 0
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, o.Stop())

	entries, err := hist.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDiscoveryLoopEnqueuesUnseenFeatures(t *testing.T) {
	source := &fakeSource{projects: []Project{
		{ID: "proj1", Features: []Feature{{ID: "feat1", TestCase: passingTestCase("dt1")}}},
	}}
	o, _ := newTestOrchestrator(t, source)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, o.Start(ctx))

	assert.Eventually(t, func() bool {
		return o.seenFeatureCount() == 1
	}, 500*time.Millisecond, 10*time.Millisecond)

	require.NoError(t, o.Stop())
}

func TestPauseStopsDequeuing(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	o.Pause()
	o.QueueFeature("p", "f1", passingTestCase("t1"), PriorityHigh)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, o.Start(ctx))
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, o.GetQueueStatus().Total)
	require.NoError(t, o.Stop())
}

func TestGetStatisticsReflectsRunningState(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	stats := o.GetStatistics()
	assert.False(t, stats.Running)
}
