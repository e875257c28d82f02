package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ghostqa/internal/config"
	"ghostqa/internal/logging"
	"ghostqa/internal/store"
	"ghostqa/internal/unifiedexecutor"
)

// Orchestrator is the singleton continuous discover-and-execute loop.
// Callers construct exactly one per process.
type Orchestrator struct {
	cfg     config.OrchestratorConfig
	runner  *unifiedexecutor.Runner
	history *store.HistoryStore
	source  ProjectSource

	queue *priorityQueue

	mu               sync.Mutex
	running          bool
	paused           bool
	lastRegression   time.Time
	lastRunAt        time.Time
	seenFeatures     map[string]bool
	retryCandidates  []*QueuedTest
	stats            Statistics

	cancel context.CancelFunc
	eg     *errgroup.Group
}

// New constructs an Orchestrator. runner executes each QueuedTest's
// UnifiedTestCase; history persists completed runs; source enumerates
// discoverable project work (may be nil to disable the discovery loop).
func New(cfg config.OrchestratorConfig, runner *unifiedexecutor.Runner, history *store.HistoryStore, source ProjectSource) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		runner:       runner,
		history:      history,
		source:       source,
		queue:        newPriorityQueue(cfg.MaxQueueSize),
		seenFeatures: make(map[string]bool),
	}
}

// Start launches the execution and discovery loops. Safe to call once;
// a second call is a no-op.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return nil
	}
	o.running = true
	o.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	eg, egCtx := errgroup.WithContext(runCtx)
	o.eg = eg

	eg.Go(func() error { return o.executionLoop(egCtx) })
	if o.source != nil && o.cfg.DiscoveryIntervalSec > 0 {
		eg.Go(func() error { return o.discoveryLoop(egCtx) })
	}

	logging.Orchestrator("started: poll=%s discovery=%s max_queue=%d", o.cfg.PollInterval(), o.cfg.DiscoveryInterval(), o.cfg.MaxQueueSize)
	return nil
}

// Stop requests both loops to exit and waits for them together, up to the
// longer of the two configured grace periods, before returning.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return nil
	}
	o.running = false
	cancel := o.cancel
	eg := o.eg
	o.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()

	grace := o.cfg.StopGraceExecution()
	if o.cfg.StopGraceDiscovery() > grace {
		grace = o.cfg.StopGraceDiscovery()
	}
	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		logging.Orchestrator("stop: grace period elapsed before loops exited")
		return nil
	}
}

// Pause prevents the execution loop from dequeuing new work until Resume.
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	o.paused = true
	o.mu.Unlock()
}

// Resume re-enables dequeuing.
func (o *Orchestrator) Resume() {
	o.mu.Lock()
	o.paused = false
	o.mu.Unlock()
}

func (o *Orchestrator) isPaused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paused
}

// QueueFeature enqueues a single feature's test case at the given priority.
func (o *Orchestrator) QueueFeature(projectID, featureID string, tc unifiedexecutor.UnifiedTestCase, priority Priority) string {
	id := uuid.NewString()
	o.queue.push(&QueuedTest{
		ID: id, ProjectID: projectID, FeatureID: featureID, Priority: priority,
		Status: StatusQueued, TestCase: tc, EnqueuedAt: time.Now(),
	})
	return id
}

// QueueProjectTests enqueues every known feature of a project at the
// given priority.
func (o *Orchestrator) QueueProjectTests(ctx context.Context, projectID string, priority Priority) (int, error) {
	if o.source == nil {
		return 0, fmt.Errorf("orchestrator: no project source configured")
	}
	projects, err := o.source.ListProjects(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range projects {
		if p.ID != projectID {
			continue
		}
		for _, f := range p.Features {
			o.QueueFeature(p.ID, f.ID, f.TestCase, priority)
			n++
		}
	}
	return n, nil
}

// GetStatistics returns a snapshot of Orchestrator activity.
func (o *Orchestrator) GetStatistics() Statistics {
	o.mu.Lock()
	defer o.mu.Unlock()
	stats := o.stats
	stats.QueueDepth = o.queue.size()
	stats.LastRegression = o.lastRegression
	stats.Running = o.running
	stats.Paused = o.paused
	return stats
}

// GetQueueStatus reports per-priority queue depths.
func (o *Orchestrator) GetQueueStatus() QueueStatus { return o.queue.depths() }

// seenFeatureCount reports how many distinct features discovery has seen;
// exported only within the package, for test assertions.
func (o *Orchestrator) seenFeatureCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.seenFeatures)
}

// GetExecutionHistory returns the most recent completed runs.
func (o *Orchestrator) GetExecutionHistory(limit int) ([]store.HistoryEntry, error) {
	if o.history == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = o.cfg.HistorySize
	}
	return o.history.Recent(limit)
}
