package orchestrator

import (
	"context"
	"time"

	"ghostqa/internal/logging"
	"ghostqa/internal/store"
)

// executionLoop pulls the next queued test and runs it; when the queue
// is empty it runs the idle handler instead of sleeping unconditionally,
// so the Orchestrator is never purely idle while enabled.
func (o *Orchestrator) executionLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if o.isPaused() {
			if !sleepCtx(ctx, o.cfg.PollInterval()) {
				return nil
			}
			continue
		}

		t, ok := o.queue.pop()
		if !ok {
			o.idleHandler(ctx)
			if !sleepCtx(ctx, o.cfg.PollInterval()) {
				return nil
			}
			continue
		}

		o.runQueuedTest(ctx, t)
	}
}

// idleHandler retries eligible failed tests past their cooldown and
// schedules a regression sweep if due, rather than letting the execution
// loop go idle with nothing to check.
func (o *Orchestrator) idleHandler(ctx context.Context) {
	o.retryEligible()

	o.mu.Lock()
	due := o.cfg.ContinuousRegression && time.Since(o.lastRegression) >= o.cfg.RegressionInterval()
	o.mu.Unlock()
	if due {
		o.runRegression(ctx)
	}
}

// retryEligible re-enqueues failed tests whose retry cooldown has
// elapsed and whose retry count hasn't exhausted maxRetries.
func (o *Orchestrator) retryEligible() {
	o.mu.Lock()
	defer o.mu.Unlock()

	remaining := o.retryCandidates[:0]
	for _, t := range o.retryCandidates {
		if t.RetryCount < o.cfg.MaxRetries && time.Since(t.CompletedAt) >= o.cfg.RetryCooldown() {
			t.Status = StatusRetrying
			t.RetryCount++
			o.stats.TotalRetried++
			o.queue.push(t)
			continue
		}
		remaining = append(remaining, t)
	}
	o.retryCandidates = remaining
}

// runRegression enqueues every known discovered feature at Background
// priority.
func (o *Orchestrator) runRegression(ctx context.Context) {
	if o.source == nil {
		return
	}
	projects, err := o.source.ListProjects(ctx)
	if err != nil {
		logging.OrchestratorDebug("regression: list projects failed: %v", err)
		return
	}
	for _, p := range projects {
		for _, f := range p.Features {
			o.QueueFeature(p.ID, f.ID, f.TestCase, PriorityBackground)
		}
	}

	o.mu.Lock()
	o.lastRegression = time.Now()
	o.mu.Unlock()
	logging.Orchestrator("regression sweep enqueued %d projects", len(projects))
}

// discoveryLoop periodically enumerates all projects, enqueueing any
// feature not previously seen at Normal priority.
func (o *Orchestrator) discoveryLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		projects, err := o.source.ListProjects(ctx)
		if err != nil {
			logging.OrchestratorDebug("discovery: list projects failed: %v", err)
		} else {
			o.discoverNew(projects)
		}

		if !sleepCtx(ctx, o.cfg.DiscoveryInterval()) {
			return nil
		}
	}
}

func (o *Orchestrator) discoverNew(projects []Project) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, p := range projects {
		for _, f := range p.Features {
			key := p.ID + ":" + f.ID
			if o.seenFeatures[key] {
				continue
			}
			o.seenFeatures[key] = true
			o.queue.push(&QueuedTest{
				ID: key, ProjectID: p.ID, FeatureID: f.ID, Priority: PriorityNormal,
				Status: StatusQueued, TestCase: f.TestCase, EnqueuedAt: time.Now(),
			})
		}
	}
}

// runQueuedTest executes one test via the Unified Executor, records the
// result to history, and schedules a retry candidacy on failure.
func (o *Orchestrator) runQueuedTest(ctx context.Context, t *QueuedTest) {
	o.mu.Lock()
	if time.Since(o.lastRunAt) < o.cfg.MinTimeBetweenRuns() {
		o.mu.Unlock()
		time.Sleep(o.cfg.MinTimeBetweenRuns() - time.Since(o.lastRunAt))
		o.mu.Lock()
	}
	o.lastRunAt = time.Now()
	o.mu.Unlock()

	t.Status = StatusRunning
	result := o.runner.Run(ctx, t.TestCase)
	t.LastResult = &result
	t.CompletedAt = time.Now()

	o.mu.Lock()
	o.stats.TotalExecuted++
	if result.Status == "passed" {
		o.stats.TotalPassed++
		t.Status = StatusPassed
	} else {
		o.stats.TotalFailed++
		t.Status = StatusFailed
		o.retryCandidates = append(o.retryCandidates, t)
	}
	o.mu.Unlock()

	if o.history != nil {
		err := o.history.Record(store.HistoryEntry{
			ID: t.ID, TestID: t.TestCase.ID, Name: t.TestCase.Name, Status: string(t.Status),
			PassRate: stepPassRate(result.PassedSteps, result.TotalSteps), DurationMs: result.Duration.Milliseconds(),
			ProjectID: t.ProjectID, FeatureID: t.FeatureID, CompletedAt: t.CompletedAt,
		})
		if err != nil {
			logging.OrchestratorDebug("execution history record failed for %s: %v", t.ID, err)
		}
	}
}

func stepPassRate(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(passed) / float64(total)
}

// sleepCtx sleeps for d or until ctx is cancelled, returning false if the
// context was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
