package unifiedexecutor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"ghostqa/internal/actionexecutor"
	"ghostqa/internal/browserdriver"
	"ghostqa/internal/decision"
	"ghostqa/internal/learning"
	"ghostqa/internal/patterns"
	"ghostqa/internal/testdata"
)

// Runner drives UnifiedTestCases through Decision Engine -> Action
// Executor -> Learning Engine.
type Runner struct {
	driver   browserdriver.Driver
	engine   *decision.Engine
	executor *actionexecutor.Executor
	learner  *learning.Engine
	patterns *patterns.Store
	ai       StepInterpreter
	mode     Mode

	stopRequested atomic.Bool
}

// NewRunner wires the components a test run needs. ai may be nil (Strict
// mode never calls it regardless).
func NewRunner(driver browserdriver.Driver, engine *decision.Engine, executor *actionexecutor.Executor, learner *learning.Engine, store *patterns.Store, ai StepInterpreter, mode Mode) *Runner {
	return &Runner{driver: driver, engine: engine, executor: executor, learner: learner, patterns: store, ai: ai, mode: mode}
}

// RequestStop asks the current/next Run to stop at the next step
// boundary.
func (r *Runner) RequestStop() { r.stopRequested.Store(true) }

// ForceStop interrupts a blocking driver call by closing it outright.
func (r *Runner) ForceStop() error {
	r.stopRequested.Store(true)
	return r.driver.Close()
}

// Reset clears a prior stop request so the Runner can be reused for a
// fresh test case.
func (r *Runner) Reset() { r.stopRequested.Store(false) }

// effectiveSteps expands a UnifiedTestCase into the concrete step
// sequence to run: background steps (if any) prepended to the case's own
// steps.
func effectiveSteps(tc UnifiedTestCase) []UnifiedStep {
	if len(tc.BackgroundSteps) == 0 {
		return tc.Steps
	}
	out := make([]UnifiedStep, 0, len(tc.BackgroundSteps)+len(tc.Steps))
	out = append(out, tc.BackgroundSteps...)
	out = append(out, tc.Steps...)
	return out
}

// Run executes one UnifiedTestCase to completion (or until stopped).
func (r *Runner) Run(ctx context.Context, tc UnifiedTestCase) UnifiedTestResult {
	started := time.Now()
	result := UnifiedTestResult{ID: tc.ID, Name: tc.Name, Format: tc.Format, StartedAt: started}

	sessionID := tc.ID
	if r.learner != nil {
		r.learner.StartSession(sessionID)
	}

	if tc.BaseURL != "" {
		if err := r.driver.Navigate(ctx, tc.BaseURL); err != nil {
			result.Status = TestError
			result.CompletedAt = time.Now()
			result.Duration = result.CompletedAt.Sub(started)
			if r.learner != nil {
				r.learner.EndSession(sessionID, false)
			}
			return result
		}
	}

	domain := domainOf(tc.BaseURL)
	steps := effectiveSteps(tc)
	result.TotalSteps = len(steps)

	dataSession := testdata.NewSession()

	allPassed := true
	for i, step := range steps {
		if r.stopRequested.Load() {
			result.StepResults = append(result.StepResults, StepResult{Step: step, Status: "skipped"})
			continue
		}

		sr := r.runStep(ctx, domain, tc, step, dataSession)
		result.StepResults = append(result.StepResults, sr)

		switch sr.Status {
		case "passed":
			result.PassedSteps++
		case "recovered":
			result.RecoveredSteps++
			result.PassedSteps++
		default:
			result.FailedSteps++
			allPassed = false
		}
		_ = i
	}

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(started)

	switch {
	case r.stopRequested.Load() && result.PassedSteps+result.FailedSteps < result.TotalSteps:
		result.Status = TestSkipped
	case allPassed:
		result.Status = TestPassed
	default:
		result.Status = TestFailed
	}

	if r.learner != nil {
		r.learner.EndSession(sessionID, allPassed)
	}
	return result
}

func (r *Runner) runStep(ctx context.Context, domain string, tc UnifiedTestCase, step UnifiedStep, dataSession *testdata.Session) StepResult {
	start := time.Now()
	pageContext := tc.Name

	aiResolved := false
	if tc.Format == FormatBehaviorDriven {
		step, aiResolved = interpretStep(step, pageContext, r.patterns, r.ai, r.mode)
	}

	if dataSession != nil {
		if generated, ok := dataSession.Resolve(step.Value); ok {
			step.Value = generated
		}
	}

	page, _ := r.driver.CurrentURL(ctx)

	originalIntent := step.Selector
	selector := step.Selector
	strategy := step.SelectorStrategy
	if selector != "" && r.engine != nil {
		dec := r.engine.Resolve(decision.Request{
			Type: decision.TypeFindElement, Domain: domain, Page: page, Intent: selector,
			DisallowAI: r.mode == ModeStrict,
		})
		if dec.Value != "" {
			selector = dec.Value
			strategy = string(dec.Strategy)
			if strategy == "" {
				strategy = "css"
			}
			aiResolved = aiResolved || dec.Source == decision.SourceAIGateway
		}
	}

	res := r.executor.Run(ctx, actionexecutor.Step{
		Action:       actionexecutor.Action(step.Action),
		Selector:     actionexecutor.Selector{Strategy: strategy, Value: selector},
		Alternatives: intentAlternatives(originalIntent, selector),
		Value:        step.Value,
	})

	sr := StepResult{
		Step:       UnifiedStep{Action: step.Action, Selector: selector, Value: step.Value},
		AIResolved: aiResolved,
		DurationMs: time.Since(start).Milliseconds(),
	}

	usedStrategy := res.SelectorStrategy
	if usedStrategy == "" {
		usedStrategy = strategy
	}

	switch res.Status {
	case actionexecutor.StatusSuccess:
		sr.Status = "passed"
		r.recordOutcome(domain, page, step, selector, usedStrategy, true)
	case actionexecutor.StatusRecovered:
		sr.Status = "recovered"
		r.recordOutcome(domain, page, step, selector, usedStrategy, true)
	default:
		sr.Status = "failed"
		sr.ErrorMessage = res.ErrorMessage
		r.recordOutcome(domain, page, step, selector, usedStrategy, false)
	}
	return sr
}

// intentAlternatives derives label/placeholder/role/text candidates from
// the step's original unresolved intent, so healing can fall back to the
// intent that produced a now-stale resolved selector rather than only to
// candidates derived from the stale value itself.
func intentAlternatives(intent, resolved string) []actionexecutor.Selector {
	if intent == "" || intent == resolved {
		return nil
	}
	return []actionexecutor.Selector{
		{Strategy: "label", Value: intent},
		{Strategy: "placeholder", Value: intent},
		{Strategy: "role", Value: intent},
		{Strategy: "text", Value: intent},
	}
}

func (r *Runner) recordOutcome(domain, page string, step UnifiedStep, selector, strategy string, success bool) {
	if r.learner == nil || selector == "" {
		return
	}
	eventType := learning.EventActionSuccess
	if !success {
		eventType = learning.EventActionFailure
	}
	r.learner.RecordEvent(learning.Event{
		Type: eventType, Domain: domain, Page: page, Target: step.Action,
		Selector: selector, Strategy: strategy, Action: step.Action,
		Timestamp: time.Now(),
	})
}

func domainOf(url string) string {
	const prefix1, prefix2 = "https://", "http://"
	s := url
	if len(s) > len(prefix1) && s[:len(prefix1)] == prefix1 {
		s = s[len(prefix1):]
	} else if len(s) > len(prefix2) && s[:len(prefix2)] == prefix2 {
		s = s[len(prefix2):]
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return s[:i]
		}
	}
	return s
}

// BuildReport aggregates a batch of results.
func BuildReport(results []UnifiedTestResult) UnifiedExecutionReport {
	report := UnifiedExecutionReport{Results: results}
	if len(results) == 0 {
		return report
	}

	passed := 0
	totalSteps, aiSteps := 0, 0
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Status == TestPassed {
			passed++
		}
		for _, sr := range r.StepResults {
			totalSteps++
			if sr.AIResolved {
				aiSteps++
			}
			if sr.Status == "passed" || sr.Status == "recovered" {
				key := fmt.Sprintf("%s|%s", sr.Step.Action, sr.Step.Selector)
				if !seen[key] {
					seen[key] = true
					report.NewSelectorsLearned++
				}
			}
		}
	}

	report.PassRate = float64(passed) / float64(len(results))
	if totalSteps > 0 {
		report.AIDependencyPercent = float64(aiSteps) / float64(totalSteps) * 100
	}
	return report
}
