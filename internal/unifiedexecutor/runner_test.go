package unifiedexecutor

import (
	"context"
	"testing"

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
)

func newTestRunner(t *testing.T, mode Mode) (*Runner, *browserdriver.RecordingDriver) {
	t.Helper()
	driver := browserdriver.NewRecordingDriverFromPages([]browserdriver.FixturePage{
		{
			URL:   "https://example.com/login",
			Title: "Sign in",
			Elements: []browserdriver.FixtureElement{
				{Key: "username", Selector: "#username", Text: "", Visible: true},
				{Key: "submit", Selector: "#submit", Text: "Log in", Visible: true},
			},
		},
	})

	kb := selectorkb.New(config.DefaultKBConfig(), t.TempDir())
	b := brain.New(t.TempDir())
	engine := decision.New(kb, b, nil, config.DefaultExecutionConfig())
	executor := actionexecutor.New(driver, config.DefaultExecutionConfig(), t.TempDir())
	learner := learning.New(kb, b, t.TempDir())
	store := patterns.New(t.TempDir())

	t.Cleanup(func() {
		learner.Close()
		kb.Close()
		store.Close()
	})

	return NewRunner(driver, engine, executor, learner, store, nil, mode), driver
}

func TestRunActionBasedTestCasePasses(t *testing.T) {
	r, _ := newTestRunner(t, ModeStrict)
	tc := UnifiedTestCase{
		ID: "t1", Name: "login", Format: FormatActionBased, BaseURL: "https://example.com/login",
		Steps: []UnifiedStep{
			{Action: "fill", Selector: "#username", SelectorStrategy: "css", Value: "alice"},
			{Action: "click", Selector: "#submit", SelectorStrategy: "css"},
		},
	}
	res := r.Run(context.Background(), tc)
	assert.Equal(t, TestPassed, res.Status)
	assert.Equal(t, 2, res.PassedSteps)
}

func TestRunReportsFailedStepOnMissingElement(t *testing.T) {
	r, _ := newTestRunner(t, ModeStrict)
	tc := UnifiedTestCase{
		ID: "t2", Name: "broken", Format: FormatActionBased, BaseURL: "https://example.com/login",
		Steps: []UnifiedStep{
			{Action: "click", Selector: "#nonexistent", SelectorStrategy: "css"},
		},
	}
	res := r.Run(context.Background(), tc)
	assert.Equal(t, TestFailed, res.Status)
	assert.Equal(t, 1, res.FailedSteps)
}

func TestRunBehaviorDrivenStepInterpretedByHeuristic(t *testing.T) {
	r, _ := newTestRunner(t, ModeGuided)
	tc := UnifiedTestCase{
		ID: "t3", Name: "bdd login", Format: FormatBehaviorDriven, BaseURL: "https://example.com/login",
		Steps: []UnifiedStep{
			{Keyword: "When", Text: `click "#submit"`},
		},
	}
	res := r.Run(context.Background(), tc)
	require.Len(t, res.StepResults, 1)
	assert.Equal(t, "click", res.StepResults[0].Step.Action)
}

func TestRequestStopSkipsRemainingSteps(t *testing.T) {
	r, _ := newTestRunner(t, ModeStrict)
	r.RequestStop()
	tc := UnifiedTestCase{
		ID: "t4", Name: "stopped", Format: FormatActionBased, BaseURL: "https://example.com/login",
		Steps: []UnifiedStep{
			{Action: "click", Selector: "#submit", SelectorStrategy: "css"},
		},
	}
	res := r.Run(context.Background(), tc)
	assert.Equal(t, "skipped", res.StepResults[0].Status)
}

func TestRunHealsStaleKBSelectorViaOriginalIntent(t *testing.T) {
	driver := browserdriver.NewRecordingDriverFromPages([]browserdriver.FixturePage{
		{
			URL:   "https://example.com/login",
			Title: "Sign in",
			Elements: []browserdriver.FixtureElement{
				{Key: "submit", Selector: "#submit", Text: "Log in", Visible: true},
			},
		},
	})

	kb := selectorkb.New(config.DefaultKBConfig(), t.TempDir())
	b := brain.New(t.TempDir())
	// The KB remembers a stale selector for intent "submit" that no
	// longer matches anything on the live page.
	kb.AddLearning("example.com", "https://example.com/login", "submit", "#old-submit-id", selectorkb.StrategyCSS, true, "button", nil)
	engine := decision.New(kb, b, nil, config.DefaultExecutionConfig())
	executor := actionexecutor.New(driver, config.DefaultExecutionConfig(), t.TempDir())
	learner := learning.New(kb, b, t.TempDir())
	store := patterns.New(t.TempDir())
	t.Cleanup(func() {
		learner.Close()
		kb.Close()
		store.Close()
	})

	r := NewRunner(driver, engine, executor, learner, store, nil, ModeStrict)
	tc := UnifiedTestCase{
		ID: "t5", Name: "stale selector heals", Format: FormatActionBased, BaseURL: "https://example.com/login",
		Steps: []UnifiedStep{
			{Action: "click", Selector: "submit"},
		},
	}
	res := r.Run(context.Background(), tc)
	assert.Equal(t, TestPassed, res.Status)
	require.Len(t, res.StepResults, 1)
	assert.NotEqual(t, "failed", res.StepResults[0].Status)
}

func TestRunResolvesDynamicValuePhraseBeforeExecution(t *testing.T) {
	r, _ := newTestRunner(t, ModeStrict)
	tc := UnifiedTestCase{
		ID: "t6", Name: "signup", Format: FormatActionBased, BaseURL: "https://example.com/login",
		Steps: []UnifiedStep{
			{Action: "fill", Selector: "#username", SelectorStrategy: "css", Value: "a valid username"},
		},
	}
	res := r.Run(context.Background(), tc)
	require.Len(t, res.StepResults, 1)
	assert.Equal(t, "passed", res.StepResults[0].Status)
	assert.NotEqual(t, "a valid username", res.StepResults[0].Step.Value)
	assert.NotEmpty(t, res.StepResults[0].Step.Value)
}

func TestRunLeavesLiteralValueUnchanged(t *testing.T) {
	r, _ := newTestRunner(t, ModeStrict)
	tc := UnifiedTestCase{
		ID: "t7", Name: "login", Format: FormatActionBased, BaseURL: "https://example.com/login",
		Steps: []UnifiedStep{
			{Action: "fill", Selector: "#username", SelectorStrategy: "css", Value: "alice123"},
		},
	}
	res := r.Run(context.Background(), tc)
	require.Len(t, res.StepResults, 1)
	assert.Equal(t, "alice123", res.StepResults[0].Step.Value)
}

func TestBuildReportComputesPassRateAndAIDependency(t *testing.T) {
	results := []UnifiedTestResult{
		{Status: TestPassed, StepResults: []StepResult{{Step: UnifiedStep{Action: "click", Selector: "#a"}, Status: "passed", AIResolved: true}}},
		{Status: TestFailed, StepResults: []StepResult{{Step: UnifiedStep{Action: "click", Selector: "#b"}, Status: "failed"}}},
	}
	report := BuildReport(results)
	assert.InDelta(t, 0.5, report.PassRate, 0.001)
	assert.InDelta(t, 50.0, report.AIDependencyPercent, 0.001)
	assert.Equal(t, 1, report.NewSelectorsLearned)
}
