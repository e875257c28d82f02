// Package unifiedexecutor accepts tests in either action-based or
// behavior-driven form and drives both through a single execution path,
// regardless of which format they were authored in.
package unifiedexecutor

import "time"

// Format is the closed set of test representations accepted.
type Format string

const (
	FormatActionBased    Format = "ActionBased"
	FormatBehaviorDriven Format = "BehaviorDriven"
)

// Mode is the closed set of execution modes controlling AI involvement.
type Mode string

const (
	ModeAutonomous Mode = "Autonomous"
	ModeGuided     Mode = "Guided"
	ModeStrict     Mode = "Strict"
)

// TestStatus is the closed set of terminal test outcomes.
type TestStatus string

const (
	TestPassed  TestStatus = "passed"
	TestFailed  TestStatus = "failed"
	TestError   TestStatus = "error"
	TestSkipped TestStatus = "skipped"
)

// UnifiedStep is one step of a UnifiedTestCase, either already a concrete
// action or a behavior-driven line awaiting interpretation.
type UnifiedStep struct {
	Action        string
	Selector      string
	SelectorStrategy string
	Value         string
	Keyword       string // Given/When/Then, for BehaviorDriven steps
	Text          string // free-text step, for BehaviorDriven steps
}

// UnifiedTestCase is a test in either representation.
type UnifiedTestCase struct {
	ID              string
	Name            string
	Format          Format
	Steps           []UnifiedStep
	Tags            []string
	FeatureName     string
	ScenarioName    string
	BackgroundSteps []UnifiedStep
	BaseURL         string
}

// StepResult is the outcome of running one interpreted step.
type StepResult struct {
	Step      UnifiedStep
	Status    string
	AIResolved bool
	ErrorMessage string
	DurationMs int64
}

// UnifiedTestResult is the outcome of running one UnifiedTestCase.
type UnifiedTestResult struct {
	ID          string
	Name        string
	Format      Format
	Status      TestStatus
	TotalSteps  int
	PassedSteps int
	FailedSteps int
	RecoveredSteps int
	Duration    time.Duration
	StepResults []StepResult
	StartedAt   time.Time
	CompletedAt time.Time
}

// UnifiedExecutionReport aggregates a run of UnifiedTestResults.
type UnifiedExecutionReport struct {
	Results             []UnifiedTestResult
	PassRate            float64
	AIDependencyPercent float64
	NewSelectorsLearned int
}
