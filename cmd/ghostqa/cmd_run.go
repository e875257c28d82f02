package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"ghostqa/internal/unifiedexecutor"
)

var (
	runTestFile string
	runBaseURL  string
)

// runCmd executes a single test case once against a real browser.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a test case once",
	Long: `Loads a test case from --test, executes it against a real browser
session, and writes a report JSON to the data directory's reports/ folder.

Example:
  ghostqa run --test ./tests/login.yaml --base-url https://staging.example.com`,
	RunE: runTestCase,
}

// testCaseFile is the on-disk YAML shape a test case is authored in.
// It is translated into a unifiedexecutor.UnifiedTestCase before execution.
type testCaseFile struct {
	Name         string           `yaml:"name"`
	Format       string           `yaml:"format"` // action_based | behavior_driven
	BaseURL      string           `yaml:"base_url"`
	Tags         []string         `yaml:"tags"`
	FeatureName  string           `yaml:"feature"`
	ScenarioName string           `yaml:"scenario"`
	Background   []testStepFile   `yaml:"background"`
	Steps        []testStepFile   `yaml:"steps"`
}

type testStepFile struct {
	Action   string `yaml:"action"`
	Selector string `yaml:"selector"`
	Strategy string `yaml:"strategy"`
	Value    string `yaml:"value"`
	Keyword  string `yaml:"keyword"`
	Text     string `yaml:"text"`
}

func loadTestCase(path string) (unifiedexecutor.UnifiedTestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return unifiedexecutor.UnifiedTestCase{}, fmt.Errorf("read test case: %w", err)
	}
	var f testCaseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return unifiedexecutor.UnifiedTestCase{}, fmt.Errorf("parse test case: %w", err)
	}

	format := unifiedexecutor.FormatActionBased
	if f.Format == "behavior_driven" {
		format = unifiedexecutor.FormatBehaviorDriven
	}

	return unifiedexecutor.UnifiedTestCase{
		ID:              uuid.NewString(),
		Name:            f.Name,
		Format:          format,
		BaseURL:         f.BaseURL,
		Tags:            f.Tags,
		FeatureName:     f.FeatureName,
		ScenarioName:    f.ScenarioName,
		BackgroundSteps: convertSteps(f.Background),
		Steps:           convertSteps(f.Steps),
	}, nil
}

func convertSteps(in []testStepFile) []unifiedexecutor.UnifiedStep {
	out := make([]unifiedexecutor.UnifiedStep, 0, len(in))
	for _, s := range in {
		out = append(out, unifiedexecutor.UnifiedStep{
			Action:           s.Action,
			Selector:         s.Selector,
			SelectorStrategy: s.Strategy,
			Value:            s.Value,
			Keyword:          s.Keyword,
			Text:             s.Text,
		})
	}
	return out
}

// reportDocument is the stable report contract.
type reportDocument struct {
	ID                  string                          `json:"id"`
	ExecutedAt          time.Time                       `json:"executedAt"`
	CompletedAt         time.Time                       `json:"completedAt"`
	Status              string                          `json:"status"`
	TotalTests          int                             `json:"totalTests"`
	Passed              int                             `json:"passed"`
	Failed              int                             `json:"failed"`
	Skipped             int                             `json:"skipped"`
	Duration            time.Duration                   `json:"duration"`
	Results             []unifiedexecutor.UnifiedTestResult `json:"results"`
	Format              unifiedexecutor.Format          `json:"format"`
	ExecutionMode       string                          `json:"executionMode"`
	PassRate            float64                         `json:"passRate"`
	AIDependencyPercent float64                          `json:"aiDependencyPercent"`
	NewSelectorsLearned int                             `json:"newSelectorsLearned"`
}

func runTestCase(cmd *cobra.Command, args []string) error {
	if runTestFile == "" {
		return fmt.Errorf("--test is required")
	}

	tc, err := loadTestCase(runTestFile)
	if err != nil {
		return err
	}
	if runBaseURL != "" {
		tc.BaseURL = runBaseURL
	}

	ws := resolvedWorkspace()
	comps, err := buildComponents(ws, false, "")
	if err != nil {
		return fmt.Errorf("wire components: %w", err)
	}
	defer comps.Close()

	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithTimeout(baseCtx, timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nstop requested, finishing current step")
		comps.executor.RequestStop()
	}()

	started := time.Now()
	result := comps.executor.Run(ctx, tc)
	completed := time.Now()

	report := unifiedexecutor.BuildReport([]unifiedexecutor.UnifiedTestResult{result})

	doc := reportDocument{
		ID: uuid.NewString(), ExecutedAt: started, CompletedAt: completed,
		Status: string(result.Status), TotalTests: 1, Duration: completed.Sub(started),
		Results: report.Results, Format: tc.Format, ExecutionMode: mode,
		PassRate: report.PassRate, AIDependencyPercent: report.AIDependencyPercent,
		NewSelectorsLearned: report.NewSelectorsLearned,
	}
	switch result.Status {
	case unifiedexecutor.TestPassed:
		doc.Passed = 1
	case unifiedexecutor.TestSkipped:
		doc.Skipped = 1
	default:
		doc.Failed = 1
	}

	reportPath := filepath.Join(comps.cfg.DataDir, "reports", doc.ID+".json")
	if !filepath.IsAbs(reportPath) {
		reportPath = filepath.Join(ws, reportPath)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(reportPath, data, 0644); err != nil {
		logger.Warn("failed to write report", zap.Error(err))
	}

	fmt.Printf("%s: %s (%d/%d steps passed)\n", tc.Name, result.Status, result.PassedSteps, result.TotalSteps)
	fmt.Printf("report: %s\n", reportPath)
	if result.Status != unifiedexecutor.TestPassed {
		return fmt.Errorf("test case did not pass: %s", result.Status)
	}
	return nil
}
