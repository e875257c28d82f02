// Package main implements the ghostqa CLI, the local command-line surface
// for the autonomous test-execution core.
//
// # File Index
//
//   - main.go        - Entry point, rootCmd, global flags, init(), component wiring
//   - cmd_run.go      - runCmd, loadTestCase(), convertSteps(), runTestCase()
//   - cmd_orchestrate.go - orchestrateCmd, orchestrateStart/Stop/StatusCmd
//   - cmd_knowledge.go   - knowledgeCmd, knowledgeStats/Export/ImportCmd
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ghostqa/internal/actionexecutor"
	"ghostqa/internal/aigateway"
	"ghostqa/internal/brain"
	"ghostqa/internal/browserdriver"
	"ghostqa/internal/config"
	"ghostqa/internal/decision"
	"ghostqa/internal/learning"
	"ghostqa/internal/logging"
	"ghostqa/internal/patterns"
	"ghostqa/internal/selectorkb"
	"ghostqa/internal/store"
	"ghostqa/internal/unifiedexecutor"
)

var (
	verbose    bool
	workspace  string
	configPath string
	timeout    time.Duration
	mode       string
	headless   bool

	logger *zap.Logger
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "ghostqa",
	Short: "ghostqa - autonomous web-app test execution agent",
	Long: `ghostqa drives browser-based test execution using a learned selector
knowledge base, pattern catalog, and decision engine, falling back to an
AI gateway only when local knowledge cannot resolve a step.

Run a single test case file once, drive the continuous orchestrator, or inspect
and move the learned knowledge base.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ghostqa.yaml", "Path to config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "autonomous", "Execution mode: autonomous|guided|strict")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "Run the browser headless")

	runCmd.Flags().StringVar(&runTestFile, "test", "", "Path to a test case YAML file (required)")
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "Override the test case's base URL")

	orchestrateCmd.AddCommand(
		orchestrateStartCmd,
		orchestrateStopCmd,
		orchestrateStatusCmd,
	)

	knowledgeCmd.AddCommand(
		knowledgeStatsCmd,
		knowledgeExportCmd,
		knowledgeImportCmd,
	)

	rootCmd.AddCommand(
		runCmd,
		orchestrateCmd,
		knowledgeCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolvedWorkspace returns --workspace or the current directory.
func resolvedWorkspace() string {
	if workspace != "" {
		return workspace
	}
	ws, _ := os.Getwd()
	return ws
}

// loadedConfig loads configuration from --config, falling back to
// defaults the way config.Load always does.
func loadedConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// executionMode maps the --mode flag to a unifiedexecutor.Mode, defaulting
// to Autonomous on an unrecognized value.
func executionMode() unifiedexecutor.Mode {
	switch mode {
	case "guided":
		return unifiedexecutor.ModeGuided
	case "strict":
		return unifiedexecutor.ModeStrict
	default:
		return unifiedexecutor.ModeAutonomous
	}
}

// components bundles every wired subsystem a command needs, so each
// command file can build exactly what it uses and Close what it opens.
type components struct {
	cfg      *config.Config
	driver   browserdriver.Driver
	kb       *selectorkb.KB
	brn      *brain.Brain
	gateway  *aigateway.Gateway
	engine   *decision.Engine
	executor *unifiedexecutor.Runner
	learner  *learning.Engine
	patterns *patterns.Store
	history  *store.HistoryStore
	ledger   *store.LedgerStore
}

// buildComponents wires the full engine stack against a real (rod) or
// recording driver, rooted at the workspace data directory.
func buildComponents(ws string, useRecording bool, fixturePath string) (*components, error) {
	cfg, err := loadedConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.Configure(cfg.Logging.DebugMode, cfg.Logging.Level, cfg.Logging.JSONFormat, cfg.Logging.Categories)

	dataDir := cfg.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(ws, dataDir)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	var driver browserdriver.Driver
	if useRecording {
		driver, err = browserdriver.NewRecordingDriver(fixturePath)
		if err != nil {
			return nil, fmt.Errorf("load recording fixture: %w", err)
		}
	} else {
		bcfg := cfg.Browser
		bcfg.Headless = headless
		driver, err = browserdriver.NewRodDriver(bcfg)
		if err != nil {
			return nil, fmt.Errorf("launch browser driver: %w", err)
		}
	}

	kb := selectorkb.New(cfg.KB, filepath.Join(dataDir, "selectors"))
	brn := brain.New(filepath.Join(dataDir, "brain"))
	gateway := aigateway.New(cfg.AIGateway, filepath.Join(dataDir, "brain"))
	engine := decision.New(kb, brn, gateway, cfg.Execution)
	reportDir := filepath.Join(dataDir, "reports")
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	actionExecutor := actionexecutor.New(driver, cfg.Execution, reportDir)
	learner := learning.New(kb, brn, filepath.Join(dataDir, "learning", "events"))

	ledger, err := store.NewLedgerStore(filepath.Join(dataDir, "learning_ledger.db"))
	if err != nil {
		logging.BootError("ledger store open failed: %v", err)
	} else {
		learner.SetLedger(ledger)
	}

	patternStore := patterns.New(filepath.Join(dataDir, "patterns"))
	runner := unifiedexecutor.NewRunner(driver, engine, actionExecutor, learner, patternStore, gateway, executionMode())

	hist, err := store.NewHistoryStore(filepath.Join(dataDir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	return &components{
		cfg: cfg, driver: driver, kb: kb, brn: brn, gateway: gateway,
		engine: engine, executor: runner, learner: learner, patterns: patternStore,
		history: hist, ledger: ledger,
	}, nil
}

func (c *components) Close() {
	if c.driver != nil {
		_ = c.driver.Close()
	}
	if c.kb != nil {
		c.kb.Close()
	}
	if c.brn != nil {
		_ = c.brn.Flush()
	}
	if c.learner != nil {
		c.learner.Close()
	}
	if c.patterns != nil {
		c.patterns.Close()
	}
	if c.history != nil {
		c.history.Close()
	}
	if c.ledger != nil {
		c.ledger.Close()
	}
}
