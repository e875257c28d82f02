package config

import "time"

// OrchestratorConfig configures the Orchestrator singleton.
type OrchestratorConfig struct {
	Enabled bool `yaml:"enabled"`

	PollIntervalSec          int  `yaml:"poll_interval_sec"`
	DiscoveryIntervalSec     int  `yaml:"discovery_interval_sec"`
	MinTimeBetweenRunsSec    int  `yaml:"min_time_between_runs_sec"`
	RegressionIntervalHours  int  `yaml:"regression_interval_hours"`
	MaxQueueSize             int  `yaml:"max_queue_size"`
	MaxRetries               int  `yaml:"max_retries"`
	RetryCooldownMin         int  `yaml:"retry_cooldown_min"`
	MaxConcurrentExecutions  int  `yaml:"max_concurrent_executions"` // reserved; engine runs 1 at a time, see DESIGN.md (Open Question 3)
	ContinuousRegression     bool `yaml:"continuous_regression"`
	Headless                 bool `yaml:"headless"`
	ExecutionMode            string `yaml:"execution_mode"` // autonomous | guided | strict

	StopGraceExecutionSec int `yaml:"stop_grace_execution_sec"`
	StopGraceDiscoverySec int `yaml:"stop_grace_discovery_sec"`

	HistorySize int `yaml:"history_size"`
}

// DefaultOrchestratorConfig returns the Orchestrator defaults.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Enabled:                 true,
		PollIntervalSec:         30,
		DiscoveryIntervalSec:    300,
		MinTimeBetweenRunsSec:   60,
		RegressionIntervalHours: 24,
		MaxQueueSize:            1000,
		MaxRetries:              3,
		RetryCooldownMin:        5,
		MaxConcurrentExecutions: 1,
		ContinuousRegression:    true,
		Headless:                true,
		ExecutionMode:           "autonomous",
		StopGraceExecutionSec:   30,
		StopGraceDiscoverySec:   10,
		HistorySize:             50,
	}
}

func (c OrchestratorConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

func (c OrchestratorConfig) DiscoveryInterval() time.Duration {
	return time.Duration(c.DiscoveryIntervalSec) * time.Second
}

func (c OrchestratorConfig) MinTimeBetweenRuns() time.Duration {
	return time.Duration(c.MinTimeBetweenRunsSec) * time.Second
}

func (c OrchestratorConfig) RegressionInterval() time.Duration {
	return time.Duration(c.RegressionIntervalHours) * time.Hour
}

func (c OrchestratorConfig) RetryCooldown() time.Duration {
	return time.Duration(c.RetryCooldownMin) * time.Minute
}

func (c OrchestratorConfig) StopGraceExecution() time.Duration {
	return time.Duration(c.StopGraceExecutionSec) * time.Second
}

func (c OrchestratorConfig) StopGraceDiscovery() time.Duration {
	return time.Duration(c.StopGraceDiscoverySec) * time.Second
}
