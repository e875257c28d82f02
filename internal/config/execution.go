package config

import "time"

// ExecutionConfig configures step-level execution defaults.
type ExecutionConfig struct {
	StepTimeoutSec int `yaml:"step_timeout_sec"`
	MaxFindAttempts int `yaml:"max_find_attempts"`
	TypeKeystrokeDelayMs int `yaml:"type_keystroke_delay_ms"`

	WaitNavigateMs int `yaml:"wait_navigate_ms"`
	WaitClickMs    int `yaml:"wait_click_ms"`
	WaitTypeMs     int `yaml:"wait_type_ms"`
	WaitSubmitMs   int `yaml:"wait_submit_ms"`

	ConfidenceHigh   float64 `yaml:"confidence_high"`
	ConfidenceMedium float64 `yaml:"confidence_medium"`
	ConfidenceLow    float64 `yaml:"confidence_low"`
}

// DefaultExecutionConfig returns the step-level execution defaults.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		StepTimeoutSec:       30,
		MaxFindAttempts:      3,
		TypeKeystrokeDelayMs: 50,

		WaitNavigateMs: 2000,
		WaitClickMs:    500,
		WaitTypeMs:     200,
		WaitSubmitMs:   3000,

		ConfidenceHigh:   0.8,
		ConfidenceMedium: 0.5,
		ConfidenceLow:    0.3,
	}
}

func (c ExecutionConfig) StepTimeout() time.Duration {
	return time.Duration(c.StepTimeoutSec) * time.Second
}

func (c ExecutionConfig) TypeKeystrokeDelay() time.Duration {
	return time.Duration(c.TypeKeystrokeDelayMs) * time.Millisecond
}
