// Package config provides YAML-first, environment-overridable configuration
// for ghostqa, following the same DefaultConfig/Load/Save shape the rest of
// the engine uses.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ghostqa/internal/logging"
)

// Config holds all ghostqa configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	DataDir string `yaml:"data_dir"`

	KB           KBConfig           `yaml:"kb"`
	AIGateway    AIGatewayConfig    `yaml:"ai_gateway"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Browser      BrowserConfig      `yaml:"browser"`
	Execution    ExecutionConfig    `yaml:"execution"`
	Logging      LoggingConfig      `yaml:"logging"`
	Store        StoreConfig        `yaml:"store"`
}

// DefaultConfig returns the default configuration, with every numeric
// default named by the component specs.
func DefaultConfig() *Config {
	return &Config{
		Name:    "ghostqa",
		Version: "0.1.0",
		DataDir: "data",

		KB:           DefaultKBConfig(),
		AIGateway:    DefaultAIGatewayConfig(),
		Orchestrator: DefaultOrchestratorConfig(),
		Browser:      DefaultBrowserConfig(),
		Execution:    DefaultExecutionConfig(),
		Logging:      DefaultLoggingConfig(),
		Store:        DefaultStoreConfig(),
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		logging.BootError("failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config loaded: data_dir=%s", cfg.DataDir)
	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies GHOSTQA_-prefixed environment overrides for
// secrets and paths that operators should not need to check into YAML.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GHOSTQA_ANTHROPIC_API_KEY"); key != "" {
		c.AIGateway.AnthropicAPIKey = key
	}
	if endpoint := os.Getenv("GHOSTQA_OLLAMA_ENDPOINT"); endpoint != "" {
		c.AIGateway.OllamaEndpoint = endpoint
	}
	if dir := os.Getenv("GHOSTQA_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if dbPath := os.Getenv("GHOSTQA_DB_PATH"); dbPath != "" {
		c.Store.DBPath = dbPath
	}
}

// SelectorsDir returns the directory holding per-domain KB files.
func (c *Config) SelectorsDir() string { return filepath.Join(c.DataDir, "selectors") }

// PatternsDir returns the directory holding action pattern files.
func (c *Config) PatternsDir() string { return filepath.Join(c.DataDir, "patterns") }

// BrainDir returns the directory holding brain-memory files.
func (c *Config) BrainDir() string { return filepath.Join(c.DataDir, "brain") }

// ExplorationsDir returns the directory scanned for exploration imports.
func (c *Config) ExplorationsDir() string { return filepath.Join(c.DataDir, "explorations") }

// ScenarioCacheDir returns the directory holding per-scenario prewarm caches.
func (c *Config) ScenarioCacheDir() string { return filepath.Join(c.DataDir, "scenario_cache") }

// ReportsDir returns the directory holding execution reports.
func (c *Config) ReportsDir() string { return filepath.Join(c.DataDir, "reports") }

// LearningEventsDir returns the directory holding the learning-event audit trail.
func (c *Config) LearningEventsDir() string { return filepath.Join(c.DataDir, "learning", "events") }
