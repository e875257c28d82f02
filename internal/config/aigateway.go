package config

import "time"

// AIGatewayConfig configures the AI Gateway.
type AIGatewayConfig struct {
	Provider string `yaml:"provider"` // "anthropic" | "ollama"

	AnthropicAPIKey string `yaml:"-"` // env-only, never serialized
	AnthropicModel  string `yaml:"anthropic_model"`
	AnthropicBaseURL string `yaml:"anthropic_base_url"`

	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`

	RemoteTimeoutSec int `yaml:"remote_timeout_sec"`
	LocalTimeoutSec  int `yaml:"local_timeout_sec"`

	DailyTokenBudget int `yaml:"daily_token_budget"`
	HourlyTokenBudget int `yaml:"hourly_token_budget"`
	PerTestTokenBudget int `yaml:"per_test_token_budget"`

	CacheCapacity int `yaml:"cache_capacity"`
}

// DefaultAIGatewayConfig returns the AI Gateway defaults.
func DefaultAIGatewayConfig() AIGatewayConfig {
	return AIGatewayConfig{
		Provider:         "anthropic",
		AnthropicModel:   "claude-3-5-haiku-latest",
		AnthropicBaseURL: "https://api.anthropic.com",
		OllamaEndpoint:   "http://localhost:11434",
		OllamaModel:      "llama3.1",
		RemoteTimeoutSec: 30,
		LocalTimeoutSec:  60,

		DailyTokenBudget:   200000,
		HourlyTokenBudget:  50000,
		PerTestTokenBudget: 5000,

		CacheCapacity: 1000,
	}
}

// RemoteTimeout returns the remote-provider request timeout as a Duration.
func (c AIGatewayConfig) RemoteTimeout() time.Duration {
	return time.Duration(c.RemoteTimeoutSec) * time.Second
}

// LocalTimeout returns the local-provider request timeout as a Duration.
func (c AIGatewayConfig) LocalTimeout() time.Duration {
	return time.Duration(c.LocalTimeoutSec) * time.Second
}
