package config

// LoggingConfig configures the category-scoped file logger in internal/logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultLoggingConfig returns the defaults.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		DebugMode:  false,
		Level:      "info",
		JSONFormat: false,
		Categories: nil,
	}
}
