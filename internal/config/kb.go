package config

// KBConfig configures the Selector Knowledge Base.
type KBConfig struct {
	BloomCapacity       uint    `yaml:"bloom_capacity"`
	BloomFalsePositive  float64 `yaml:"bloom_false_positive"`
	LRUSize             int     `yaml:"lru_size"`
	PersistIntervalSec  int     `yaml:"persist_interval_sec"`
	ExplorationMinConf  float64 `yaml:"exploration_min_confidence"`
	FuzzyWriteConfidence float64 `yaml:"fuzzy_write_confidence"`
	FuzzyMatchPenalty   float64 `yaml:"fuzzy_match_penalty"`
}

// DefaultKBConfig returns the Selector Knowledge Base defaults.
func DefaultKBConfig() KBConfig {
	return KBConfig{
		BloomCapacity:        100000,
		BloomFalsePositive:   0.01,
		LRUSize:              1000,
		PersistIntervalSec:   30,
		ExplorationMinConf:   0.5,
		FuzzyWriteConfidence: 0.8,
		FuzzyMatchPenalty:    0.8,
	}
}
