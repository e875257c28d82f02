package config

// StoreConfig configures the embedded SQLite store used for execution
// history and the learning event ledger.
type StoreConfig struct {
	DBPath string `yaml:"db_path"`
}

// DefaultStoreConfig returns the defaults.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{DBPath: "data/ghostqa.db"}
}
