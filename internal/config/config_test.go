package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().KB, cfg.KB)
	assert.Equal(t, uint(100000), cfg.KB.BloomCapacity)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Orchestrator.MaxQueueSize = 42
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Orchestrator.MaxQueueSize)
}

func TestEnvOverridesAPIKeyAndDataDir(t *testing.T) {
	os.Setenv("GHOSTQA_ANTHROPIC_API_KEY", "test-key")
	os.Setenv("GHOSTQA_DATA_DIR", "/tmp/ghostqa-data")
	defer os.Unsetenv("GHOSTQA_ANTHROPIC_API_KEY")
	defer os.Unsetenv("GHOSTQA_DATA_DIR")

	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.AIGateway.AnthropicAPIKey)
	assert.Equal(t, "/tmp/ghostqa-data", cfg.DataDir)
}

func TestDirHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "data"
	assert.Equal(t, filepath.Join("data", "selectors"), cfg.SelectorsDir())
	assert.Equal(t, filepath.Join("data", "patterns"), cfg.PatternsDir())
	assert.Equal(t, filepath.Join("data", "brain"), cfg.BrainDir())
	assert.Equal(t, filepath.Join("data", "learning", "events"), cfg.LearningEventsDir())
}
