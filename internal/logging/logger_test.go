package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeCreatesLogsDirWhenDebugEnabled(t *testing.T) {
	defer CloseAll()
	dir := t.TempDir()
	Configure(true, "debug", false, nil)

	require.NoError(t, Initialize(dir))
	_, err := os.Stat(filepath.Join(dir, ".ghostqa", "logs"))
	assert.NoError(t, err)
}

func TestInitializeIsNoOpWhenDebugDisabled(t *testing.T) {
	defer CloseAll()
	dir := t.TempDir()
	Configure(false, "info", false, nil)

	require.NoError(t, Initialize(dir))
	_, err := os.Stat(filepath.Join(dir, ".ghostqa", "logs"))
	assert.True(t, os.IsNotExist(err))
}

func TestCategoryFilterDisablesLogger(t *testing.T) {
	defer CloseAll()
	dir := t.TempDir()
	Configure(true, "debug", false, map[string]bool{string(CategoryKB): false})
	require.NoError(t, Initialize(dir))

	assert.False(t, IsCategoryEnabled(CategoryKB))
	assert.True(t, IsCategoryEnabled(CategoryDecision))

	l := Get(CategoryKB)
	l.Info("should not panic even though disabled")
}

func TestTimerStop(t *testing.T) {
	defer CloseAll()
	dir := t.TempDir()
	Configure(true, "debug", false, nil)
	require.NoError(t, Initialize(dir))

	timer := StartTimer(CategoryKB, "lookup")
	elapsed := timer.Stop()
	assert.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))
}
