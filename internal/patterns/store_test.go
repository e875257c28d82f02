package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeedsBuiltins(t *testing.T) {
	s := New(t.TempDir())
	defer s.Close()

	p, ok := s.GetPattern("builtin-login")
	require.True(t, ok)
	assert.Equal(t, "Login", p.Name)
}

func TestFindPatternByIntent(t *testing.T) {
	s := New(t.TempDir())
	defer s.Close()

	matches := s.FindPattern("please sign in now", "")
	require.NotEmpty(t, matches)
	assert.Equal(t, "builtin-login", matches[0].ID)
}

func TestUpdateStatsRecomputesConfidence(t *testing.T) {
	s := New(t.TempDir())
	defer s.Close()

	s.UpdateStats("builtin-search", true)
	s.UpdateStats("builtin-search", true)
	s.UpdateStats("builtin-search", false)

	p, _ := s.GetPattern("builtin-search")
	assert.InDelta(t, 2.0/3.0, p.Confidence(), 0.0001)
}

func TestAddPatternGeneratesIDAndPersists(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	id := s.AddPattern(&ActionPattern{Name: "Custom flow", Category: "custom", Keywords: []string{"custom"}})
	require.NotEmpty(t, id)
	s.Close()

	reloaded := New(dir)
	defer reloaded.Close()
	p, ok := reloaded.GetPattern(id)
	require.True(t, ok)
	assert.Equal(t, "Custom flow", p.Name)
}

func TestGetStatsSummary(t *testing.T) {
	s := New(t.TempDir())
	defer s.Close()
	stats := s.GetStats()
	assert.Equal(t, 3, stats.TotalPatterns)
}
