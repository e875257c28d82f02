package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghostqa/internal/brain"
	"ghostqa/internal/config"
	"ghostqa/internal/selectorkb"
)

type fakeAI struct {
	selector   string
	confidence float64
	allowed    bool
}

func (f *fakeAI) FindElement(intent, pageContext string, screenshot []byte) (string, float64, error) {
	return f.selector, f.confidence, nil
}
func (f *fakeAI) AnalyzeErrorText(message, pageContext string) (string, float64, error) {
	return "", 0, nil
}
func (f *fakeAI) Allowed() bool { return f.allowed }

func newTestEngine(t *testing.T, ai AIResolver) (*Engine, *selectorkb.KB, *brain.Brain) {
	t.Helper()
	kb := selectorkb.New(config.DefaultKBConfig(), t.TempDir())
	t.Cleanup(kb.Close)
	b := brain.New(t.TempDir())
	return New(kb, b, ai, config.DefaultExecutionConfig()), kb, b
}

func TestResolveFindElementFromKnowledgeBase(t *testing.T) {
	e, kb, _ := newTestEngine(t, nil)
	kb.AddLearning("example.com", "/login", "username", "#u", selectorkb.StrategyCSS, true, "input", nil)

	d := e.Resolve(Request{Type: TypeFindElement, Domain: "example.com", Page: "/login", Intent: "username"})
	assert.Equal(t, SourceKnowledgeBase, d.Source)
	assert.Equal(t, "#u", d.Value)
}

func TestResolveFindElementFallsBackToHeuristic(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	d := e.Resolve(Request{Type: TypeFindElement, Domain: "example.com", Page: "/x", Intent: "click the submit button"})
	assert.Equal(t, SourceHeuristic, d.Source)
	assert.Contains(t, d.Value, "submit")
}

func TestResolveFindElementFallsBackToAI(t *testing.T) {
	ai := &fakeAI{selector: "#ai-found", confidence: 0.7, allowed: true}
	e, _, _ := newTestEngine(t, ai)
	d := e.Resolve(Request{Type: TypeFindElement, Domain: "example.com", Page: "/x", Intent: "some_generic_field"})
	assert.Equal(t, SourceAIGateway, d.Source)
	assert.Equal(t, "#ai-found", d.Value)
}

func TestResolveFindElementDefaultWhenNoTierResolves(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	d := e.Resolve(Request{Type: TypeFindElement, Domain: "example.com", Page: "/x", Intent: "some_generic_field"})
	assert.Equal(t, SourceDefault, d.Source)
	assert.Equal(t, 0.3, d.Confidence)
}

func TestResolveHandleErrorHeuristic(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	d := e.Resolve(Request{Type: TypeHandleError, ErrorMsg: "password too short"})
	assert.Equal(t, SourceHeuristic, d.Source)
	assert.Equal(t, "fix_password", d.Value)
}

func TestResolvePageTypeUnknownFallback(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	d := e.Resolve(Request{Type: TypePageType, Page: "/xyz123", Intent: "Mystery Page"})
	assert.Equal(t, "unknown", d.Value)
	assert.Equal(t, 0.3, d.Confidence)
}

func TestResolveWaitTimeDefaults(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	d := e.Resolve(Request{Type: TypeWaitTime, Action: "click"})
	assert.Equal(t, "500", d.Value)
}

func TestRecordDecisionOutcomeUpdatesKB(t *testing.T) {
	e, kb, _ := newTestEngine(t, nil)
	kb.AddLearning("example.com", "/login", "username", "#u", selectorkb.StrategyCSS, true, "input", nil)
	d := e.Resolve(Request{Type: TypeFindElement, Domain: "example.com", Page: "/login", Intent: "username"})
	require.Equal(t, SourceKnowledgeBase, d.Source)

	e.RecordDecisionOutcome(d, false)

	elem, ok := kb.Lookup("example.com", "/login", "username")
	require.True(t, ok)
	assert.Equal(t, 1, elem.BestSelector().Failures)
}
