package actionexecutor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghostqa/internal/browserdriver"
	"ghostqa/internal/config"
)

func newTestExecutor(t *testing.T, driver browserdriver.Driver) *Executor {
	t.Helper()
	return New(driver, config.DefaultExecutionConfig(), t.TempDir())
}

func newRecordingFixture() *browserdriver.RecordingDriver {
	return browserdriver.NewRecordingDriverFromPages([]browserdriver.FixturePage{
		{
			URL:   "https://example.com/login",
			Title: "Sign in",
			Elements: []browserdriver.FixtureElement{
				{Key: "username", Selector: "#username", Text: "", Visible: true},
				{Key: "submit", Selector: "#submit", Text: "Log in", Visible: true},
			},
		},
	})
}

func TestRunClickSucceedsOnFirstAttempt(t *testing.T) {
	fx := newRecordingFixture()
	driver := fx
	x := newTestExecutor(t, driver)
	ctx := context.Background()

	require.Equal(t, StatusSuccess, x.Run(ctx, Step{Action: ActionNavigate, Value: "https://example.com/login"}).Status)

	res := x.Run(ctx, Step{Action: ActionClick, Selector: Selector{Strategy: "css", Value: "#submit"}})
	assert.Equal(t, StatusSuccess, res.Status)
}

func TestRunFillOnMissingElementReturnsElementNotFound(t *testing.T) {
	driver := newRecordingFixture()
	x := newTestExecutor(t, driver)
	ctx := context.Background()
	require.Equal(t, StatusSuccess, x.Run(ctx, Step{Action: ActionNavigate, Value: "https://example.com/login"}).Status)

	res := x.Run(ctx, Step{Action: ActionFill, Selector: Selector{Strategy: "css", Value: "#nonexistent"}, Value: "x"})
	assert.Equal(t, StatusElementNotFound, res.Status)
	assert.NotEmpty(t, res.ErrorMessage)
}

func TestRunAssertTextMismatchReturnsError(t *testing.T) {
	driver := newRecordingFixture()
	x := newTestExecutor(t, driver)
	ctx := context.Background()
	require.Equal(t, StatusSuccess, x.Run(ctx, Step{Action: ActionNavigate, Value: "https://example.com/login"}).Status)

	res := x.Run(ctx, Step{Action: ActionAssertText, Selector: Selector{Strategy: "css", Value: "#submit"}, Value: "wrong text"})
	assert.Equal(t, StatusError, res.Status)
}

func TestRunWaitSleepsAndSucceeds(t *testing.T) {
	driver := newRecordingFixture()
	x := newTestExecutor(t, driver)
	res := x.Run(context.Background(), Step{Action: ActionWait})
	assert.Equal(t, StatusSuccess, res.Status)
}

func TestCallbacksInvokedAroundStep(t *testing.T) {
	driver := newRecordingFixture()
	x := newTestExecutor(t, driver)

	var before, after int
	x.SetCallbacks(Callbacks{
		BeforeAction: func(Step) { before++ },
		AfterAction:  func(Step, Result) { after++ },
	})
	x.Run(context.Background(), Step{Action: ActionNavigate, Value: "https://example.com/login"})
	assert.Equal(t, 1, before)
	assert.Equal(t, 1, after)
}

func TestHumanizeSelectorStripsCSSSigils(t *testing.T) {
	assert.Equal(t, "login btn", humanizeSelector("#login-btn"))
	assert.Equal(t, "testid value", humanizeSelector(`[data-testid="value"]`))
}
