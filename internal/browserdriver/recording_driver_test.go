package browserdriver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPages() []FixturePage {
	return []FixturePage{
		{
			URL:   "https://example.com/login",
			Title: "Sign in",
			Elements: []FixtureElement{
				{Key: "username", Selector: "#username", Text: "", Visible: true},
				{Key: "submit", Selector: "#submit", Text: "Log in", Visible: true},
				{Key: "hidden-captcha", Selector: "#captcha", Text: "", Visible: false},
			},
		},
		{
			URL:   "https://example.com/dashboard",
			Title: "Dashboard",
			Elements: []FixtureElement{
				{Key: "welcome", Selector: "#welcome", Text: "Welcome back", Visible: true},
			},
		},
	}
}

func TestRecordingDriverNavigateTracksCurrentPage(t *testing.T) {
	d := NewRecordingDriverFromPages(testPages())
	ctx := context.Background()

	require.NoError(t, d.Navigate(ctx, "https://example.com/dashboard"))

	url, err := d.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/dashboard", url)

	title, err := d.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dashboard", title)
}

func TestRecordingDriverNavigateUnknownURLFails(t *testing.T) {
	d := NewRecordingDriverFromPages(testPages())
	err := d.Navigate(context.Background(), "https://example.com/missing")
	assert.True(t, errors.Is(err, ErrNavigation))
}

func TestRecordingDriverFindResolvesBySelectorOrKey(t *testing.T) {
	d := NewRecordingDriverFromPages(testPages())
	ctx := context.Background()
	require.NoError(t, d.Navigate(ctx, "https://example.com/login"))

	bySelector, err := d.Find(ctx, "css", "#username")
	require.NoError(t, err)
	text, _ := bySelector.Text()
	assert.Equal(t, "", text)

	byKey, err := d.Find(ctx, "css", "submit")
	require.NoError(t, err)
	text, _ = byKey.Text()
	assert.Equal(t, "Log in", text)
}

func TestRecordingDriverFindHiddenElementReturnsNotVisible(t *testing.T) {
	d := NewRecordingDriverFromPages(testPages())
	ctx := context.Background()
	require.NoError(t, d.Navigate(ctx, "https://example.com/login"))

	_, err := d.Find(ctx, "css", "#captcha")
	assert.True(t, errors.Is(err, ErrElementNotVisible))
}

func TestRecordingDriverFindMissingElementReturnsNotFound(t *testing.T) {
	d := NewRecordingDriverFromPages(testPages())
	ctx := context.Background()
	require.NoError(t, d.Navigate(ctx, "https://example.com/login"))

	_, err := d.Find(ctx, "css", "#nope")
	assert.True(t, errors.Is(err, ErrElementNotFound))
}

func TestRecordingDriverActionsAreRecordedInOrder(t *testing.T) {
	d := NewRecordingDriverFromPages(testPages())
	ctx := context.Background()
	require.NoError(t, d.Navigate(ctx, "https://example.com/login"))

	el, err := d.Find(ctx, "css", "#username")
	require.NoError(t, err)
	require.NoError(t, d.Fill(ctx, el, "alice"))

	submit, err := d.Find(ctx, "css", "#submit")
	require.NoError(t, err)
	require.NoError(t, d.Click(ctx, submit))

	actions := d.Actions()
	require.Len(t, actions, 3)
	assert.Equal(t, "navigate:https://example.com/login", actions[0])
	assert.Equal(t, "fill:username=alice", actions[1])
	assert.Equal(t, "click:submit", actions[2])
}

func TestRecordingDriverInventoryListsElementKeys(t *testing.T) {
	d := NewRecordingDriverFromPages(testPages())
	ctx := context.Background()
	require.NoError(t, d.Navigate(ctx, "https://example.com/login"))

	inv, err := d.Inventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sign in", inv.Title)
	assert.ElementsMatch(t, []string{"username", "submit", "hidden-captcha"}, inv.ElementKeys)
}

func TestRecordingDriverPressKeyRecordsKey(t *testing.T) {
	d := NewRecordingDriverFromPages(testPages())
	require.NoError(t, d.PressKey(context.Background(), "Enter"))
	require.NoError(t, d.PressKey(context.Background(), "Tab"))
	assert.Equal(t, []string{"Enter", "Tab"}, d.pressedKeys)
}

func TestRecordingDriverImplementsDriverInterface(t *testing.T) {
	var _ Driver = (*RecordingDriver)(nil)
}
