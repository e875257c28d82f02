package browserdriver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// recordingElement is a fixture element resolved from a recorded DOM
// snapshot.
type recordingElement struct {
	key  string
	text string
}

func (e *recordingElement) Text() (string, error) { return e.text, nil }

// FixtureElement is one entry in a recorded session's DOM snapshot.
type FixtureElement struct {
	Key      string `json:"key"`
	Selector string `json:"selector"`
	Text     string `json:"text"`
	Visible  bool   `json:"visible"`
}

// FixturePage is one recorded page in a session fixture.
type FixturePage struct {
	URL      string           `json:"url"`
	Title    string           `json:"title"`
	Elements []FixtureElement `json:"elements"`
}

// RecordingDriver is a dependency-free Driver implementation that replays
// a fixture DOM snapshot instead of driving a real browser, for
// deterministic tests of the Action Executor and Unified Executor.
type RecordingDriver struct {
	pages       map[string]FixturePage
	currentURL  string
	pressedKeys []string
	actions     []string
}

// NewRecordingDriver loads a recorded session fixture from path (one of
// <data>/recordings/<sessionId>.json).
func NewRecordingDriver(fixturePath string) (*RecordingDriver, error) {
	data, err := os.ReadFile(fixturePath)
	if err != nil {
		return nil, fmt.Errorf("read recording fixture: %w", err)
	}
	var pages []FixturePage
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("parse recording fixture: %w", err)
	}
	byURL := make(map[string]FixturePage, len(pages))
	for _, p := range pages {
		byURL[p.URL] = p
	}
	first := ""
	if len(pages) > 0 {
		first = pages[0].URL
	}
	return &RecordingDriver{pages: byURL, currentURL: first}, nil
}

// NewRecordingDriverFromPages constructs a driver directly from in-memory
// pages, for unit tests that don't want to touch the filesystem.
func NewRecordingDriverFromPages(pages []FixturePage) *RecordingDriver {
	byURL := make(map[string]FixturePage, len(pages))
	for _, p := range pages {
		byURL[p.URL] = p
	}
	first := ""
	if len(pages) > 0 {
		first = pages[0].URL
	}
	return &RecordingDriver{pages: byURL, currentURL: first}
}

func (d *RecordingDriver) Navigate(ctx context.Context, url string) error {
	if _, ok := d.pages[url]; !ok {
		return fmt.Errorf("%w: no recorded fixture for %s", ErrNavigation, url)
	}
	d.currentURL = url
	d.actions = append(d.actions, "navigate:"+url)
	return nil
}

func (d *RecordingDriver) CurrentURL(ctx context.Context) (string, error) { return d.currentURL, nil }

func (d *RecordingDriver) Title(ctx context.Context) (string, error) {
	return d.pages[d.currentURL].Title, nil
}

func (d *RecordingDriver) Find(ctx context.Context, strategy, selector string) (ElementHandle, error) {
	page := d.pages[d.currentURL]
	for _, el := range page.Elements {
		if el.Selector == selector || el.Key == selector {
			if !el.Visible {
				return nil, fmt.Errorf("%w: %s", ErrElementNotVisible, selector)
			}
			return &recordingElement{key: el.Key, text: el.Text}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
}

func (d *RecordingDriver) Click(ctx context.Context, handle ElementHandle) error {
	d.actions = append(d.actions, "click:"+handle.(*recordingElement).key)
	return nil
}

func (d *RecordingDriver) Fill(ctx context.Context, handle ElementHandle, value string) error {
	d.actions = append(d.actions, "fill:"+handle.(*recordingElement).key+"="+value)
	return nil
}

func (d *RecordingDriver) Type(ctx context.Context, handle ElementHandle, value string, keystrokeDelayMs int) error {
	d.actions = append(d.actions, "type:"+handle.(*recordingElement).key+"="+value)
	return nil
}

func (d *RecordingDriver) Select(ctx context.Context, handle ElementHandle, value string) error {
	d.actions = append(d.actions, "select:"+handle.(*recordingElement).key+"="+value)
	return nil
}

func (d *RecordingDriver) Check(ctx context.Context, handle ElementHandle, checked bool) error {
	d.actions = append(d.actions, fmt.Sprintf("check:%s=%v", handle.(*recordingElement).key, checked))
	return nil
}

func (d *RecordingDriver) Hover(ctx context.Context, handle ElementHandle) error {
	d.actions = append(d.actions, "hover:"+handle.(*recordingElement).key)
	return nil
}

func (d *RecordingDriver) PressKey(ctx context.Context, key string) error {
	d.pressedKeys = append(d.pressedKeys, key)
	return nil
}

func (d *RecordingDriver) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("recorded-screenshot-placeholder"), nil
}

func (d *RecordingDriver) Inventory(ctx context.Context) (PageInventory, error) {
	page := d.pages[d.currentURL]
	keys := make([]string, 0, len(page.Elements))
	for _, el := range page.Elements {
		keys = append(keys, el.Key)
	}
	return PageInventory{URL: page.URL, Title: page.Title, ElementKeys: keys}, nil
}

func (d *RecordingDriver) Close() error { return nil }

// Actions returns the ordered list of actions performed, for test
// assertions.
func (d *RecordingDriver) Actions() []string { return d.actions }
