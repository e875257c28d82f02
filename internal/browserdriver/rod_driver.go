package browserdriver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"ghostqa/internal/config"
	"ghostqa/internal/logging"
)

// rodElement wraps a *rod.Element to satisfy ElementHandle.
type rodElement struct{ el *rod.Element }

func (e *rodElement) Text() (string, error) { return e.el.Text() }

// RodDriver is the primary Driver implementation, backed by
// github.com/go-rod/rod.
type RodDriver struct {
	browser *rod.Browser
	page    *rod.Page
	cfg     config.BrowserConfig
}

// NewRodDriver launches (or connects to) a Chromium instance and opens a
// single page, per cfg.
func NewRodDriver(cfg config.BrowserConfig) (*RodDriver, error) {
	controlURL, err := launcher.New().Headless(cfg.IsHeadless()).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width: cfg.ViewportWidth, Height: cfg.ViewportHeight, DeviceScaleFactor: 1.0, Mobile: false,
	}).Call(page); err != nil {
		logging.BrowserDebug("failed to set viewport: %v", err)
	}

	return &RodDriver{browser: browser, page: page, cfg: cfg}, nil
}

func (d *RodDriver) withTimeout(ctx context.Context) *rod.Page {
	return d.page.Context(ctx).Timeout(d.cfg.ActionTimeout())
}

func (d *RodDriver) Navigate(ctx context.Context, url string) error {
	if err := d.withTimeout(ctx).Timeout(d.cfg.NavigationTimeout()).Navigate(url); err != nil {
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	d.page.WaitLoad()
	return nil
}

func (d *RodDriver) CurrentURL(ctx context.Context) (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (d *RodDriver) Title(ctx context.Context) (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

// cssForStrategy converts a selector strategy into the CSS (or rod's
// extended text/xpath syntax) rod understands.
func cssForStrategy(strategy, selector string) string {
	switch strategy {
	case "text":
		return fmt.Sprintf(`*:has-text("%s")`, selector)
	case "placeholder":
		return fmt.Sprintf(`[placeholder="%s"]`, selector)
	case "label":
		return fmt.Sprintf(`[aria-label="%s"]`, selector)
	case "role":
		return fmt.Sprintf(`[role="%s"]`, selector)
	case "aria":
		return fmt.Sprintf(`[aria-label="%s"]`, selector)
	case "test_id":
		return fmt.Sprintf(`[data-testid="%s"]`, selector)
	default:
		return selector
	}
}

func (d *RodDriver) Find(ctx context.Context, strategy, selector string) (ElementHandle, error) {
	css := cssForStrategy(strategy, selector)
	el, err := d.withTimeout(ctx).Element(css)
	if err != nil {
		if strings.Contains(err.Error(), "context deadline") {
			return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrElementNotFound, selector, err)
	}
	visible, err := el.Visible()
	if err == nil && !visible {
		return nil, fmt.Errorf("%w: %s", ErrElementNotVisible, selector)
	}
	return &rodElement{el: el}, nil
}

func (d *RodDriver) Click(ctx context.Context, handle ElementHandle) error {
	el := handle.(*rodElement).el
	return el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (d *RodDriver) Fill(ctx context.Context, handle ElementHandle, value string) error {
	el := handle.(*rodElement).el
	if err := el.Context(ctx).SelectAllText(); err == nil {
		el.Input("")
	}
	return el.Context(ctx).Input(value)
}

// Type simulates per-keystroke input: focus, clear existing content,
// press each character with a small delay, tab out.
func (d *RodDriver) Type(ctx context.Context, handle ElementHandle, value string, keystrokeDelayMs int) error {
	el := handle.(*rodElement).el
	if err := el.Context(ctx).Focus(); err != nil {
		return err
	}
	_ = el.SelectAllText()
	el.Input("")

	for _, r := range value {
		if err := el.Input(string(r)); err != nil {
			return err
		}
		if keystrokeDelayMs > 0 {
			time.Sleep(time.Duration(keystrokeDelayMs) * time.Millisecond)
		}
	}
	return d.page.Keyboard.Type(input.Tab)
}

func (d *RodDriver) Select(ctx context.Context, handle ElementHandle, value string) error {
	el := handle.(*rodElement).el
	return el.Context(ctx).Select([]string{value}, true, rod.SelectorTypeText)
}

func (d *RodDriver) Check(ctx context.Context, handle ElementHandle, checked bool) error {
	el := handle.(*rodElement).el
	selected, err := el.Property("checked")
	if err == nil && selected.Bool() == checked {
		return nil
	}
	return el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (d *RodDriver) Hover(ctx context.Context, handle ElementHandle) error {
	el := handle.(*rodElement).el
	return el.Context(ctx).Hover()
}

// namedKeys maps the small set of named keys the Action Executor presses
// to rod's input.Key constants.
var namedKeys = map[string]input.Key{
	"Enter":  input.Enter,
	"Tab":    input.Tab,
	"Escape": input.Escape,
	"Backspace": input.Backspace,
	"ArrowDown": input.ArrowDown,
	"ArrowUp":   input.ArrowUp,
}

func (d *RodDriver) PressKey(ctx context.Context, key string) error {
	k, ok := namedKeys[key]
	if !ok {
		return fmt.Errorf("browserdriver: unsupported key %q", key)
	}
	return d.page.Context(ctx).Keyboard.Type(k)
}

func (d *RodDriver) Screenshot(ctx context.Context) ([]byte, error) {
	return d.page.Context(ctx).Screenshot(true, nil)
}

func (d *RodDriver) Inventory(ctx context.Context) (PageInventory, error) {
	info, err := d.page.Info()
	if err != nil {
		return PageInventory{}, err
	}
	keys, err := d.page.Context(ctx).Eval(`() => Array.from(document.querySelectorAll('[data-testid],[id],[name]')).map(e => e.getAttribute('data-testid') || e.id || e.getAttribute('name')).filter(Boolean)`)
	var elementKeys []string
	if err == nil {
		_ = keys.Value.Unmarshal(&elementKeys)
	}
	return PageInventory{URL: info.URL, Title: info.Title, ElementKeys: elementKeys}, nil
}

func (d *RodDriver) Close() error {
	if d.browser != nil {
		return d.browser.Close()
	}
	return nil
}
