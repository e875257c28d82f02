package actionexecutor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ghostqa/internal/browserdriver"
	"ghostqa/internal/config"
	"ghostqa/internal/logging"
)

// Executor runs Steps against a browserdriver.Driver with retry and
// healing.
type Executor struct {
	driver    browserdriver.Driver
	cfg       config.ExecutionConfig
	reportDir string
	callbacks Callbacks
	stepSeq   int
}

// New constructs an Executor over driver. reportDir receives
// step_{n}_failure.png / .html / .json artifacts on failure.
func New(driver browserdriver.Driver, cfg config.ExecutionConfig, reportDir string) *Executor {
	return &Executor{driver: driver, cfg: cfg, reportDir: reportDir}
}

// SetCallbacks registers optional before/after hooks.
func (x *Executor) SetCallbacks(cb Callbacks) { x.callbacks = cb }

// Run executes one Step, retrying up to cfg.MaxFindAttempts (default 3)
// when finding the element or applying the action fails.
func (x *Executor) Run(ctx context.Context, step Step) Result {
	x.stepSeq++
	if x.callbacks.BeforeAction != nil {
		x.callbacks.BeforeAction(step)
	}

	start := time.Now()
	result := x.runOnce(ctx, step)
	result.ExecutionTimeMs = time.Since(start).Milliseconds()

	if result.Status != StatusSuccess && result.Status != StatusRecovered {
		x.captureFailureArtifacts(ctx, step, &result)
	}

	if x.callbacks.AfterAction != nil {
		x.callbacks.AfterAction(step, result)
	}
	return result
}

func (x *Executor) runOnce(ctx context.Context, step Step) Result {
	if step.Action == ActionNavigate {
		return x.runNavigate(ctx, step)
	}
	if step.Action == ActionWait {
		return x.runWait(step)
	}
	if step.Action == ActionPressKey {
		if err := x.driver.PressKey(ctx, step.Value); err != nil {
			return Result{Status: StatusError, Action: step.Action, ErrorMessage: err.Error()}
		}
		return Result{Status: StatusSuccess, Action: step.Action}
	}
	if step.Action == ActionScreenshot {
		return x.runScreenshot(ctx, step)
	}
	if step.Action == ActionAssertURL {
		url, err := x.driver.CurrentURL(ctx)
		if err != nil {
			return Result{Status: StatusError, Action: step.Action, ErrorMessage: err.Error()}
		}
		if url != step.Value {
			return Result{Status: StatusError, Action: step.Action,
				ErrorMessage: fmt.Sprintf("expected url %q, got %q", step.Value, url)}
		}
		return Result{Status: StatusSuccess, Action: step.Action}
	}

	maxAttempts := x.cfg.MaxFindAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var lastResult Result
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt == 2 {
			// Healing attempt 2: give the DOM a moment to settle before the
			// element is looked up again from the live page.
			time.Sleep(150 * time.Millisecond)
		}

		el, resolved, err := findElement(ctx, x.driver, step.Selector, step.Alternatives)
		if err != nil {
			lastResult = classifyFindError(step, err)
			logging.ExecutorDebug("find attempt %d/%d for %s failed: %v", attempt, maxAttempts, step.Selector.Value, err)
			continue
		}

		res := x.applyAction(ctx, step, el, resolved)
		if res.Status == StatusSuccess {
			if attempt > 1 {
				res.Status = StatusRecovered
			}
			return res
		}
		lastResult = res
	}
	return lastResult
}

func classifyFindError(step Step, err error) Result {
	status := StatusError
	switch {
	case errors.Is(err, browserdriver.ErrElementNotFound):
		status = StatusElementNotFound
	case errors.Is(err, browserdriver.ErrElementNotVisible):
		status = StatusElementNotVisible
	}
	return Result{Status: status, Action: step.Action, Selector: step.Selector.Value, SelectorStrategy: step.Selector.Strategy, ErrorMessage: err.Error()}
}

func (x *Executor) applyAction(ctx context.Context, step Step, el browserdriver.ElementHandle, resolved Selector) Result {
	var err error
	switch step.Action {
	case ActionClick:
		err = x.driver.Click(ctx, el)
	case ActionFill:
		err = x.driver.Fill(ctx, el, step.Value)
	case ActionType:
		err = x.driver.Type(ctx, el, step.Value, x.keystrokeDelayMs())
	case ActionSelect:
		err = x.driver.Select(ctx, el, step.Value)
	case ActionCheck:
		err = x.driver.Check(ctx, el, true)
	case ActionUncheck:
		err = x.driver.Check(ctx, el, false)
	case ActionHover:
		err = x.driver.Hover(ctx, el)
	case ActionAssertVisible:
		// Find having already succeeded proves visibility gating passed.
	case ActionAssertText:
		var text string
		text, err = el.Text()
		if err == nil && text != step.Value {
			return Result{Status: StatusError, Action: step.Action, Selector: resolved.Value, SelectorStrategy: resolved.Strategy,
				ErrorMessage: fmt.Sprintf("expected text %q, got %q", step.Value, text)}
		}
	default:
		err = fmt.Errorf("actionexecutor: unsupported action %q", step.Action)
	}

	if err != nil {
		return Result{Status: StatusError, Action: step.Action, Selector: resolved.Value, SelectorStrategy: resolved.Strategy, ErrorMessage: err.Error()}
	}
	return Result{Status: StatusSuccess, Action: step.Action, Selector: resolved.Value, SelectorStrategy: resolved.Strategy}
}

func (x *Executor) keystrokeDelayMs() int {
	if x.cfg.TypeKeystrokeDelayMs <= 0 {
		return 50
	}
	return x.cfg.TypeKeystrokeDelayMs
}

func (x *Executor) runNavigate(ctx context.Context, step Step) Result {
	if err := x.driver.Navigate(ctx, step.Value); err != nil {
		return Result{Status: StatusError, Action: step.Action, ErrorMessage: err.Error()}
	}
	if step.Selector.Value != "" {
		url, err := x.driver.CurrentURL(ctx)
		if err == nil && url != step.Selector.Value && step.Action == ActionAssertURL {
			return Result{Status: StatusError, Action: step.Action,
				ErrorMessage: fmt.Sprintf("expected url %q, got %q", step.Selector.Value, url)}
		}
	}
	return Result{Status: StatusSuccess, Action: step.Action, NavigationOccurred: true}
}

func (x *Executor) runWait(step Step) Result {
	d := step.Timeout
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	time.Sleep(d)
	return Result{Status: StatusSuccess, Action: step.Action}
}

func (x *Executor) runScreenshot(ctx context.Context, step Step) Result {
	data, err := x.driver.Screenshot(ctx)
	if err != nil {
		return Result{Status: StatusError, Action: step.Action, ErrorMessage: err.Error()}
	}
	path := filepath.Join(x.reportDir, fmt.Sprintf("step_%d.png", x.stepSeq))
	if err := os.MkdirAll(x.reportDir, 0o755); err == nil {
		_ = os.WriteFile(path, data, 0o644)
	}
	return Result{Status: StatusSuccess, Action: step.Action, ScreenshotPath: path}
}

// captureFailureArtifacts saves a screenshot, page title/URL snapshot, and
// the element inventory as step_{n}_* files.
func (x *Executor) captureFailureArtifacts(ctx context.Context, step Step, result *Result) {
	if x.reportDir == "" {
		return
	}
	if err := os.MkdirAll(x.reportDir, 0o755); err != nil {
		logging.ExecutorDebug("failure artifact dir create failed: %v", err)
		return
	}

	if shot, err := x.driver.Screenshot(ctx); err == nil {
		path := filepath.Join(x.reportDir, fmt.Sprintf("step_%d_failure.png", x.stepSeq))
		if writeErr := os.WriteFile(path, shot, 0o644); writeErr == nil {
			result.ScreenshotPath = path
		}
	}

	if inv, err := x.driver.Inventory(ctx); err == nil {
		htmlPath := filepath.Join(x.reportDir, fmt.Sprintf("step_%d_failure.html", x.stepSeq))
		_ = os.WriteFile(htmlPath, []byte(fmt.Sprintf("<!-- %s | %s -->", inv.URL, inv.Title)), 0o644)

		jsonPath := filepath.Join(x.reportDir, fmt.Sprintf("step_%d_failure.json", x.stepSeq))
		if data, marshalErr := inventoryJSON(inv); marshalErr == nil {
			_ = os.WriteFile(jsonPath, data, 0o644)
		}
	}
}
