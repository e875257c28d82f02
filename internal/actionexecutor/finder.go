package actionexecutor

import (
	"context"
	"errors"
	"strings"

	"ghostqa/internal/browserdriver"
)

// findElement tries, in order: the given selector, caller-supplied
// alternatives (pre-ranked), then semantic locators derived from the
// selector value itself (label/placeholder/role/text).
func findElement(ctx context.Context, driver browserdriver.Driver, sel Selector, alternatives []Selector) (browserdriver.ElementHandle, Selector, error) {
	candidates := make([]Selector, 0, 2+len(alternatives)+4)
	candidates = append(candidates, sel)
	candidates = append(candidates, alternatives...)
	candidates = append(candidates, semanticCandidates(sel)...)

	var lastErr error
	for _, c := range candidates {
		el, err := driver.Find(ctx, c.Strategy, c.Value)
		if err == nil {
			return el, c, nil
		}
		lastErr = err
		if errors.Is(err, browserdriver.ErrElementNotVisible) {
			// A found-but-not-visible element is a distinct failure mode;
			// don't keep trying weaker strategies against the same node.
			return nil, c, err
		}
	}
	return nil, sel, lastErr
}

// semanticCandidates derives label/placeholder/role/text lookups from the
// humanized form of a CSS-ish selector value, so a stale `#login-btn`
// selector can still resolve against "login btn" semantics.
func semanticCandidates(sel Selector) []Selector {
	hint := humanizeSelector(sel.Value)
	if hint == "" {
		return nil
	}
	return []Selector{
		{Strategy: "label", Value: hint},
		{Strategy: "placeholder", Value: hint},
		{Strategy: "role", Value: hint},
		{Strategy: "text", Value: hint},
	}
}

// humanizeSelector strips CSS sigils and separators from a selector value
// to recover a human-readable label hint, e.g. "#login-btn" -> "login btn".
// A "data-" attribute prefix is dropped and "=" separates words, so
// `[data-testid="value"]` -> "testid value".
func humanizeSelector(value string) string {
	value = strings.ReplaceAll(value, "[data-", "[")
	out := make([]rune, 0, len(value))
	for _, r := range value {
		switch {
		case r == '#' || r == '.' || r == '[' || r == ']' || r == '"':
			continue
		case r == '-' || r == '_' || r == '=':
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
