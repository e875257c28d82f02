package decision

import (
	"regexp"
	"strings"
)

var clickTextRe = regexp.MustCompile(`(?i)click\s+(?:the\s+)?(.+?)\s+(button|link)`)

// heuristicFindElement implements the built-in FindElement heuristics:
// a "click X button"/"click X link" intent emits a text-matching CSS
// locator. Generic field/input intents deliberately return no heuristic
// so AI fallback can observe and the learner can capture a real selector.
func heuristicFindElement(intent string) (selector string, ok bool) {
	m := clickTextRe.FindStringSubmatch(intent)
	if m == nil {
		return "", false
	}
	label := strings.TrimSpace(m[1])
	tag := "button"
	if strings.EqualFold(m[2], "link") {
		tag = "a"
	}
	return tag + `:has-text("` + label + `")`, true
}

// validationKeywords maps recognized validation-error substrings to a
// canonical recovery action tag.
var validationKeywords = []struct {
	substr string
	action string
}{
	{"required", "fill_required_field"},
	{"invalid email", "fix_email_format"},
	{"password too short", "fix_password"},
	{"already taken", "choose_different_value"},
	{"timeout", "retry_after_wait"},
}

// heuristicHandleError recognizes validation keywords in an error
// message and returns a canonical recovery action tag.
func heuristicHandleError(message string) (action string, ok bool) {
	lower := strings.ToLower(message)
	for _, kw := range validationKeywords {
		if strings.Contains(lower, kw.substr) {
			return kw.action, true
		}
	}
	return "", false
}

// transitionDefaults is a small built-in transition table used when
// WorkflowMemory has no observation for a (pageType, action) pair yet.
var transitionDefaults = map[string]string{
	"login|submit":  "dashboard",
	"search|submit": "results",
	"form|submit":   "confirmation",
}

func heuristicPredictNext(pageType, action string) (string, bool) {
	next, ok := transitionDefaults[pageType+"|"+action]
	return next, ok
}

// waitDefaults are action-typed default wait times in milliseconds.
var waitDefaults = map[string]int{
	"navigate": 2000,
	"click":    500,
	"type":     200,
	"submit":   3000,
}

func heuristicWaitTime(action string) (int, bool) {
	ms, ok := waitDefaults[action]
	return ms, ok
}

// pageTypeKeywords maps a page type to keyword sets matched against URL + title.
var pageTypeKeywords = map[string][]string{
	"auth":     {"login", "signin", "sign-in", "authenticate"},
	"search":   {"search", "results", "query"},
	"form":     {"form", "submit", "create", "new"},
	"dashboard": {"dashboard", "home", "overview"},
	"checkout": {"checkout", "cart", "payment"},
}

func heuristicPageType(urlAndTitle string) (string, bool) {
	lower := strings.ToLower(urlAndTitle)
	for pageType, keywords := range pageTypeKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return pageType, true
			}
		}
	}
	return "", false
}

var (
	clickRe    = regexp.MustCompile(`(?i)^(click|tap|press)\s+(.+)$`)
	typeRe     = regexp.MustCompile(`(?i)^(type|enter|fill)\s+"?(.+?)"?\s+(?:in|into)\s+(.+)$`)
	navigateRe = regexp.MustCompile(`(?i)^(navigate|go)\s+to\s+(.+)$`)
)

// ParsedAction is the result of parsing a free-text step into a concrete
// action, shared between the Decision Engine's ChooseAction heuristic and
// the Unified Executor's step interpretation.
type ParsedAction struct {
	Action string
	Target string
	Value  string
}

// ChooseActionHeuristic parses natural-language step text with regex,
// the contract shared with the Unified Executor's step interpretation.
func ChooseActionHeuristic(text string) (ParsedAction, bool) {
	text = strings.TrimSpace(text)

	if m := typeRe.FindStringSubmatch(text); m != nil {
		return ParsedAction{Action: "type", Value: m[2], Target: m[3]}, true
	}
	if m := navigateRe.FindStringSubmatch(text); m != nil {
		return ParsedAction{Action: "navigate", Target: m[2]}, true
	}
	if m := clickRe.FindStringSubmatch(text); m != nil {
		return ParsedAction{Action: "click", Target: m[2]}, true
	}
	return ParsedAction{}, false
}
