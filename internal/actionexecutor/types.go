// Package actionexecutor drives one atomic browser step at a time against
// a browserdriver.Driver, with retry, multi-strategy element finding, and
// structured result reporting.
package actionexecutor

import "time"

// Action is the closed set of atomic steps the executor accepts.
// ActionAssertURL compares the driver's current URL with Step.Value.
// ActionScroll has no handler: the driver exposes no scroll operation, so
// a scroll step never ends in StatusSuccess.
type Action string

const (
	ActionNavigate     Action = "navigate"
	ActionClick        Action = "click"
	ActionFill         Action = "fill"
	ActionType         Action = "type"
	ActionSelect       Action = "select"
	ActionCheck        Action = "check"
	ActionUncheck      Action = "uncheck"
	ActionHover        Action = "hover"
	ActionWait         Action = "wait"
	ActionPressKey     Action = "press-key"
	ActionScroll       Action = "scroll"
	ActionScreenshot   Action = "screenshot"
	ActionAssertVisible Action = "assert-visible"
	ActionAssertText   Action = "assert-text"
	ActionAssertURL    Action = "assert-url"
)

// Status is the closed set of step outcomes.
type Status string

const (
	StatusSuccess          Status = "Success"
	StatusElementNotFound  Status = "ElementNotFound"
	StatusElementNotVisible Status = "ElementNotVisible"
	StatusTimeout          Status = "Timeout"
	StatusError            Status = "Error"
	StatusRecovered        Status = "Recovered"
)

// Selector is a single strategy/value pair, with optional pre-ranked
// alternatives supplied by the caller.
type Selector struct {
	Strategy string
	Value    string
}

// Step is one atomic browser instruction.
type Step struct {
	Action       Action
	Selector     Selector
	Alternatives []Selector
	Value        string
	Timeout      time.Duration
}

// Result is the outcome of running one Step.
type Result struct {
	Status            Status
	Action            Action
	Selector          string
	SelectorStrategy  string
	ExecutionTimeMs   int64
	ErrorMessage      string
	NavigationOccurred bool
	ScreenshotPath    string
}

// Callbacks are optional hooks invoked around each step.
type Callbacks struct {
	BeforeAction func(Step)
	AfterAction  func(Step, Result)
}
