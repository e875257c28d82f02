package unifiedexecutor

import (
	"ghostqa/internal/decision"
	"ghostqa/internal/patterns"
)

// StepInterpreter is the AI Gateway capability this package needs,
// expressed locally (as internal/decision does for AIResolver) so this
// package never imports internal/aigateway directly.
type StepInterpreter interface {
	InterpretStep(stepText, pageContext string) (action, target, value string, err error)
	Allowed() bool
}

// interpretStep rewrites a behavior-driven step's free text into a
// concrete action, trying (in order): the regex heuristic shared with
// the Decision Engine, an Action Pattern Store lookup, then the AI
// Gateway — the last only in Autonomous mode.
func interpretStep(step UnifiedStep, pageContext string, store *patterns.Store, ai StepInterpreter, mode Mode) (UnifiedStep, bool) {
	if step.Action != "" {
		return step, false
	}

	if parsed, ok := decision.ChooseActionHeuristic(step.Text); ok {
		step.Action = parsed.Action
		step.Selector = parsed.Target
		step.Value = parsed.Value
		return step, false
	}

	if store != nil {
		if matches := store.FindPattern(step.Text, ""); len(matches) > 0 {
			best := matches[0]
			if len(best.Steps) > 0 {
				first := best.Steps[0]
				step.Action = first.Action
				step.Value = first.Value
				if len(first.Selectors) > 0 {
					step.Selector = first.Selectors[0]
				}
				return step, false
			}
		}
	}

	if mode == ModeAutonomous && ai != nil && ai.Allowed() {
		if action, target, value, err := ai.InterpretStep(step.Text, pageContext); err == nil && action != "" {
			step.Action = action
			step.Selector = target
			step.Value = value
			return step, true
		}
	}

	return step, false
}
