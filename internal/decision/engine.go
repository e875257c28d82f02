package decision

import (
	"fmt"

	"ghostqa/internal/brain"
	"ghostqa/internal/config"
	"ghostqa/internal/logging"
	"ghostqa/internal/selectorkb"
)

// AIResolver is the subset of the AI Gateway the Decision Engine depends
// on, kept as a local interface so this package never needs to import
// internal/aigateway directly.
type AIResolver interface {
	FindElement(intent, pageContext string, screenshot []byte) (selector string, confidence float64, err error)
	AnalyzeErrorText(message, pageContext string) (recoveryAction string, confidence float64, err error)
	Allowed() bool
}

// Engine is the tiered Decision Engine.
type Engine struct {
	kb    *selectorkb.KB
	brain *brain.Brain
	ai    AIResolver
	cfg   config.ExecutionConfig
}

// New constructs a Decision Engine over the given stores. ai may be nil,
// in which case the AI tier is always skipped.
func New(kb *selectorkb.KB, b *brain.Brain, ai AIResolver, cfg config.ExecutionConfig) *Engine {
	return &Engine{kb: kb, brain: b, ai: ai, cfg: cfg}
}

func (e *Engine) minConfidence(req Request) float64 {
	if req.MinConfidence > 0 {
		return req.MinConfidence
	}
	return e.cfg.ConfidenceLow
}

// Resolve dispatches a request to the tier appropriate for its Type and
// walks the resolution cascade until a tier meets the request's minimum
// confidence.
func (e *Engine) Resolve(req Request) Decision {
	min := e.minConfidence(req)

	switch req.Type {
	case TypeFindElement:
		return e.resolveFindElement(req, min)
	case TypeHandleError:
		return e.resolveHandleError(req, min)
	case TypePredictNext:
		return e.resolvePredictNext(req, min)
	case TypeWaitTime:
		return e.resolveWaitTime(req)
	case TypePageType:
		return e.resolvePageType(req)
	case TypeChooseAction:
		return e.resolveChooseAction(req, min)
	default:
		return e.defaultDecision(req)
	}
}

func (e *Engine) resolveFindElement(req Request, min float64) Decision {
	if e.kb != nil {
		if elem, ok := e.kb.Lookup(req.Domain, req.Page, req.Intent); ok {
			if best := elem.BestSelector(); best != nil && best.Confidence() >= min {
				return Decision{
					Type: req.Type, Source: SourceKnowledgeBase, Confidence: best.Confidence(),
					Value: best.Value, Strategy: best.Strategy, Reasoning: "exact knowledge base hit",
					MemoryID: req.Domain + ":" + req.Page + ":" + req.Intent,
				}
			}
		}
		matches := e.kb.FindByIntent(req.Intent, req.Domain, req.Page, 5)
		if len(matches) > 0 && matches[0].Confidence >= min {
			m := matches[0]
			alts := make([]string, 0, len(matches)-1)
			for _, a := range matches[1:] {
				alts = append(alts, a.Selector.Value)
			}
			return Decision{
				Type: req.Type, Source: SourceKnowledgeBase, Confidence: m.Confidence,
				Value: m.Selector.Value, Strategy: m.Selector.Strategy, Alternatives: alts, Reasoning: "fuzzy intent match",
				MemoryID: m.Domain + ":" + m.Page + ":" + m.Key,
			}
		}
	}

	if e.brain != nil {
		if pm, ok := e.brain.Page.Find(brain.PageSignature{URLPattern: req.Page, PageType: req.PageType}); ok {
			if sel, ok := pm.Elements[req.Intent]; ok && pm.Confidence >= min {
				return Decision{Type: req.Type, Source: SourcePageMemory, Confidence: pm.Confidence, Value: sel, Strategy: selectorkb.StrategyCSS, Reasoning: "page memory element"}
			}
		}
	}

	if selector, ok := heuristicFindElement(req.Intent); ok {
		return Decision{Type: req.Type, Source: SourceHeuristic, Confidence: e.cfg.ConfidenceMedium, Value: selector, Strategy: selectorkb.StrategyCSS, Reasoning: "click-text heuristic"}
	}

	if !req.DisallowAI && e.ai != nil && e.ai.Allowed() {
		selector, conf, err := e.ai.FindElement(req.Intent, req.Page, req.Screenshot)
		if err == nil && selector != "" {
			return Decision{Type: req.Type, Source: SourceAIGateway, Confidence: conf, Value: selector, Strategy: selectorkb.StrategyCSS, Reasoning: "ai gateway inference"}
		}
		logging.DecisionDebug("ai find-element fallback failed for intent=%s: %v", req.Intent, err)
	}

	return e.defaultDecision(req)
}

func (e *Engine) resolveHandleError(req Request, min float64) Decision {
	if e.brain != nil {
		if pattern, score := e.brain.Error.FindMatchingError(req.ErrorMsg); pattern != nil && score >= min {
			return Decision{Type: req.Type, Source: SourcePageMemory, Confidence: score, Value: pattern.RecoveryAction, Reasoning: "error memory match"}
		}
	}
	if action, ok := heuristicHandleError(req.ErrorMsg); ok {
		return Decision{Type: req.Type, Source: SourceHeuristic, Confidence: e.cfg.ConfidenceMedium, Value: action, Reasoning: "validation keyword heuristic"}
	}
	if !req.DisallowAI && e.ai != nil && e.ai.Allowed() {
		action, conf, err := e.ai.AnalyzeErrorText(req.ErrorMsg, req.Page)
		if err == nil && action != "" {
			return Decision{Type: req.Type, Source: SourceAIGateway, Confidence: conf, Value: action, Reasoning: "ai error analysis"}
		}
	}
	return e.defaultDecision(req)
}

func (e *Engine) resolvePredictNext(req Request, min float64) Decision {
	if e.brain != nil {
		if next, conf := e.brain.Workflow.PredictNextPage(req.PageType, req.Action); next != "" && conf >= min {
			return Decision{Type: req.Type, Source: SourcePageMemory, Confidence: conf, Value: next, Reasoning: "workflow memory transition"}
		}
	}
	if next, ok := heuristicPredictNext(req.PageType, req.Action); ok {
		return Decision{Type: req.Type, Source: SourceHeuristic, Confidence: e.cfg.ConfidenceMedium, Value: next, Reasoning: "built-in transition table"}
	}
	return e.defaultDecision(req)
}

func (e *Engine) resolveWaitTime(req Request) Decision {
	if ms, ok := heuristicWaitTime(req.Action); ok {
		return Decision{Type: req.Type, Source: SourceHeuristic, Confidence: e.cfg.ConfidenceHigh, Value: fmt.Sprintf("%d", ms), Reasoning: "action-typed default wait"}
	}
	return e.defaultDecision(req)
}

func (e *Engine) resolvePageType(req Request) Decision {
	urlAndTitle := req.Page + " " + req.Intent
	if pageType, ok := heuristicPageType(urlAndTitle); ok {
		return Decision{Type: req.Type, Source: SourceHeuristic, Confidence: e.cfg.ConfidenceMedium, Value: pageType, Reasoning: "keyword match"}
	}
	return Decision{Type: req.Type, Source: SourceDefault, Confidence: e.cfg.ConfidenceLow, Value: "unknown", Reasoning: "no keyword match"}
}

func (e *Engine) resolveChooseAction(req Request, min float64) Decision {
	if parsed, ok := ChooseActionHeuristic(req.StepText); ok {
		return Decision{
			Type: req.Type, Source: SourceHeuristic, Confidence: e.cfg.ConfidenceHigh,
			Value: parsed.Action, Reasoning: fmt.Sprintf("regex parse: target=%s value=%s", parsed.Target, parsed.Value),
		}
	}
	return e.defaultDecision(req)
}

func (e *Engine) defaultDecision(req Request) Decision {
	return Decision{Type: req.Type, Source: SourceDefault, Confidence: e.cfg.ConfidenceLow, Value: "", Reasoning: "no tier resolved the request"}
}

// RecordDecisionOutcome updates the underlying store referenced by a
// Decision's MemoryID when the caller later learns whether the decision
// succeeded. Only KB-sourced decisions currently carry a MemoryID.
func (e *Engine) RecordDecisionOutcome(d Decision, success bool) {
	if d.MemoryID == "" || e.kb == nil {
		return
	}
	domain, page, key, ok := splitMemoryID(d.MemoryID)
	if !ok {
		return
	}
	strategy := d.Strategy
	if strategy == "" {
		strategy = selectorkb.StrategyCSS
	}
	e.kb.AddLearning(domain, page, key, d.Value, strategy, success, "", nil)
}

func splitMemoryID(id string) (domain, page, key string, ok bool) {
	parts := make([]string, 0, 3)
	start := 0
	for i := 0; i < len(id); i++ {
		if id[i] == ':' {
			parts = append(parts, id[start:i])
			start = i + 1
		}
	}
	parts = append(parts, id[start:])
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
