package aigateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"ghostqa/internal/config"
	"ghostqa/internal/logging"
)

// ErrBudgetExceeded is returned (wrapped into a failed Response) when the
// request's priority does not bypass an exhausted budget tier.
var ErrBudgetExceeded = errors.New("ai gateway: budget limit reached")

// Gateway is the AI Gateway: cache + budget in front of a Provider.
type Gateway struct {
	provider Provider
	cache    *Cache
	budget   *Budget
	cfg      config.AIGatewayConfig
	group    singleflight.Group
}

// New constructs a Gateway. The provider is selected by cfg.Provider.
func New(cfg config.AIGatewayConfig, dataDir string) *Gateway {
	var p Provider
	switch cfg.Provider {
	case "ollama":
		p = NewOllamaProvider(cfg.OllamaEndpoint, cfg.OllamaModel, cfg.LocalTimeout())
	default:
		p = NewAnthropicProvider(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.RemoteTimeout())
	}
	return NewWithProvider(p, cfg, dataDir)
}

// NewWithProvider constructs a Gateway over an explicit Provider,
// primarily so tests can substitute a fake provider without a live
// network dependency.
func NewWithProvider(p Provider, cfg config.AIGatewayConfig, dataDir string) *Gateway {
	return &Gateway{
		provider: p,
		cache:    NewCache(dataDir, cfg.CacheCapacity),
		budget:   NewBudget(dataDir, cfg.DailyTokenBudget, cfg.HourlyTokenBudget, cfg.PerTestTokenBudget),
		cfg:      cfg,
	}
}

// Allowed reports whether a Normal-priority request could proceed right
// now, used by callers (e.g. the Decision Engine) deciding whether it is
// worth constructing a prompt at all.
func (g *Gateway) Allowed() bool {
	return g.budget.Allow(PriorityNormal)
}

// StartTest resets the per-test token counter.
func (g *Gateway) StartTest() { g.budget.StartTest() }

// Request runs the full pipeline: cache check, budget check, provider
// dispatch (deduplicated via singleflight for identical concurrent cache
// keys), budget deduction, and cache insertion.
func (g *Gateway) Request(ctx context.Context, req Request) Response {
	start := time.Now()
	key := Key(req.Type, req.Prompt, req.Context)

	if entry, ok := g.cache.Get(key); ok {
		return Response{Success: true, Content: entry.Content, Cached: true, TokensUsed: 0, LatencyMs: time.Since(start).Milliseconds()}
	}

	if !g.budget.Allow(req.Priority) {
		logging.AIGatewayWarn("budget denied request type=%s priority=%s", req.Type, req.Priority)
		return Response{Success: false, Error: ErrBudgetExceeded.Error(), LatencyMs: time.Since(start).Milliseconds()}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}

	v, err, _ := g.group.Do(key, func() (interface{}, error) {
		return g.provider.Call(ctx, req.Prompt, maxTokens, req.Screenshot)
	})

	if err != nil {
		logging.AIGatewayWarn("provider call failed type=%s: %v", req.Type, err)
		return Response{Success: false, Error: err.Error(), LatencyMs: time.Since(start).Milliseconds()}
	}

	result := v.(ProviderResult)
	g.budget.Deduct(result.TokensUsed)
	g.cache.Put(key, result.Content, result.TokensUsed)

	return Response{
		Success: true, Content: result.Content, TokensUsed: result.TokensUsed,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

// FindElement is a specialized helper: expects a bare CSS selector
// response.
func (g *Gateway) FindElement(intent, pageContext string, screenshot []byte) (string, float64, error) {
	prompt := fmt.Sprintf("Return only a CSS selector for the element matching intent %q on this page. Page context: %s", intent, pageContext)
	resp := g.Request(context.Background(), Request{
		Type: RequestFindElement, Prompt: prompt, Context: pageContext,
		Priority: PriorityNormal, MaxTokens: 128, Screenshot: screenshot,
	})
	if !resp.Success {
		return "", 0, errors.New(resp.Error)
	}
	confidence := 0.6
	if resp.Cached {
		confidence = 0.7
	}
	return resp.Content, confidence, nil
}

// InterpretStep expects JSON {action, target, value} and returns it parsed.
func (g *Gateway) InterpretStep(stepText, pageContext string) (action, target, value string, err error) {
	prompt := fmt.Sprintf("Interpret this test step into JSON {action, target, value}: %q. Page context: %s", stepText, pageContext)
	resp := g.Request(context.Background(), Request{
		Type: RequestInterpretStep, Prompt: prompt, Context: pageContext,
		Priority: PriorityNormal, MaxTokens: 256,
	})
	if !resp.Success {
		return "", "", "", errors.New(resp.Error)
	}
	var step InterpretedStep
	if err := json.Unmarshal(extractJSONObject(resp.Content), &step); err != nil {
		return "", "", "", fmt.Errorf("ai gateway: parse interpret_step response: %w", err)
	}
	return step.Action, step.Target, step.Value, nil
}

// AnalyzeErrorText expects JSON {error_type, cause, recovery}; the
// Decision Engine's AIResolver interface only needs the recovery tag and
// a confidence, so this unwraps that much locally.
func (g *Gateway) AnalyzeErrorText(message, pageContext string) (string, float64, error) {
	prompt := fmt.Sprintf("Analyze this error into JSON {error_type, cause, recovery}: %q. Page context: %s", message, pageContext)
	resp := g.Request(context.Background(), Request{
		Type: RequestAnalyzeError, Prompt: prompt, Context: pageContext,
		Priority: PriorityLow, MaxTokens: 256,
	})
	if !resp.Success {
		return "", 0, errors.New(resp.Error)
	}
	var parsed struct {
		Recovery string `json:"recovery"`
	}
	if err := json.Unmarshal(extractJSONObject(resp.Content), &parsed); err != nil || parsed.Recovery == "" {
		return "", 0, fmt.Errorf("ai gateway: parse analyze_error response: %w", firstNonNil(err, errors.New("no recovery field")))
	}
	return parsed.Recovery, 0.6, nil
}

// extractJSONObject returns the first {...} substring in s, or s itself
// if no braces are found, so a provider that wraps its JSON in prose or
// markdown fences can still be parsed.
func extractJSONObject(s string) []byte {
	start := -1
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					return []byte(s[start : i+1])
				}
			}
		}
	}
	return []byte(s)
}

func firstNonNil(err error, fallback error) error {
	if err != nil {
		return err
	}
	return fallback
}
