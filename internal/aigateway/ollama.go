package aigateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaProvider calls a local Ollama-style /api/generate endpoint over
// plain net/http, giving the gateway a second, behaviorally-interchangeable
// Provider implementation for local/offline inference.
type OllamaProvider struct {
	Endpoint string
	Model    string
	Client   *http.Client
}

// NewOllamaProvider constructs a provider with the given timeout.
func NewOllamaProvider(endpoint, model string, timeout time.Duration) *OllamaProvider {
	return &OllamaProvider{Endpoint: endpoint, Model: model, Client: &http.Client{Timeout: timeout}}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool   `json:"stream"`
	Options struct {
		NumPredict int `json:"num_predict"`
	} `json:"options"`
}

type ollamaResponse struct {
	Response       string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Done            bool   `json:"done"`
}

// Call implements Provider.
func (p *OllamaProvider) Call(ctx context.Context, prompt string, maxTokens int, imageBytes []byte) (ProviderResult, error) {
	reqBody := ollamaRequest{Model: p.Model, Prompt: prompt, Stream: false}
	reqBody.Options.NumPredict = maxTokens

	data, err := json.Marshal(reqBody)
	if err != nil {
		return ProviderResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint+"/api/generate", bytes.NewReader(data))
	if err != nil {
		return ProviderResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return ProviderResult{}, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ProviderResult{}, err
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ProviderResult{}, fmt.Errorf("ollama response decode: %w", err)
	}
	return ProviderResult{Content: parsed.Response, TokensUsed: parsed.PromptEvalCount + parsed.EvalCount}, nil
}
