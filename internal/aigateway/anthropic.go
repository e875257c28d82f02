package aigateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AnthropicProvider calls an Anthropic-style Messages endpoint over
// plain net/http (no vendor SDK in the corpus covers a generic
// text-completion surface cleanly enough; see DESIGN.md).
type AnthropicProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

// NewAnthropicProvider constructs a provider with the given timeout.
func NewAnthropicProvider(baseURL, apiKey, model string, timeout time.Duration) *AnthropicProvider {
	return &AnthropicProvider{BaseURL: baseURL, APIKey: apiKey, Model: model, Client: &http.Client{Timeout: timeout}}
}

type anthropicContentBlock struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicMessage struct {
	Role    string                  `json:"role"`
	Content []anthropicContentBlock `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Call implements Provider.
func (p *AnthropicProvider) Call(ctx context.Context, prompt string, maxTokens int, imageBytes []byte) (ProviderResult, error) {
	blocks := []anthropicContentBlock{{Type: "text", Text: prompt}}
	if len(imageBytes) > 0 {
		blocks = append([]anthropicContentBlock{{
			Type: "image",
			Source: &anthropicImageSource{
				Type:      "base64",
				MediaType: "image/png",
				Data:      base64.StdEncoding.EncodeToString(imageBytes),
			},
		}}, blocks...)
	}

	reqBody := anthropicRequest{
		Model:     p.Model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: blocks}},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return ProviderResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/messages", bytes.NewReader(data))
	if err != nil {
		return ProviderResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return ProviderResult{}, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ProviderResult{}, err
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ProviderResult{}, fmt.Errorf("anthropic response decode: %w", err)
	}
	if parsed.Error != nil {
		return ProviderResult{}, fmt.Errorf("anthropic error: %s", parsed.Error.Message)
	}

	var text string
	for _, b := range parsed.Content {
		if b.Type == "text" {
			text += b.Text
		}
	}
	return ProviderResult{Content: text, TokensUsed: parsed.Usage.InputTokens + parsed.Usage.OutputTokens}, nil
}
