// Package google provides the Google Gemini implementation of llm.Client.
package google

import (
	"context"
	"net/http"
	"sync"

	"google.golang.org/genai"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
)

// Client wraps the Google GenAI SDK to implement llm.Client.
type Client struct {
	client *genai.Client
	apiKey string
	model  string
	mu     sync.Mutex
}

// New creates a Gemini client bound to the given model.
// An empty API key is a construction error. The underlying SDK client is
// created lazily because genai.NewClient requires a context.
func New(apiKey, model string) (llm.Client, error) {
	if apiKey == "" {
		return nil, llm.NewProviderError(config.ProviderGoogle, llm.ReasonAuth, "missing API key")
	}
	return &Client{apiKey: apiKey, model: model}, nil
}

func (c *Client) ensureClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout: config.DefaultCallTimeout,
		},
	})
	if err != nil {
		return nil, llm.Classify(config.ProviderGoogle, err)
	}
	c.client = client
	return client, nil
}

// Generate implements llm.Client.
func (c *Client) Generate(ctx context.Context, in llm.Request) (llm.Response, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return llm.Response{}, err
	}

	in = llm.Normalize(in, c.model)

	//nolint:gosec // MaxTokens is capped by Normalize, no overflow
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &in.Temperature,
		MaxOutputTokens: int32(in.MaxTokens),
	}
	if in.SystemPrompt != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: in.SystemPrompt}},
		}
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: in.Prompt}},
	}}

	result, err := client.Models.GenerateContent(ctx, c.model, contents, genConfig)
	if err != nil {
		return llm.Response{}, llm.Classify(config.ProviderGoogle, err)
	}
	if result == nil || result.Text() == "" {
		return llm.Response{}, llm.NewProviderError(config.ProviderGoogle, llm.ReasonEmptyResponse,
			"empty response from Gemini API")
	}

	resp := llm.Response{Text: result.Text()}
	if result.UsageMetadata != nil {
		resp.Usage = llm.Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
		}
	}
	return resp, nil
}

// ModelName returns the bound model identifier.
func (c *Client) ModelName() string {
	return c.model
}

// ProviderName returns the provider family.
func (c *Client) ProviderName() string {
	return config.ProviderGoogle
}
