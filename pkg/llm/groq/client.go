// Package groq provides the Groq implementation of llm.Client. Groq exposes
// an OpenAI-compatible chat completions endpoint, so the adapter reuses the
// official OpenAI SDK pointed at Groq's base URL.
package groq

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
	openaiclient "ensemble/pkg/llm/openai"
)

// BaseURL is Groq's OpenAI-compatible API endpoint.
const BaseURL = "https://api.groq.com/openai/v1/"

// Client implements llm.Client against Groq-hosted models.
type Client struct {
	client openai.Client
	model  string
}

// New creates a Groq client bound to the given model.
// An empty API key is a construction error.
func New(apiKey, model string) (llm.Client, error) {
	if apiKey == "" {
		return nil, llm.NewProviderError(config.ProviderGroq, llm.ReasonAuth, "missing API key")
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(BaseURL),
		option.WithRequestTimeout(config.DefaultCallTimeout),
	)
	return &Client{client: client, model: model}, nil
}

// Generate implements llm.Client.
func (c *Client) Generate(ctx context.Context, in llm.Request) (llm.Response, error) {
	resp, err := openaiclient.Complete(ctx, &c.client, config.ProviderGroq, c.model, in)
	if err != nil {
		return llm.Response{}, llm.Classify(config.ProviderGroq, err)
	}
	return resp, nil
}

// ModelName returns the bound model identifier.
func (c *Client) ModelName() string {
	return c.model
}

// ProviderName returns the provider family.
func (c *Client) ProviderName() string {
	return config.ProviderGroq
}
