// Package anthropic provides the Anthropic Claude implementation of llm.Client.
package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
)

// Client wraps the Anthropic SDK to implement llm.Client.
type Client struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a Claude client bound to the given model.
// An empty API key is a construction error.
func New(apiKey, model string) (llm.Client, error) {
	if apiKey == "" {
		return nil, llm.NewProviderError(config.ProviderAnthropic, llm.ReasonAuth, "missing API key")
	}
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(config.DefaultCallTimeout),
	)
	return &Client{
		client: client,
		model:  anthropic.Model(model),
	}, nil
}

// Generate implements llm.Client using the messages API.
func (c *Client) Generate(ctx context.Context, in llm.Request) (llm.Response, error) {
	in = llm.Normalize(in, string(c.model))

	params := anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   int64(in.MaxTokens),
		Temperature: anthropic.Float(float64(in.Temperature)),
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(in.Prompt)},
		}},
	}

	if in.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{
			Text: in.SystemPrompt,
			Type: "text",
		}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return llm.Response{}, llm.Classify(config.ProviderAnthropic, err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return llm.Response{}, llm.NewProviderError(config.ProviderAnthropic, llm.ReasonEmptyResponse,
			"received empty response from Claude API")
	}

	// The answer is the concatenation of the response's text blocks.
	var text string
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	if text == "" {
		return llm.Response{}, llm.NewProviderError(config.ProviderAnthropic, llm.ReasonEmptyResponse,
			"response contained no text blocks")
	}

	return llm.Response{
		Text: text,
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}

// ModelName returns the bound model identifier.
func (c *Client) ModelName() string {
	return string(c.model)
}

// ProviderName returns the provider family.
func (c *Client) ProviderName() string {
	return config.ProviderAnthropic
}
