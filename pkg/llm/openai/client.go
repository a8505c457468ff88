// Package openai provides the OpenAI implementation of llm.Client using the
// official Go SDK's chat completions API.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
)

// Client wraps the official OpenAI SDK to implement llm.Client.
type Client struct {
	client openai.Client
	model  string
}

// New creates an OpenAI client bound to the given model.
// An empty API key is a construction error.
func New(apiKey, model string) (llm.Client, error) {
	if apiKey == "" {
		return nil, llm.NewProviderError(config.ProviderOpenAI, llm.ReasonAuth, "missing API key")
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(config.DefaultCallTimeout),
	)
	return &Client{client: client, model: model}, nil
}

// Generate implements llm.Client.
func (c *Client) Generate(ctx context.Context, in llm.Request) (llm.Response, error) {
	resp, err := Complete(ctx, &c.client, config.ProviderOpenAI, c.model, in)
	if err != nil {
		return llm.Response{}, llm.Classify(config.ProviderOpenAI, err)
	}
	return resp, nil
}

// ModelName returns the bound model identifier.
func (c *Client) ModelName() string {
	return c.model
}

// ProviderName returns the provider family.
func (c *Client) ProviderName() string {
	return config.ProviderOpenAI
}

// Complete shapes and executes a chat-completions request. Shared with the
// groq adapter, which speaks the same wire format on a different endpoint.
func Complete(ctx context.Context, client *openai.Client, provider, model string, in llm.Request) (llm.Response, error) {
	in = llm.Normalize(in, model)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if in.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(in.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(in.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(in.MaxTokens)),
		Temperature: openai.Float(float64(in.Temperature)),
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.Response{}, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return llm.Response{}, llm.NewProviderError(provider, llm.ReasonEmptyResponse, "empty choices in chat completion")
	}

	return llm.Response{
		Text: resp.Choices[0].Message.Content,
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}
