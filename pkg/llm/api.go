// Package llm provides the uniform call surface over hosted model providers.
package llm

import (
	"context"

	"ensemble/pkg/config"
)

const (
	// DefaultMaxTokens is used when a request does not specify an output cap.
	DefaultMaxTokens = 4096

	// TemperatureDefault suits planning, reviews, and judgment tasks.
	TemperatureDefault = 0.3

	// TemperatureDeterministic suits code generation and other tasks where
	// consistency matters more than exploration.
	TemperatureDeterministic = 0.2
)

// Request describes a single text generation call.
type Request struct {
	Prompt       string  // user payload
	SystemPrompt string  // role framing, may be empty
	MaxTokens    int     // output cap; non-positive means the model default
	Temperature  float32 // sampling temperature, clamped to [0, 1]
}

// Usage carries token accounting reported by the provider.
// Zero values mean the provider did not report usage.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Response is the normalized result of a generation call.
type Response struct {
	Text  string
	Usage Usage
}

// Client is the uniform interface over the four provider families.
type Client interface {
	// Generate produces a completion for the request.
	Generate(ctx context.Context, in Request) (Response, error)

	// ModelName returns the bound model identifier.
	ModelName() string

	// ProviderName returns the provider family (anthropic, openai, groq, google).
	ProviderName() string
}

// NewRequest creates a request with default generation parameters.
func NewRequest(prompt, systemPrompt string) Request {
	return Request{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		MaxTokens:    DefaultMaxTokens,
		Temperature:  TemperatureDefault,
	}
}

// Normalize clamps the temperature and caps the token budget for a model.
// Every adapter applies this before shaping the provider request.
func Normalize(in Request, modelName string) Request {
	in.Temperature = config.ClampTemperature(in.Temperature)
	in.MaxTokens = config.CapMaxTokens(modelName, in.MaxTokens)
	return in
}
