// Package config holds provider constants, the known-model registry, and
// environment-driven runtime configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider identifiers for the four hosted LLM families.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGroq      = "groq"
	ProviderGoogle    = "google"
)

// Providers lists all supported providers in a stable order.
func Providers() []string {
	return []string{ProviderAnthropic, ProviderOpenAI, ProviderGroq, ProviderGoogle}
}

// Environment variable names recognized by the orchestrator.
const (
	EnvRegistryAPIURL  = "REGISTRY_API_URL"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGroqAPIKey      = "GROQ_API_KEY"
	EnvGoogleAPIKey    = "GOOGLE_API_KEY"
)

// CredentialEnvVars maps each provider to the environment variable holding its key.
//
//nolint:gochecknoglobals // static provider mapping
var CredentialEnvVars = map[string]string{
	ProviderAnthropic: EnvAnthropicAPIKey,
	ProviderOpenAI:    EnvOpenAIAPIKey,
	ProviderGroq:      EnvGroqAPIKey,
	ProviderGoogle:    EnvGoogleAPIKey,
}

// LoadCredentials reads provider credentials from the environment.
// Missing keys are simply absent from the returned map.
func LoadCredentials() map[string]string {
	creds := make(map[string]string)
	for provider, envVar := range CredentialEnvVars {
		if v := os.Getenv(envVar); v != "" {
			creds[provider] = v
		}
	}
	return creds
}

// DefaultRegistryURL is used when REGISTRY_API_URL is unset.
const DefaultRegistryURL = "http://localhost:8080"

// RegistryAPIURL returns the base URL for the workflow/task registry service.
func RegistryAPIURL() string {
	if v := os.Getenv(EnvRegistryAPIURL); v != "" {
		return strings.TrimRight(v, "/")
	}
	return DefaultRegistryURL
}

// Timeout defaults for outbound calls.
const (
	// DefaultCallTimeout bounds a single provider network call.
	DefaultCallTimeout = 30 * time.Second
	// DefaultBudgetTimeout bounds the total wall clock of one generate call.
	DefaultBudgetTimeout = 60 * time.Second
	// RegistryTimeout bounds every registry HTTP call.
	RegistryTimeout = 10 * time.Second
)

// ModelInfo contains static information about a known LLM model.
// This data is hardcoded in the application, not user-configurable.
type ModelInfo struct {
	Provider         string  // API provider (anthropic, openai, groq, google)
	InputCPM         float64 // Cost per million input tokens (USD)
	OutputCPM        float64 // Cost per million output tokens (USD)
	MaxContextTokens int     // Maximum context window size in tokens
	MaxOutputTokens  int     // Maximum output tokens per request
}

// Model name constants for the default roster bindings.
const (
	ModelClaudeSonnet45  = "claude-sonnet-4-5"
	ModelClaudeOpus41    = "claude-opus-4-1"
	ModelGPT4o           = "gpt-4o"
	ModelGPT4oMini       = "gpt-4o-mini"
	ModelO3Mini          = "o3-mini"
	ModelLlama33Variable = "llama-3.3-70b-versatile"
	ModelLlama31Instant  = "llama-3.1-8b-instant"
	ModelGemini20Flash   = "gemini-2.0-flash"
	ModelGemini15Pro     = "gemini-1.5-pro"
)

// KnownModels registry contains pricing and provider information for common models.
// Unknown models fall back to prefix inference via ProviderPatterns.
//
//nolint:gochecknoglobals // intentional global for static model registry
var KnownModels = map[string]ModelInfo{
	// Claude models (Anthropic)
	ModelClaudeSonnet45: {
		Provider:         ProviderAnthropic,
		InputCPM:         3.0,
		OutputCPM:        15.0,
		MaxContextTokens: 200000,
		MaxOutputTokens:  8192,
	},
	ModelClaudeOpus41: {
		Provider:         ProviderAnthropic,
		InputCPM:         15.0,
		OutputCPM:        75.0,
		MaxContextTokens: 200000,
		MaxOutputTokens:  16384,
	},

	// OpenAI GPT models
	ModelGPT4o: {
		Provider:         ProviderOpenAI,
		InputCPM:         2.5,
		OutputCPM:        10.0,
		MaxContextTokens: 128000,
		MaxOutputTokens:  16384,
	},
	ModelGPT4oMini: {
		Provider:         ProviderOpenAI,
		InputCPM:         0.15,
		OutputCPM:        0.6,
		MaxContextTokens: 128000,
		MaxOutputTokens:  16384,
	},
	ModelO3Mini: {
		Provider:         ProviderOpenAI,
		InputCPM:         1.1,
		OutputCPM:        4.4,
		MaxContextTokens: 200000,
		MaxOutputTokens:  65536,
	},

	// Llama models hosted by Groq
	ModelLlama33Variable: {
		Provider:         ProviderGroq,
		InputCPM:         0.59,
		OutputCPM:        0.79,
		MaxContextTokens: 128000,
		MaxOutputTokens:  32768,
	},
	ModelLlama31Instant: {
		Provider:         ProviderGroq,
		InputCPM:         0.05,
		OutputCPM:        0.08,
		MaxContextTokens: 128000,
		MaxOutputTokens:  8192,
	},

	// Gemini models (Google)
	ModelGemini20Flash: {
		Provider:         ProviderGoogle,
		InputCPM:         0.10,
		OutputCPM:        0.40,
		MaxContextTokens: 1000000,
		MaxOutputTokens:  8192,
	},
	ModelGemini15Pro: {
		Provider:         ProviderGoogle,
		InputCPM:         1.25,
		OutputCPM:        5.0,
		MaxContextTokens: 2000000,
		MaxOutputTokens:  8192,
	},
}

// ProviderPattern maps a model name prefix to its provider.
type ProviderPattern struct {
	Prefix   string
	Provider string
}

// ProviderPatterns is checked in order for models not present in KnownModels.
//
//nolint:gochecknoglobals // static pattern table
var ProviderPatterns = []ProviderPattern{
	{"claude", ProviderAnthropic},
	{"gpt", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"o4", ProviderOpenAI},
	{"llama", ProviderGroq},
	{"mixtral", ProviderGroq},
	{"gemini", ProviderGoogle},
}

// GetModelProvider returns the API provider for a given model.
// First checks KnownModels, then tries pattern matching.
func GetModelProvider(modelName string) (string, error) {
	if info, exists := KnownModels[modelName]; exists {
		return info.Provider, nil
	}

	for i := range ProviderPatterns {
		if strings.HasPrefix(modelName, ProviderPatterns[i].Prefix) {
			return ProviderPatterns[i].Provider, nil
		}
	}

	return "", fmt.Errorf("unknown model '%s': no known provider mapping or pattern match", modelName)
}

// GetModelInfo returns the ModelInfo for a given model name.
// Returns the info and true if found in KnownModels, or conservative defaults
// with an inferred provider and false if not found.
func GetModelInfo(modelName string) (ModelInfo, bool) {
	if info, exists := KnownModels[modelName]; exists {
		return info, true
	}

	provider := ""
	for i := range ProviderPatterns {
		if strings.HasPrefix(modelName, ProviderPatterns[i].Prefix) {
			provider = ProviderPatterns[i].Provider
			break
		}
	}

	return ModelInfo{
		Provider:         provider,
		InputCPM:         0.0, // no cost tracking for unknown models
		OutputCPM:        0.0,
		MaxContextTokens: 32000,
		MaxOutputTokens:  4096,
	}, false
}

// CostUSD computes the dollar cost of a call from token counts using
// KnownModels pricing. Unknown models cost zero.
func CostUSD(modelName string, promptTokens, completionTokens int) float64 {
	info, known := GetModelInfo(modelName)
	if !known {
		return 0
	}
	const million = 1_000_000
	return float64(promptTokens)/million*info.InputCPM +
		float64(completionTokens)/million*info.OutputCPM
}

// ClampTemperature bounds a sampling temperature to [0, 1].
func ClampTemperature(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// CapMaxTokens bounds a requested output token count to the model's cap.
// Non-positive requests get the model's full cap.
func CapMaxTokens(modelName string, requested int) int {
	info, _ := GetModelInfo(modelName)
	if requested <= 0 || requested > info.MaxOutputTokens {
		return info.MaxOutputTokens
	}
	return requested
}
