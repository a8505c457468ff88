package agent

import (
	"fmt"
	"time"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
	"ensemble/pkg/llm/anthropic"
	"ensemble/pkg/llm/google"
	"ensemble/pkg/llm/groq"
	"ensemble/pkg/llm/middleware/metrics"
	"ensemble/pkg/llm/middleware/timeout"
	"ensemble/pkg/llm/openai"
)

// Roster returns the full agent catalog in dispatch order.
func Roster() []Descriptor {
	return []Descriptor{
		AkiraDescriptor,
		YukiDescriptor,
		HiroDescriptor,
		SakuraDescriptor,
		KenjiDescriptor,
	}
}

// DescriptorByID looks up a catalog entry.
func DescriptorByID(id string) (Descriptor, bool) {
	for _, d := range Roster() {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// MissingCredentialError means the provider an agent needs has no API key.
// Construction skips rather than fails on it.
type MissingCredentialError struct {
	AgentID  string
	Provider string
	EnvVar   string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("agent %s needs %s credentials (%s not set)", e.AgentID, e.Provider, e.EnvVar)
}

// Options tunes agent construction. The zero value works.
type Options struct {
	// Recorder receives per-request metrics. Nil means no recording.
	Recorder metrics.Recorder
	// BudgetTimeout bounds one capability call end to end, including any
	// retries the provider SDK performs. Zero means config.DefaultBudgetTimeout.
	BudgetTimeout time.Duration
	// NewClient overrides provider client construction. Tests use this to
	// substitute stubs; production leaves it nil.
	NewClient func(provider, apiKey, model string) (llm.Client, error)
}

// New constructs the agent for one catalog entry, binding the provider client
// and the middleware chain. Returns MissingCredentialError when creds lacks
// the key the agent's provider needs.
func New(id string, creds map[string]string, opts Options) (Agent, error) {
	desc, ok := DescriptorByID(id)
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", id)
	}

	apiKey := creds[desc.Provider]
	if apiKey == "" {
		return nil, &MissingCredentialError{
			AgentID:  desc.ID,
			Provider: desc.Provider,
			EnvVar:   config.CredentialEnvVars[desc.Provider],
		}
	}

	newClient := opts.NewClient
	if newClient == nil {
		newClient = newProviderClient
	}
	base, err := newClient(desc.Provider, apiKey, desc.Model)
	if err != nil {
		return nil, err
	}

	budget := opts.BudgetTimeout
	if budget <= 0 {
		budget = config.DefaultBudgetTimeout
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}

	client := llm.Chain(base,
		timeout.Middleware(budget),
		metrics.Middleware(recorder, desc.ID),
	)

	switch desc.ID {
	case AkiraDescriptor.ID:
		return NewAkira(client), nil
	case YukiDescriptor.ID:
		return NewYuki(client), nil
	case HiroDescriptor.ID:
		return NewHiro(client), nil
	case SakuraDescriptor.ID:
		return NewSakura(client), nil
	case KenjiDescriptor.ID:
		return NewKenji(client), nil
	default:
		return nil, fmt.Errorf("unknown agent %q", id)
	}
}

func newProviderClient(provider, apiKey, model string) (llm.Client, error) {
	switch provider {
	case config.ProviderAnthropic:
		return anthropic.New(apiKey, model)
	case config.ProviderOpenAI:
		return openai.New(apiKey, model)
	case config.ProviderGroq:
		return groq.New(apiKey, model)
	case config.ProviderGoogle:
		return google.New(apiKey, model)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
