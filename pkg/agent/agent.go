// Package agent defines the specialist LLM agents, their capability inputs,
// and the roster catalog they are constructed from.
package agent

import (
	"context"
	"fmt"
	"strings"

	"ensemble/pkg/llm"
	"ensemble/pkg/logx"
	"ensemble/pkg/tokens"
)

// Descriptor is the immutable catalog entry for one agent.
type Descriptor struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Emoji       string   `json:"emoji"`
	Role        string   `json:"role"`
	Goal        string   `json:"goal"`
	Backstory   string   `json:"backstory"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Specialties []string `json:"specialties"`
	Temperature float32  `json:"temperature"`
}

// SystemPrompt renders the fixed role/goal/backstory stem every capability
// call shares.
func (d Descriptor) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s.\n", d.DisplayName, d.Role)
	fmt.Fprintf(&b, "Goal: %s\n", d.Goal)
	fmt.Fprintf(&b, "Backstory: %s\n", d.Backstory)
	b.WriteString("Respond with well-structured, actionable output. Stay within your specialty.")
	return b.String()
}

// Envelope is the structured result of one capability call.
type Envelope struct {
	AgentID   string         `json:"agent_id"`
	AgentName string         `json:"agent_name"`
	TaskType  string         `json:"task_type"`
	Result    string         `json:"result"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Usage     llm.Usage      `json:"usage"`
}

// Agent is one named specialist. Agents are stateless between calls; the only
// state they hold is their descriptor and the adapter bound at construction.
type Agent interface {
	ID() string
	Name() string
	Descriptor() Descriptor

	// Handle dispatches a typed capability input and returns the envelope.
	// Inputs outside the agent's capability set return UnknownCapabilityError.
	Handle(ctx context.Context, in TaskInput) (*Envelope, error)
}

// UnknownCapabilityError is returned when an input reaches an agent that does
// not expose the corresponding capability.
type UnknownCapabilityError struct {
	AgentID    string
	Capability string
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("agent %s does not expose capability %q", e.AgentID, e.Capability)
}

// base carries the shared mechanics of every concrete agent.
type base struct {
	logger *logx.Logger
	client llm.Client
	desc   Descriptor
}

func newBase(desc Descriptor, client llm.Client) base {
	return base{
		desc:   desc,
		client: client,
		logger: logx.NewLogger(desc.ID),
	}
}

func (b *base) ID() string             { return b.desc.ID }
func (b *base) Name() string           { return b.desc.DisplayName }
func (b *base) Descriptor() Descriptor { return b.desc }

// generate runs one capability call: stem + instructions + payload through the
// bound adapter, wrapped into an envelope with usage accounting.
func (b *base) generate(ctx context.Context, taskType, instructions, payload string, metadata map[string]any) (*Envelope, error) {
	prompt := instructions
	if payload != "" {
		prompt += "\n\n" + payload
	}

	req := llm.NewRequest(prompt, b.desc.SystemPrompt())
	req.Temperature = b.desc.Temperature

	b.logger.Debug("dispatching %s to %s", taskType, b.client.ModelName())
	resp, err := b.client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	promptTokens, completionTokens := tokens.Estimate(
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens,
		req.SystemPrompt+"\n"+req.Prompt, resp.Text,
	)

	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["model"] = b.client.ModelName()
	metadata["provider"] = b.client.ProviderName()

	return &Envelope{
		AgentID:   b.desc.ID,
		AgentName: b.desc.DisplayName,
		TaskType:  taskType,
		Result:    resp.Text,
		Metadata:  metadata,
		Usage: llm.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
		},
	}, nil
}

// sectioned renders labeled prompt sections, skipping empty ones.
func sectioned(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		label, value := pairs[i], pairs[i+1]
		if value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s:\n%s", label, value)
	}
	return b.String()
}
