package agent

import (
	"context"
	"strings"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
)

//nolint:gochecknoglobals // static catalog entry
var SakuraDescriptor = Descriptor{
	ID:          "sakura-004",
	DisplayName: "Sakura",
	Emoji:       "📚",
	Role:        "Documentation Artist",
	Goal:        "Turn working systems into documentation people actually read",
	Backstory:   "Started as a technical translator and learned that most docs fail by explaining the code instead of the reader's task. Writes for the person who arrives mid-incident.",
	Provider:    config.ProviderGoogle,
	Model:       config.ModelGemini20Flash,
	Specialties: []string{"api-docs", "user-guides", "architecture-docs", "readmes"},
	Temperature: 0.3,
}

// Sakura produces API references, guides, architecture docs, and READMEs.
type Sakura struct {
	base
}

func NewSakura(client llm.Client) *Sakura {
	return &Sakura{base: newBase(SakuraDescriptor, client)}
}

// Handle implements Agent.
func (s *Sakura) Handle(ctx context.Context, in TaskInput) (*Envelope, error) {
	switch in := in.(type) {
	case APIDocumentationInput:
		return s.apiDocumentation(ctx, in)
	case UserGuideInput:
		return s.userGuide(ctx, in)
	case ArchitectureDocInput:
		return s.architectureDoc(ctx, in)
	case ReadmeInput:
		return s.readme(ctx, in)
	default:
		return nil, &UnknownCapabilityError{AgentID: s.ID(), Capability: in.Capability()}
	}
}

func (s *Sakura) apiDocumentation(ctx context.Context, in APIDocumentationInput) (*Envelope, error) {
	instructions := "Generate API documentation for the code below. Document every endpoint or public " +
		"function: parameters, return values, error cases, and a realistic usage example each."
	if in.Format != "" {
		instructions += " Output format: " + in.Format + "."
	}
	payload := sectioned(
		"Code", in.Code,
	)
	return s.generate(ctx, CapGenerateAPIDocumentation, instructions, payload, map[string]any{
		"format": in.Format,
	})
}

func (s *Sakura) userGuide(ctx context.Context, in UserGuideInput) (*Envelope, error) {
	instructions := "Write a user guide for the product below. Open with what the product does in one " +
		"paragraph, then a getting-started walkthrough, then one task-oriented section per feature."
	payload := sectioned(
		"Product", in.ProductName,
		"Audience", in.Audience,
		"Features", strings.Join(in.Features, ", "),
	)
	return s.generate(ctx, CapCreateUserGuide, instructions, payload, map[string]any{
		"audience": in.Audience,
	})
}

func (s *Sakura) architectureDoc(ctx context.Context, in ArchitectureDocInput) (*Envelope, error) {
	instructions := "Document the architecture of the system below. Cover each component's " +
		"responsibility, the data flow between them, key design decisions with their trade-offs, and a " +
		"Mermaid diagram of the topology."
	payload := sectioned(
		"System", in.SystemName,
		"Components", strings.Join(in.Components, ", "),
		"Description", in.Description,
	)
	return s.generate(ctx, CapDocumentArchitecture, instructions, payload, nil)
}

func (s *Sakura) readme(ctx context.Context, in ReadmeInput) (*Envelope, error) {
	instructions := "Write a README for the project below. Include badges placeholder, a one-paragraph " +
		"pitch, installation, quick start with a copy-pasteable example, configuration, and contributing notes."
	payload := sectioned(
		"Project", in.ProjectName,
		"Description", in.Description,
		"Language", in.Language,
	)
	return s.generate(ctx, CapCreateReadme, instructions, payload, nil)
}
