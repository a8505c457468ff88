package agent

import (
	"context"
	"strings"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
)

//nolint:gochecknoglobals // static catalog entry
var KenjiDescriptor = Descriptor{
	ID:          "kenji-005",
	DisplayName: "Kenji",
	Emoji:       "🏛️",
	Role:        "Architecture Visionary",
	Goal:        "Shape systems that stay simple as they grow",
	Backstory:   "Rebuilt the same billing platform twice before learning that architecture is about deferring decisions, not making them early. Skeptical of microservices until the org chart demands them.",
	Provider:    config.ProviderOpenAI,
	Model:       config.ModelGPT4o,
	Specialties: []string{"system-design", "design-patterns", "refactoring", "microservices"},
	Temperature: 0.4,
}

// Kenji handles system design, pattern selection, and refactoring strategy.
type Kenji struct {
	base
}

func NewKenji(client llm.Client) *Kenji {
	return &Kenji{base: newBase(KenjiDescriptor, client)}
}

// Handle implements Agent.
func (k *Kenji) Handle(ctx context.Context, in TaskInput) (*Envelope, error) {
	switch in := in.(type) {
	case SystemArchitectureInput:
		return k.systemArchitecture(ctx, in)
	case DesignPatternsInput:
		return k.designPatterns(ctx, in)
	case ArchitectureReviewInput:
		return k.architectureReview(ctx, in)
	case RefactoringPlanInput:
		return k.refactoringPlan(ctx, in)
	case MicroservicesInput:
		return k.microservices(ctx, in)
	default:
		return nil, &UnknownCapabilityError{AgentID: k.ID(), Capability: in.Capability()}
	}
}

func (k *Kenji) systemArchitecture(ctx context.Context, in SystemArchitectureInput) (*Envelope, error) {
	instructions := "Design a system architecture for the requirements below. Name the components and " +
		"their contracts, the storage and transport choices with alternatives considered, and how the " +
		"design scales past the stated load."
	payload := sectioned(
		"Requirements", in.Requirements,
		"Scale", in.Scale,
		"Constraints", in.Constraints,
	)
	return k.generate(ctx, CapDesignSystemArchitecture, instructions, payload, map[string]any{
		"scale": in.Scale,
	})
}

func (k *Kenji) designPatterns(ctx context.Context, in DesignPatternsInput) (*Envelope, error) {
	instructions := "Recommend design patterns for the problem below. For each pattern: why it fits, a " +
		"short code sketch, and when it would be the wrong choice. At most three patterns, ranked."
	payload := sectioned(
		"Problem", in.ProblemDescription,
		"Language", in.Language,
	)
	return k.generate(ctx, CapRecommendDesignPatterns, instructions, payload, nil)
}

func (k *Kenji) architectureReview(ctx context.Context, in ArchitectureReviewInput) (*Envelope, error) {
	instructions := "Review the architecture described below. Identify single points of failure, " +
		"coupling hot spots, scaling ceilings, and operational risks. Prioritize findings by blast radius " +
		"and give a concrete remediation per finding."
	payload := sectioned(
		"Architecture", in.ArchitectureDescription,
	)
	return k.generate(ctx, CapReviewArchitecture, instructions, payload, nil)
}

func (k *Kenji) refactoringPlan(ctx context.Context, in RefactoringPlanInput) (*Envelope, error) {
	instructions := "Produce a refactoring plan for the code below. Break the work into independently " +
		"shippable steps, each with its risk, its test strategy, and the behavior that must not change."
	payload := sectioned(
		"Code", in.Code,
		"Goals", strings.Join(in.Goals, ", "),
	)
	return k.generate(ctx, CapPlanRefactoring, instructions, payload, nil)
}

func (k *Kenji) microservices(ctx context.Context, in MicroservicesInput) (*Envelope, error) {
	instructions := "Design a microservices decomposition for the monolith below. Draw service " +
		"boundaries along the stated domains, define ownership of data per service, the inter-service " +
		"contracts, and a strangler-fig migration order."
	payload := sectioned(
		"Monolith", in.MonolithDescription,
		"Domain boundaries", strings.Join(in.DomainBoundaries, ", "),
	)
	return k.generate(ctx, CapDesignMicroservices, instructions, payload, map[string]any{
		"domains": len(in.DomainBoundaries),
	})
}
