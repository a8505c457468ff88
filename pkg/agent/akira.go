package agent

import (
	"context"
	"strings"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
)

// AkiraDescriptor is the catalog entry for the code review specialist.
//
//nolint:gochecknoglobals // static catalog entry
var AkiraDescriptor = Descriptor{
	ID:          "akira-001",
	DisplayName: "Akira",
	Emoji:       "🔍",
	Role:        "Code Review Master",
	Goal:        "Find defects, security holes, and performance traps before they ship",
	Backstory:   "Fifteen years reviewing code for high-frequency trading systems where a missed bug costs millions. Nothing gets past you.",
	Provider:    config.ProviderAnthropic,
	Model:       config.ModelClaudeSonnet45,
	Specialties: []string{"code-review", "security", "performance"},
	Temperature: 0.2,
}

// Akira reviews code, audits security, and analyzes performance.
type Akira struct {
	base
}

// NewAkira constructs the agent over a bound adapter.
func NewAkira(client llm.Client) *Akira {
	return &Akira{base: newBase(AkiraDescriptor, client)}
}

// Handle implements Agent.
func (a *Akira) Handle(ctx context.Context, in TaskInput) (*Envelope, error) {
	switch in := in.(type) {
	case ReviewCodeInput:
		return a.reviewCode(ctx, in)
	case SecurityAuditInput:
		return a.securityAudit(ctx, in)
	case PerformanceAnalysisInput:
		return a.performanceAnalysis(ctx, in)
	default:
		return nil, &UnknownCapabilityError{AgentID: a.ID(), Capability: in.Capability()}
	}
}

func (a *Akira) reviewCode(ctx context.Context, in ReviewCodeInput) (*Envelope, error) {
	instructions := "Review the following code. Cover correctness, readability, error handling, " +
		"and idiomatic style. List findings by severity (critical, major, minor) with line references " +
		"and a suggested fix for each."
	payload := sectioned(
		"Language", in.Language,
		"Context", in.Context,
		"Code", in.Code,
	)
	return a.generate(ctx, CapReviewCode, instructions, payload, map[string]any{
		"language": in.Language,
	})
}

func (a *Akira) securityAudit(ctx context.Context, in SecurityAuditInput) (*Envelope, error) {
	instructions := "Perform a security audit of the following code. Check for injection, " +
		"authentication and authorization flaws, secrets handling, unsafe deserialization, " +
		"and dependency risks. Rate each finding with CVSS-style severity and give remediation steps."
	payload := sectioned(
		"Language", in.Language,
		"Code", in.Code,
	)
	return a.generate(ctx, CapSecurityAudit, instructions, payload, map[string]any{
		"language": in.Language,
	})
}

func (a *Akira) performanceAnalysis(ctx context.Context, in PerformanceAnalysisInput) (*Envelope, error) {
	instructions := "Analyze the following code for performance. Identify algorithmic complexity " +
		"hotspots, allocation churn, blocking I/O on hot paths, and cache-unfriendly access patterns. " +
		"Propose concrete optimizations ordered by expected impact."
	payload := sectioned(
		"Language", in.Language,
		"Code", in.Code,
	)
	return a.generate(ctx, CapPerformanceAnalysis, instructions, payload, map[string]any{
		"language": strings.ToLower(in.Language),
	})
}
