package agent

import (
	"context"
	"strings"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
)

//nolint:gochecknoglobals // static catalog entry
var YukiDescriptor = Descriptor{
	ID:          "yuki-002",
	DisplayName: "Yuki",
	Emoji:       "🧪",
	Role:        "Test Engineering Specialist",
	Goal:        "Produce test suites that catch regressions before users do",
	Backstory:   "Built the test infrastructure for a browser engine. Believes an untested branch is a broken branch.",
	Provider:    config.ProviderOpenAI,
	Model:       config.ModelGPT4o,
	Specialties: []string{"unit-tests", "integration-tests", "e2e-tests", "coverage"},
	Temperature: 0.2,
}

// Yuki generates unit, integration, and end-to-end tests, and analyzes coverage.
type Yuki struct {
	base
}

func NewYuki(client llm.Client) *Yuki {
	return &Yuki{base: newBase(YukiDescriptor, client)}
}

// Handle implements Agent.
func (y *Yuki) Handle(ctx context.Context, in TaskInput) (*Envelope, error) {
	switch in := in.(type) {
	case UnitTestsInput:
		return y.unitTests(ctx, in)
	case IntegrationTestsInput:
		return y.integrationTests(ctx, in)
	case E2ETestsInput:
		return y.e2eTests(ctx, in)
	case TestCoverageInput:
		return y.testCoverage(ctx, in)
	default:
		return nil, &UnknownCapabilityError{AgentID: y.ID(), Capability: in.Capability()}
	}
}

func (y *Yuki) unitTests(ctx context.Context, in UnitTestsInput) (*Envelope, error) {
	instructions := "Write unit tests for the following code. Cover the happy path, edge cases, " +
		"and error paths. Use table-driven style where the language supports it. Output compilable test code."
	payload := sectioned(
		"Language", in.Language,
		"Framework", in.Framework,
		"Code", in.Code,
	)
	return y.generate(ctx, CapGenerateUnitTests, instructions, payload, map[string]any{
		"framework": in.Framework,
	})
}

func (y *Yuki) integrationTests(ctx context.Context, in IntegrationTestsInput) (*Envelope, error) {
	instructions := "Write integration tests for the following code against its collaborating services. " +
		"Include setup and teardown, realistic fixtures, and failure injection for each external dependency."
	payload := sectioned(
		"Language", in.Language,
		"Services", strings.Join(in.Services, ", "),
		"Code", in.Code,
	)
	return y.generate(ctx, CapGenerateIntegrationTests, instructions, payload, map[string]any{
		"services": in.Services,
	})
}

func (y *Yuki) e2eTests(ctx context.Context, in E2ETestsInput) (*Envelope, error) {
	instructions := "Design end-to-end tests for the application described below. Produce one scenario " +
		"per user flow with steps, assertions, and the data each scenario needs."
	payload := sectioned(
		"Application", in.AppDescription,
		"Framework", in.Framework,
		"User flows", strings.Join(in.UserFlows, "\n- "),
	)
	return y.generate(ctx, CapGenerateE2ETests, instructions, payload, map[string]any{
		"flows": len(in.UserFlows),
	})
}

func (y *Yuki) testCoverage(ctx context.Context, in TestCoverageInput) (*Envelope, error) {
	instructions := "Analyze test coverage for the following code and its existing tests. Identify " +
		"untested branches and behaviors, rank the gaps by risk, and propose the specific tests to close them."
	payload := sectioned(
		"Code", in.Code,
		"Existing tests", in.ExistingTests,
	)
	return y.generate(ctx, CapAnalyzeTestCoverage, instructions, payload, nil)
}
