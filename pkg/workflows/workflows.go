// Package workflows holds the predefined workflow definitions the CLI runs
// and the YAML loader for user-supplied ones.
package workflows

import (
	"fmt"

	"ensemble/pkg/agent"
	"ensemble/pkg/orchestrator"
)

// Definition is a named, ordered task list ready to hand to the orchestrator.
type Definition struct {
	Name        string
	Description string
	Type        string
	Tasks       []orchestrator.TaskDescriptor
}

// AnalyzePR builds the pull-request analysis workflow: review, security
// audit, test gap analysis, then an architecture pass over the diff.
func AnalyzePR(prNumber int, diff, language string) Definition {
	ref := fmt.Sprintf("PR #%d", prNumber)
	return Definition{
		Name:        fmt.Sprintf("Analyze %s", ref),
		Description: fmt.Sprintf("Multi-agent analysis of %s", ref),
		Type:        "pr_analysis",
		Tasks: []orchestrator.TaskDescriptor{
			{
				AgentID:     agent.AkiraDescriptor.ID,
				Description: fmt.Sprintf("Review the %s diff", ref),
				Input:       agent.ReviewCodeInput{Code: diff, Language: language, Context: ref},
			},
			{
				AgentID:     agent.AkiraDescriptor.ID,
				Description: fmt.Sprintf("Security audit of %s", ref),
				Input:       agent.SecurityAuditInput{Code: diff, Language: language},
			},
			{
				AgentID:     agent.YukiDescriptor.ID,
				Description: fmt.Sprintf("Test coverage gaps in %s", ref),
				Input:       agent.TestCoverageInput{Code: diff},
			},
			{
				AgentID:     agent.KenjiDescriptor.ID,
				Description: fmt.Sprintf("Refactoring opportunities in %s", ref),
				Input:       agent.RefactoringPlanInput{Code: diff, Goals: []string{"maintainability", "testability"}},
			},
		},
	}
}

// Cleanup builds the codebase cleanup workflow over a code snapshot.
func Cleanup(code, language string) Definition {
	return Definition{
		Name:        "Codebase Cleanup",
		Description: "Review, performance pass, and refactoring plan",
		Type:        "cleanup",
		Tasks: []orchestrator.TaskDescriptor{
			{
				AgentID:     agent.AkiraDescriptor.ID,
				Description: "Review code quality",
				Input:       agent.ReviewCodeInput{Code: code, Language: language},
			},
			{
				AgentID:     agent.AkiraDescriptor.ID,
				Description: "Find performance hotspots",
				Input:       agent.PerformanceAnalysisInput{Code: code, Language: language},
			},
			{
				AgentID:     agent.KenjiDescriptor.ID,
				Description: "Plan the cleanup refactoring",
				Input:       agent.RefactoringPlanInput{Code: code, Goals: []string{"dead code removal", "simplification"}},
			},
			{
				AgentID:     agent.YukiDescriptor.ID,
				Description: "Regression tests guarding the cleanup",
				Input:       agent.UnitTestsInput{Code: code, Language: language},
			},
		},
	}
}

// GenerateDocs builds the documentation workflow for a project.
func GenerateDocs(projectName, description, code, language string) Definition {
	return Definition{
		Name:        fmt.Sprintf("Document %s", projectName),
		Description: fmt.Sprintf("Generate documentation set for %s", projectName),
		Type:        "documentation",
		Tasks: []orchestrator.TaskDescriptor{
			{
				AgentID:     agent.SakuraDescriptor.ID,
				Description: "Generate API documentation",
				Input:       agent.APIDocumentationInput{Code: code, Format: "markdown"},
			},
			{
				AgentID:     agent.SakuraDescriptor.ID,
				Description: "Write the README",
				Input:       agent.ReadmeInput{ProjectName: projectName, Description: description, Language: language},
			},
			{
				AgentID:     agent.SakuraDescriptor.ID,
				Description: "Document the architecture",
				Input:       agent.ArchitectureDocInput{SystemName: projectName, Description: description},
			},
		},
	}
}
