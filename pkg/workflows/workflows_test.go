package workflows

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ensemble/pkg/agent"
)

func TestAnalyzePR(t *testing.T) {
	def := AnalyzePR(42, "diff --git a/x b/x", "go")

	assert.Equal(t, "Analyze PR #42", def.Name)
	assert.Equal(t, "pr_analysis", def.Type)
	require.Len(t, def.Tasks, 4)

	assert.Equal(t, "akira-001", def.Tasks[0].AgentID)
	review, ok := def.Tasks[0].Input.(agent.ReviewCodeInput)
	require.True(t, ok)
	assert.Equal(t, "diff --git a/x b/x", review.Code)
	assert.Equal(t, "go", review.Language)

	assert.Equal(t, agent.CapSecurityAudit, def.Tasks[1].Input.Capability())
	assert.Equal(t, "yuki-002", def.Tasks[2].AgentID)
	assert.Equal(t, "kenji-005", def.Tasks[3].AgentID)
}

func TestCleanup(t *testing.T) {
	def := Cleanup("package main", "go")
	assert.Equal(t, "cleanup", def.Type)
	require.Len(t, def.Tasks, 4)

	types := make([]string, 0, len(def.Tasks))
	for _, task := range def.Tasks {
		types = append(types, task.Input.Capability())
	}
	assert.Equal(t, []string{
		agent.CapReviewCode,
		agent.CapPerformanceAnalysis,
		agent.CapPlanRefactoring,
		agent.CapGenerateUnitTests,
	}, types)
}

func TestGenerateDocs(t *testing.T) {
	def := GenerateDocs("ensemble", "workflow runner", "package main", "go")
	assert.Equal(t, "documentation", def.Type)
	require.Len(t, def.Tasks, 3)
	for _, task := range def.Tasks {
		assert.Equal(t, "sakura-004", task.AgentID)
	}
}

func TestParseYAML(t *testing.T) {
	src := `
name: Release Gate
description: pre-release checks
workflow_type: release
tasks:
  - agent: akira-001
    task_type: security_audit
    description: audit the release branch
    input:
      code: "package main"
      language: go
  - agent: hiro-003
    task_type: create_cicd_pipeline
    input:
      platform: github-actions
      project_type: go-service
      stages: [build, test, deploy]
`
	def, err := Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Release Gate", def.Name)
	assert.Equal(t, "release", def.Type)
	require.Len(t, def.Tasks, 2)

	audit, ok := def.Tasks[0].Input.(agent.SecurityAuditInput)
	require.True(t, ok)
	assert.Equal(t, "package main", audit.Code)
	assert.Equal(t, "go", audit.Language)

	pipeline, ok := def.Tasks[1].Input.(agent.CICDPipelineInput)
	require.True(t, ok)
	assert.Equal(t, "github-actions", pipeline.Platform)
	assert.Equal(t, []string{"build", "test", "deploy"}, pipeline.Stages)
}

func TestParseDefaultsType(t *testing.T) {
	def, err := Parse([]byte(`
name: minimal
tasks:
  - agent: sakura-004
    task_type: create_readme
    input:
      project_name: demo
`))
	require.NoError(t, err)
	assert.Equal(t, "custom", def.Type)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing name",
			src:  "tasks:\n  - agent: akira-001\n    task_type: review_code",
			want: "name is required",
		},
		{
			name: "no tasks",
			src:  "name: empty",
			want: "has no tasks",
		},
		{
			name: "unknown agent",
			src:  "name: x\ntasks:\n  - agent: ghost-999\n    task_type: review_code",
			want: `unknown agent "ghost-999"`,
		},
		{
			name: "unknown task type",
			src:  "name: x\ntasks:\n  - agent: akira-001\n    task_type: summon_demon",
			want: `unknown task type "summon_demon"`,
		},
		{
			name: "missing agent",
			src:  "name: x\ntasks:\n  - task_type: review_code",
			want: "agent is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: from file
tasks:
  - agent: kenji-005
    task_type: design_microservices
    input:
      monolith_description: legacy billing app
      domain_boundaries: [billing, invoicing]
`), 0o644))

	def, err := Load(path)
	require.NoError(t, err)
	require.Len(t, def.Tasks, 1)

	micro, ok := def.Tasks[0].Input.(agent.MicroservicesInput)
	require.True(t, ok)
	assert.Equal(t, []string{"billing", "invoicing"}, micro.DomainBoundaries)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
