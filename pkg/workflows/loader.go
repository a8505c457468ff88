package workflows

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ensemble/pkg/agent"
	"ensemble/pkg/orchestrator"
)

// yamlWorkflow is the on-disk workflow file shape.
type yamlWorkflow struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Type        string     `yaml:"workflow_type"`
	Tasks       []yamlTask `yaml:"tasks"`
}

type yamlTask struct {
	Agent       string    `yaml:"agent"`
	TaskType    string    `yaml:"task_type"`
	Description string    `yaml:"description"`
	Input       yaml.Node `yaml:"input"`
}

// inputFactories maps the stable capability vocabulary to typed input
// decoders. Every capability an agent exposes has exactly one entry.
//
//nolint:gochecknoglobals // static decode table
var inputFactories = map[string]func(node yaml.Node) (agent.TaskInput, error){
	agent.CapReviewCode:          decodeInput[agent.ReviewCodeInput],
	agent.CapSecurityAudit:       decodeInput[agent.SecurityAuditInput],
	agent.CapPerformanceAnalysis: decodeInput[agent.PerformanceAnalysisInput],

	agent.CapGenerateUnitTests:        decodeInput[agent.UnitTestsInput],
	agent.CapGenerateIntegrationTests: decodeInput[agent.IntegrationTestsInput],
	agent.CapGenerateE2ETests:         decodeInput[agent.E2ETestsInput],
	agent.CapAnalyzeTestCoverage:      decodeInput[agent.TestCoverageInput],

	agent.CapDesignKubernetesDeployment: decodeInput[agent.KubernetesDeploymentInput],
	agent.CapCreateCICDPipeline:         decodeInput[agent.CICDPipelineInput],
	agent.CapSetupMonitoring:            decodeInput[agent.MonitoringInput],
	agent.CapDesignDisasterRecovery:     decodeInput[agent.DisasterRecoveryInput],

	agent.CapGenerateAPIDocumentation: decodeInput[agent.APIDocumentationInput],
	agent.CapCreateUserGuide:          decodeInput[agent.UserGuideInput],
	agent.CapDocumentArchitecture:     decodeInput[agent.ArchitectureDocInput],
	agent.CapCreateReadme:             decodeInput[agent.ReadmeInput],

	agent.CapDesignSystemArchitecture: decodeInput[agent.SystemArchitectureInput],
	agent.CapRecommendDesignPatterns:  decodeInput[agent.DesignPatternsInput],
	agent.CapReviewArchitecture:       decodeInput[agent.ArchitectureReviewInput],
	agent.CapPlanRefactoring:          decodeInput[agent.RefactoringPlanInput],
	agent.CapDesignMicroservices:      decodeInput[agent.MicroservicesInput],
}

// decodeInput converts a YAML input mapping into the typed capability struct.
// The round trip through JSON reuses the structs' json field names, so YAML
// files use the same snake_case keys the registry payloads do.
func decodeInput[T agent.TaskInput](node yaml.Node) (agent.TaskInput, error) {
	raw := map[string]any{}
	if node.Kind != 0 {
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode input: %w", err)
		}
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	var in T
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	return in, nil
}

// Load reads a workflow definition from a YAML file.
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read workflow file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a workflow definition from YAML bytes, validating agent ids
// and capability names against the roster vocabulary.
func Parse(data []byte) (Definition, error) {
	var raw yamlWorkflow
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Definition{}, fmt.Errorf("invalid workflow yaml: %w", err)
	}
	if raw.Name == "" {
		return Definition{}, fmt.Errorf("workflow name is required")
	}
	if len(raw.Tasks) == 0 {
		return Definition{}, fmt.Errorf("workflow %q has no tasks", raw.Name)
	}

	def := Definition{
		Name:        raw.Name,
		Description: raw.Description,
		Type:        raw.Type,
		Tasks:       make([]orchestrator.TaskDescriptor, 0, len(raw.Tasks)),
	}
	if def.Type == "" {
		def.Type = "custom"
	}

	for i, task := range raw.Tasks {
		if task.Agent == "" {
			return Definition{}, fmt.Errorf("task %d: agent is required", i+1)
		}
		if _, ok := agent.DescriptorByID(task.Agent); !ok {
			return Definition{}, fmt.Errorf("task %d: unknown agent %q", i+1, task.Agent)
		}

		factory, ok := inputFactories[task.TaskType]
		if !ok {
			return Definition{}, fmt.Errorf("task %d: unknown task type %q", i+1, task.TaskType)
		}
		in, err := factory(task.Input)
		if err != nil {
			return Definition{}, fmt.Errorf("task %d (%s): %w", i+1, task.TaskType, err)
		}

		def.Tasks = append(def.Tasks, orchestrator.TaskDescriptor{
			AgentID:     task.Agent,
			Description: task.Description,
			Input:       in,
		})
	}
	return def, nil
}
