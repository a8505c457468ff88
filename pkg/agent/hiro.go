package agent

import (
	"context"
	"strings"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
)

//nolint:gochecknoglobals // static catalog entry
var HiroDescriptor = Descriptor{
	ID:          "hiro-003",
	DisplayName: "Hiro",
	Emoji:       "⚙️",
	Role:        "SRE & DevOps Guardian",
	Goal:        "Keep systems deployable, observable, and recoverable",
	Backstory:   "Carried the pager through three datacenter failures and wrote the postmortems. Designs for the outage that has not happened yet.",
	Provider:    config.ProviderGroq,
	Model:       config.ModelLlama33Variable,
	Specialties: []string{"kubernetes", "ci-cd", "monitoring", "disaster-recovery"},
	Temperature: 0.3,
}

// Hiro handles deployment, pipelines, monitoring, and disaster recovery design.
type Hiro struct {
	base
}

func NewHiro(client llm.Client) *Hiro {
	return &Hiro{base: newBase(HiroDescriptor, client)}
}

// Handle implements Agent.
func (h *Hiro) Handle(ctx context.Context, in TaskInput) (*Envelope, error) {
	switch in := in.(type) {
	case KubernetesDeploymentInput:
		return h.kubernetesDeployment(ctx, in)
	case CICDPipelineInput:
		return h.cicdPipeline(ctx, in)
	case MonitoringInput:
		return h.monitoring(ctx, in)
	case DisasterRecoveryInput:
		return h.disasterRecovery(ctx, in)
	default:
		return nil, &UnknownCapabilityError{AgentID: h.ID(), Capability: in.Capability()}
	}
}

func (h *Hiro) kubernetesDeployment(ctx context.Context, in KubernetesDeploymentInput) (*Envelope, error) {
	instructions := "Design a Kubernetes deployment for the application below. Produce manifests for " +
		"Deployment, Service, HPA, and PodDisruptionBudget, with resource requests/limits, probes, and " +
		"a short rationale per choice."
	payload := sectioned(
		"Application", in.AppName,
		"Requirements", in.Requirements,
	)
	return h.generate(ctx, CapDesignKubernetesDeployment, instructions, payload, map[string]any{
		"app": in.AppName,
	})
}

func (h *Hiro) cicdPipeline(ctx context.Context, in CICDPipelineInput) (*Envelope, error) {
	instructions := "Create a CI/CD pipeline configuration for the platform below. Include build, test, " +
		"security scanning, artifact publishing, and deployment stages with sensible caching and gating."
	payload := sectioned(
		"Platform", in.Platform,
		"Project type", in.ProjectType,
		"Requested stages", strings.Join(in.Stages, ", "),
	)
	return h.generate(ctx, CapCreateCICDPipeline, instructions, payload, map[string]any{
		"platform": in.Platform,
	})
}

func (h *Hiro) monitoring(ctx context.Context, in MonitoringInput) (*Envelope, error) {
	instructions := "Design monitoring for the application below. Define golden signals, alert rules " +
		"with thresholds and runbooks, and a dashboard layout. Prefer symptoms over causes for paging alerts."
	payload := sectioned(
		"Application", in.AppName,
		"Stack", in.Stack,
	)
	return h.generate(ctx, CapSetupMonitoring, instructions, payload, nil)
}

func (h *Hiro) disasterRecovery(ctx context.Context, in DisasterRecoveryInput) (*Envelope, error) {
	instructions := "Design a disaster recovery plan for the system below. Cover backup strategy, " +
		"failover procedure, data replication topology, and a test schedule that proves the plan works."
	payload := sectioned(
		"System", in.SystemDescription,
		"RPO", in.RPO,
		"RTO", in.RTO,
	)
	return h.generate(ctx, CapDesignDisasterRecovery, instructions, payload, map[string]any{
		"rpo": in.RPO,
		"rto": in.RTO,
	})
}
