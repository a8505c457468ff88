package agent

// Capability tags. These are the stable vocabulary workflow definitions
// reference; renaming one is a breaking change.
const (
	CapReviewCode          = "review_code"
	CapSecurityAudit       = "security_audit"
	CapPerformanceAnalysis = "performance_analysis"

	CapGenerateUnitTests        = "generate_unit_tests"
	CapGenerateIntegrationTests = "generate_integration_tests"
	CapGenerateE2ETests         = "generate_e2e_tests"
	CapAnalyzeTestCoverage      = "analyze_test_coverage"

	CapDesignKubernetesDeployment = "design_kubernetes_deployment"
	CapCreateCICDPipeline         = "create_cicd_pipeline"
	CapSetupMonitoring            = "setup_monitoring"
	CapDesignDisasterRecovery     = "design_disaster_recovery"

	CapGenerateAPIDocumentation = "generate_api_documentation"
	CapCreateUserGuide          = "create_user_guide"
	CapDocumentArchitecture     = "document_architecture"
	CapCreateReadme             = "create_readme"

	CapDesignSystemArchitecture = "design_system_architecture"
	CapRecommendDesignPatterns  = "recommend_design_patterns"
	CapReviewArchitecture       = "review_architecture"
	CapPlanRefactoring          = "plan_refactoring"
	CapDesignMicroservices      = "design_microservices"
)

// TaskInput is one typed capability request. Workflow descriptors carry these
// values; each agent's Handle switches on the concrete type.
type TaskInput interface {
	Capability() string
}

// Code review (akira-001).

type ReviewCodeInput struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
	Context  string `json:"context,omitempty"`
}

func (ReviewCodeInput) Capability() string { return CapReviewCode }

type SecurityAuditInput struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

func (SecurityAuditInput) Capability() string { return CapSecurityAudit }

type PerformanceAnalysisInput struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

func (PerformanceAnalysisInput) Capability() string { return CapPerformanceAnalysis }

// Test engineering (yuki-002).

type UnitTestsInput struct {
	Code      string `json:"code"`
	Language  string `json:"language,omitempty"`
	Framework string `json:"framework,omitempty"`
}

func (UnitTestsInput) Capability() string { return CapGenerateUnitTests }

type IntegrationTestsInput struct {
	Code     string   `json:"code"`
	Language string   `json:"language,omitempty"`
	Services []string `json:"services,omitempty"`
}

func (IntegrationTestsInput) Capability() string { return CapGenerateIntegrationTests }

type E2ETestsInput struct {
	AppDescription string   `json:"app_description"`
	Framework      string   `json:"framework,omitempty"`
	UserFlows      []string `json:"user_flows,omitempty"`
}

func (E2ETestsInput) Capability() string { return CapGenerateE2ETests }

type TestCoverageInput struct {
	Code          string `json:"code"`
	ExistingTests string `json:"existing_tests,omitempty"`
}

func (TestCoverageInput) Capability() string { return CapAnalyzeTestCoverage }

// SRE and DevOps (hiro-003).

type KubernetesDeploymentInput struct {
	AppName      string `json:"app_name"`
	Requirements string `json:"requirements,omitempty"`
}

func (KubernetesDeploymentInput) Capability() string { return CapDesignKubernetesDeployment }

type CICDPipelineInput struct {
	Platform    string   `json:"platform"`
	ProjectType string   `json:"project_type,omitempty"`
	Stages      []string `json:"stages,omitempty"`
}

func (CICDPipelineInput) Capability() string { return CapCreateCICDPipeline }

type MonitoringInput struct {
	AppName string `json:"app_name"`
	Stack   string `json:"stack,omitempty"`
}

func (MonitoringInput) Capability() string { return CapSetupMonitoring }

type DisasterRecoveryInput struct {
	SystemDescription string `json:"system_description"`
	RPO               string `json:"rpo,omitempty"`
	RTO               string `json:"rto,omitempty"`
}

func (DisasterRecoveryInput) Capability() string { return CapDesignDisasterRecovery }

// Documentation (sakura-004).

type APIDocumentationInput struct {
	Code   string `json:"code"`
	Format string `json:"format,omitempty"` // openapi, markdown
}

func (APIDocumentationInput) Capability() string { return CapGenerateAPIDocumentation }

type UserGuideInput struct {
	ProductName string   `json:"product_name"`
	Audience    string   `json:"audience,omitempty"`
	Features    []string `json:"features,omitempty"`
}

func (UserGuideInput) Capability() string { return CapCreateUserGuide }

type ArchitectureDocInput struct {
	SystemName  string   `json:"system_name"`
	Components  []string `json:"components,omitempty"`
	Description string   `json:"description,omitempty"`
}

func (ArchitectureDocInput) Capability() string { return CapDocumentArchitecture }

type ReadmeInput struct {
	ProjectName string `json:"project_name"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
}

func (ReadmeInput) Capability() string { return CapCreateReadme }

// Architecture (kenji-005).

type SystemArchitectureInput struct {
	Requirements string `json:"requirements"`
	Scale        string `json:"scale,omitempty"`
	Constraints  string `json:"constraints,omitempty"`
}

func (SystemArchitectureInput) Capability() string { return CapDesignSystemArchitecture }

type DesignPatternsInput struct {
	ProblemDescription string `json:"problem_description"`
	Language           string `json:"language,omitempty"`
}

func (DesignPatternsInput) Capability() string { return CapRecommendDesignPatterns }

type ArchitectureReviewInput struct {
	ArchitectureDescription string `json:"architecture_description"`
}

func (ArchitectureReviewInput) Capability() string { return CapReviewArchitecture }

type RefactoringPlanInput struct {
	Code  string   `json:"code"`
	Goals []string `json:"goals,omitempty"`
}

func (RefactoringPlanInput) Capability() string { return CapPlanRefactoring }

type MicroservicesInput struct {
	MonolithDescription string   `json:"monolith_description"`
	DomainBoundaries    []string `json:"domain_boundaries,omitempty"`
}

func (MicroservicesInput) Capability() string { return CapDesignMicroservices }
