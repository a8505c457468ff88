package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ensemble/pkg/agent"
	"ensemble/pkg/config"
	"ensemble/pkg/llm"
	"ensemble/pkg/registry"
)

// allCreds has a key for every provider the roster needs.
func allCreds() map[string]string {
	return map[string]string{
		config.ProviderAnthropic: "k-anthropic",
		config.ProviderOpenAI:    "k-openai",
		config.ProviderGroq:      "k-groq",
		config.ProviderGoogle:    "k-google",
	}
}

// stubClient is a canned llm.Client. generate may be nil for a fixed "OK".
type stubClient struct {
	provider string
	model    string
	generate func(ctx context.Context, in llm.Request) (llm.Response, error)
}

func (s *stubClient) Generate(ctx context.Context, in llm.Request) (llm.Response, error) {
	if s.generate != nil {
		return s.generate(ctx, in)
	}
	return llm.Response{Text: "OK", Usage: llm.Usage{PromptTokens: 100, CompletionTokens: 50}}, nil
}

func (s *stubClient) ModelName() string    { return s.model }
func (s *stubClient) ProviderName() string { return s.provider }

// stubFactory builds orchestrator options whose agents run against stub
// clients. Per-provider overrides replace the default all-ok behavior.
func stubFactory(overrides map[string]func(ctx context.Context, in llm.Request) (llm.Response, error)) Options {
	return Options{Agents: agent.Options{
		NewClient: func(provider, _, model string) (llm.Client, error) {
			return &stubClient{provider: provider, model: model, generate: overrides[provider]}, nil
		},
	}}
}

// memRegistry records calls; fail makes every call error.
type memRegistry struct {
	mu        sync.Mutex
	fail      bool
	workflows []registry.CreateWorkflowRequest
	tasks     []registry.CreateTaskRequest
	updates   map[string]registry.UpdateTaskRequest
	nextTask  int
}

func newMemRegistry() *memRegistry {
	return &memRegistry{updates: make(map[string]registry.UpdateTaskRequest)}
}

func (m *memRegistry) CreateWorkflow(_ context.Context, req registry.CreateWorkflowRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", errors.New("registry returned 503")
	}
	m.workflows = append(m.workflows, req)
	return "srv-wf-1", nil
}

func (m *memRegistry) CreateTask(_ context.Context, req registry.CreateTaskRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", errors.New("registry returned 503")
	}
	m.tasks = append(m.tasks, req)
	m.nextTask++
	return "srv-task-" + string(rune('0'+m.nextTask)), nil
}

func (m *memRegistry) UpdateTask(_ context.Context, taskID string, req registry.UpdateTaskRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("registry returned 503")
	}
	m.updates[taskID] = req
	return nil
}

// oneTaskPerAgent is a five-task workflow covering the whole roster in order.
func oneTaskPerAgent() []TaskDescriptor {
	return []TaskDescriptor{
		{AgentID: "akira-001", Description: "review", Input: agent.ReviewCodeInput{Code: "x"}},
		{AgentID: "yuki-002", Description: "tests", Input: agent.UnitTestsInput{Code: "x"}},
		{AgentID: "hiro-003", Description: "deploy", Input: agent.KubernetesDeploymentInput{AppName: "x"}},
		{AgentID: "sakura-004", Description: "readme", Input: agent.ReadmeInput{ProjectName: "x"}},
		{AgentID: "kenji-005", Description: "arch", Input: agent.SystemArchitectureInput{Requirements: "x"}},
	}
}

func TestFullRosterAllOK(t *testing.T) {
	reg := newMemRegistry()
	o := New(reg, stubFactory(nil))
	o.InitializeAgents(allCreds())

	id := o.CreateWorkflow(context.Background(), "full", "", "demo", "test")
	assert.Equal(t, "srv-wf-1", id)

	outcome, err := o.RunWorkflow(context.Background(), id, oneTaskPerAgent())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.Equal(t, 5, outcome.TotalTasks)
	assert.Equal(t, 5, outcome.CompletedTasks)
	assert.Equal(t, 0, outcome.FailedTasks)

	order := make([]string, 0, 5)
	for _, task := range outcome.Tasks {
		assert.True(t, task.Success)
		assert.Equal(t, "OK", task.Result)
		assert.Positive(t, task.TokensUsed)
		order = append(order, task.AgentID)
	}
	assert.Equal(t, []string{"akira-001", "yuki-002", "hiro-003", "sakura-004", "kenji-005"}, order)

	// Every dispatched task got mirrored with a terminal status.
	assert.Len(t, reg.tasks, 5)
	assert.Len(t, reg.updates, 5)
	for _, update := range reg.updates {
		assert.Equal(t, registry.StatusCompleted, update.Status)
	}
}

func TestMissingCredentialSkips(t *testing.T) {
	creds := map[string]string{
		config.ProviderAnthropic: "k",
		config.ProviderOpenAI:    "k",
	}
	o := New(newMemRegistry(), stubFactory(nil))
	o.InitializeAgents(creds)

	id := o.CreateWorkflow(context.Background(), "partial", "", "demo", "test")
	outcome, err := o.RunWorkflow(context.Background(), id, []TaskDescriptor{
		{AgentID: "sakura-004", Input: agent.ReadmeInput{ProjectName: "x"}},
		{AgentID: "akira-001", Input: agent.ReviewCodeInput{Code: "x"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.TotalTasks)
	assert.Equal(t, 1, outcome.CompletedTasks)
	assert.Equal(t, 0, outcome.FailedTasks)
	assert.Equal(t, 1, outcome.SkippedTasks)
	require.Len(t, outcome.Tasks, 1)
	assert.Equal(t, "akira-001", outcome.Tasks[0].AgentID)
	assert.Equal(t, StatusCompleted, outcome.Status)
}

func TestOneAgentFails(t *testing.T) {
	opts := stubFactory(map[string]func(ctx context.Context, in llm.Request) (llm.Response, error){
		config.ProviderAnthropic: func(context.Context, llm.Request) (llm.Response, error) {
			return llm.Response{}, errors.New("boom")
		},
	})
	o := New(newMemRegistry(), opts)
	o.InitializeAgents(allCreds())

	id := o.CreateWorkflow(context.Background(), "mixed", "", "demo", "test")
	outcome, err := o.RunWorkflow(context.Background(), id, []TaskDescriptor{
		{AgentID: "akira-001", Input: agent.ReviewCodeInput{Code: "x"}},
		{AgentID: "yuki-002", Input: agent.UnitTestsInput{Code: "x"}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.Equal(t, 1, outcome.CompletedTasks)
	assert.Equal(t, 1, outcome.FailedTasks)
	require.Len(t, outcome.Tasks, 2)
	assert.False(t, outcome.Tasks[0].Success)
	assert.Contains(t, outcome.Tasks[0].Error, "boom")
	assert.True(t, outcome.Tasks[1].Success)
}

func TestRegistryOutage(t *testing.T) {
	reg := newMemRegistry()
	reg.fail = true
	o := New(reg, stubFactory(nil))
	o.InitializeAgents(allCreds())

	id := o.CreateWorkflow(context.Background(), "offline", "", "demo", "test")
	assert.NotEqual(t, "srv-wf-1", id) // locally generated fallback
	assert.NotEmpty(t, id)

	outcome, err := o.RunWorkflow(context.Background(), id, []TaskDescriptor{
		{AgentID: "akira-001", Input: agent.ReviewCodeInput{Code: "x"}},
		{AgentID: "yuki-002", Input: agent.UnitTestsInput{Code: "x"}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.Equal(t, 2, outcome.CompletedTasks)
	for _, task := range outcome.Tasks {
		assert.True(t, task.Success)
		assert.Empty(t, task.TaskID)
	}
}

func TestProviderTimeout(t *testing.T) {
	const simulated = 30 * time.Millisecond
	opts := stubFactory(map[string]func(ctx context.Context, in llm.Request) (llm.Response, error){
		config.ProviderGroq: func(ctx context.Context, _ llm.Request) (llm.Response, error) {
			time.Sleep(simulated)
			return llm.Response{}, llm.NewProviderError(config.ProviderGroq, llm.ReasonTransient, "request timeout")
		},
	})
	o := New(newMemRegistry(), opts)
	o.InitializeAgents(allCreds())

	id := o.CreateWorkflow(context.Background(), "slow", "", "demo", "test")
	outcome, err := o.RunWorkflow(context.Background(), id, []TaskDescriptor{
		{AgentID: "hiro-003", Input: agent.MonitoringInput{AppName: "x"}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, 1, outcome.FailedTasks)
	require.Len(t, outcome.Tasks, 1)
	assert.Contains(t, outcome.Tasks[0].Error, "timeout")
	assert.GreaterOrEqual(t, outcome.Tasks[0].DurationMS, simulated.Milliseconds())
}

func TestUnknownAgentSkipped(t *testing.T) {
	reg := newMemRegistry()
	o := New(reg, stubFactory(nil))
	o.InitializeAgents(allCreds())

	id := o.CreateWorkflow(context.Background(), "ghost", "", "demo", "test")
	outcome, err := o.RunWorkflow(context.Background(), id, []TaskDescriptor{
		{AgentID: "ghost-999", Input: agent.ReviewCodeInput{Code: "x"}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.Equal(t, 0, outcome.CompletedTasks)
	assert.Equal(t, 0, outcome.FailedTasks)
	assert.Equal(t, 1, outcome.SkippedTasks)
	assert.Empty(t, outcome.Tasks)
	assert.Empty(t, reg.tasks) // no task ever created for an unknown agent
}

func TestUnknownCapabilityFailsTask(t *testing.T) {
	o := New(newMemRegistry(), stubFactory(nil))
	o.InitializeAgents(allCreds())

	// Sakura does not expose review_code; the task dispatches and fails.
	id := o.CreateWorkflow(context.Background(), "mismatch", "", "demo", "test")
	outcome, err := o.RunWorkflow(context.Background(), id, []TaskDescriptor{
		{AgentID: "sakura-004", Input: agent.ReviewCodeInput{Code: "x"}},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, 1, outcome.FailedTasks)
	require.Len(t, outcome.Tasks, 1)
	assert.Contains(t, outcome.Tasks[0].Error, "does not expose capability")
}

func TestUnknownWorkflowIsError(t *testing.T) {
	o := New(newMemRegistry(), stubFactory(nil))
	_, err := o.RunWorkflow(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown workflow")
}

func TestIdempotentInitialization(t *testing.T) {
	o := New(newMemRegistry(), stubFactory(nil))
	o.InitializeAgents(allCreds())
	first := o.ListAvailableAgents()

	o.InitializeAgents(allCreds())
	second := o.ListAvailableAgents()

	assert.Equal(t, first, second)
	for _, s := range second {
		assert.True(t, s.Initialized, s.ID)
	}
}

func TestAgentGating(t *testing.T) {
	o := New(newMemRegistry(), stubFactory(nil))
	o.InitializeAgents(map[string]string{config.ProviderGroq: "k"})

	statuses := o.ListAvailableAgents()
	require.Len(t, statuses, 5)
	for _, s := range statuses {
		if s.ID == "hiro-003" {
			assert.True(t, s.Initialized)
			assert.Empty(t, s.Reason)
		} else {
			assert.False(t, s.Initialized, s.ID)
			assert.NotEmpty(t, s.Reason, s.ID)
		}
	}
}

func TestWorkflowStatusTracking(t *testing.T) {
	o := New(newMemRegistry(), stubFactory(nil))
	o.InitializeAgents(allCreds())

	id := o.CreateWorkflow(context.Background(), "tracked", "", "demo", "test")
	status, ok := o.WorkflowStatus(id)
	require.True(t, ok)
	assert.Equal(t, StatusPending, status)

	_, err := o.RunWorkflow(context.Background(), id, oneTaskPerAgent())
	require.NoError(t, err)

	status, _ = o.WorkflowStatus(id)
	assert.Equal(t, StatusCompleted, status)

	_, ok = o.WorkflowStatus("missing")
	assert.False(t, ok)
}

func TestTaskInputMirroredToRegistry(t *testing.T) {
	reg := newMemRegistry()
	o := New(reg, stubFactory(nil))
	o.InitializeAgents(allCreds())

	id := o.CreateWorkflow(context.Background(), "mirror", "", "demo", "test")
	_, err := o.RunWorkflow(context.Background(), id, []TaskDescriptor{
		{AgentID: "akira-001", Description: "review the diff", Input: agent.ReviewCodeInput{Code: "func x() {}", Language: "go"}},
	})
	require.NoError(t, err)

	require.Len(t, reg.tasks, 1)
	created := reg.tasks[0]
	assert.Equal(t, "akira-001", created.AgentID)
	assert.Equal(t, id, created.WorkflowID)
	assert.Equal(t, agent.CapReviewCode, created.TaskType)
	assert.Equal(t, "review the diff", created.Description)
	assert.Contains(t, created.InputData, `"language":"go"`)
}
