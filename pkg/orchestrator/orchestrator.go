// Package orchestrator runs ordered task lists against the agent roster,
// mirroring progress to the workflow registry best effort.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ensemble/pkg/agent"
	"ensemble/pkg/config"
	"ensemble/pkg/llm/middleware/metrics"
	"ensemble/pkg/logx"
	"ensemble/pkg/registry"
)

// Workflow statuses. Tasks share the same vocabulary.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// TaskDescriptor declares one agent invocation within a workflow.
type TaskDescriptor struct {
	AgentID     string          `json:"agent_id"`
	Description string          `json:"description"`
	Input       agent.TaskInput `json:"input"`
}

// TaskOutcome is the result of one dispatched task.
type TaskOutcome struct {
	Success    bool           `json:"success"`
	TaskID     string         `json:"task_id,omitempty"` // registry id, empty when mirroring failed
	AgentID    string         `json:"agent_id"`
	AgentName  string         `json:"agent_name"`
	TaskType   string         `json:"task_type"`
	Result     string         `json:"result,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	TokensUsed int            `json:"tokens_used"`
	CostUSD    float64        `json:"cost_usd"`
}

// WorkflowOutcome is the aggregate result of one run_workflow call.
type WorkflowOutcome struct {
	WorkflowID     string        `json:"workflow_id"`
	WorkflowName   string        `json:"workflow_name"`
	Status         string        `json:"status"`
	TotalTasks     int           `json:"total_tasks"`
	CompletedTasks int           `json:"completed_tasks"`
	FailedTasks    int           `json:"failed_tasks"`
	SkippedTasks   int           `json:"skipped_tasks"`
	Tasks          []TaskOutcome `json:"tasks"`
	DurationMS     int64         `json:"duration_ms"`
}

// AgentStatus is one row of list_available_agents.
type AgentStatus struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Emoji       string   `json:"emoji"`
	Role        string   `json:"role"`
	Specialties []string `json:"specialties"`
	Initialized bool     `json:"initialized"`
	Reason      string   `json:"reason,omitempty"` // why not initialized
}

// workflow is the locally authoritative record mirrored to the registry.
type workflow struct {
	id      string
	name    string
	status  string
	created time.Time
}

// Options tunes orchestrator construction. The zero value works.
type Options struct {
	// Agents tunes agent construction (recorder, budget, test client override).
	Agents agent.Options
}

// Orchestrator owns the initialized agents and the workflow records for its
// lifetime. All dispatch happens from the caller's goroutine; a mutex guards
// the maps so status queries stay safe from other goroutines.
type Orchestrator struct {
	logger *logx.Logger
	reg    registry.Client
	opts   Options

	mu          sync.Mutex
	agents      map[string]agent.Agent
	unavailable map[string]string // agent id -> reason
	workflows   map[string]*workflow
}

// New creates an orchestrator mirroring to reg. Pass registry.Nop{} for
// offline runs.
func New(reg registry.Client, opts Options) *Orchestrator {
	if reg == nil {
		reg = registry.Nop{}
	}
	return &Orchestrator{
		logger:      logx.NewLogger("orchestrator"),
		reg:         reg,
		opts:        opts,
		agents:      make(map[string]agent.Agent),
		unavailable: make(map[string]string),
		workflows:   make(map[string]*workflow),
	}
}

// InitializeAgents constructs the requested agents (default: the full roster)
// from the credentials present. Agents whose provider credential is missing
// are recorded as unavailable, not errors. Safe to call repeatedly; already
// initialized agents keep their bound adapter.
func (o *Orchestrator) InitializeAgents(creds map[string]string, agentIDs ...string) {
	if len(agentIDs) == 0 {
		for _, d := range agent.Roster() {
			agentIDs = append(agentIDs, d.ID)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for _, id := range agentIDs {
		if _, ok := o.agents[id]; ok {
			continue
		}

		ag, err := agent.New(id, creds, o.opts.Agents)
		if err != nil {
			o.unavailable[id] = err.Error()
			o.logger.Warn("agent %s unavailable: %v", id, err)
			continue
		}

		o.agents[id] = ag
		delete(o.unavailable, id)
		desc := ag.Descriptor()
		o.logger.Info("%s %s (%s) initialized with %s/%s", desc.Emoji, desc.DisplayName, id, desc.Provider, desc.Model)
	}
}

// CreateWorkflow registers a workflow with the registry and records it
// locally as pending. When the registry is unreachable a locally generated id
// is used and stays authoritative.
func (o *Orchestrator) CreateWorkflow(ctx context.Context, name, description, workflowType, initiator string) string {
	id, err := o.reg.CreateWorkflow(ctx, registry.CreateWorkflowRequest{
		Name:         name,
		Description:  description,
		WorkflowType: workflowType,
		Initiator:    initiator,
	})
	if err != nil || id == "" {
		id = uuid.NewString()
		if err != nil {
			o.logger.Warn("registry create_workflow failed, using local id %s: %v", id, err)
		}
	}

	o.mu.Lock()
	o.workflows[id] = &workflow{id: id, name: name, status: StatusPending, created: time.Now()}
	o.mu.Unlock()

	o.logger.Info("workflow %q created (%s)", name, id)
	return id
}

// RunWorkflow dispatches the descriptors sequentially in declared order and
// returns the aggregate outcome. Domain failures (provider errors, agent
// errors, registry outages) are contained per task; the only error returned
// is an unknown workflow id.
func (o *Orchestrator) RunWorkflow(ctx context.Context, workflowID string, descriptors []TaskDescriptor) (*WorkflowOutcome, error) {
	o.mu.Lock()
	wf, ok := o.workflows[workflowID]
	if !ok {
		o.mu.Unlock()
		return nil, fmt.Errorf("unknown workflow %q", workflowID)
	}
	wf.status = StatusRunning
	name := wf.name
	o.mu.Unlock()

	ctx = metrics.WithWorkflowID(ctx, workflowID)
	started := time.Now()

	outcome := &WorkflowOutcome{
		WorkflowID:   workflowID,
		WorkflowName: name,
		TotalTasks:   len(descriptors),
		Tasks:        make([]TaskOutcome, 0, len(descriptors)),
	}

	for i, desc := range descriptors {
		o.mu.Lock()
		ag, ok := o.agents[desc.AgentID]
		o.mu.Unlock()
		if !ok {
			outcome.SkippedTasks++
			o.logger.Warn("task %d: agent %s not initialized, skipping", i+1, desc.AgentID)
			continue
		}

		task := o.dispatch(ctx, workflowID, ag, desc)
		if task.Success {
			outcome.CompletedTasks++
		} else {
			outcome.FailedTasks++
		}
		outcome.Tasks = append(outcome.Tasks, task)
	}

	dispatched := outcome.CompletedTasks + outcome.FailedTasks
	status := StatusCompleted
	if dispatched > 0 && outcome.FailedTasks == dispatched {
		status = StatusFailed
	}
	outcome.Status = status
	outcome.DurationMS = time.Since(started).Milliseconds()

	o.mu.Lock()
	wf.status = status
	o.mu.Unlock()

	o.logger.Info("workflow %s %s: %d/%d completed, %d failed, %d skipped",
		workflowID, status, outcome.CompletedTasks, dispatched, outcome.FailedTasks, outcome.SkippedTasks)
	return outcome, nil
}

// dispatch runs one task end to end: registry create, agent call, registry
// update. Registry failures are logged and swallowed.
func (o *Orchestrator) dispatch(ctx context.Context, workflowID string, ag agent.Agent, desc TaskDescriptor) TaskOutcome {
	taskType := desc.Input.Capability()
	inputData, err := json.Marshal(desc.Input)
	if err != nil {
		inputData = []byte("{}")
	}

	taskID, err := o.reg.CreateTask(ctx, registry.CreateTaskRequest{
		AgentID:     desc.AgentID,
		WorkflowID:  workflowID,
		TaskType:    taskType,
		Description: desc.Description,
		InputData:   string(inputData),
	})
	if err != nil {
		o.logger.Warn("registry create_task failed for %s/%s: %v", desc.AgentID, taskType, err)
		taskID = ""
	}

	o.logger.Info("dispatching %s to %s", taskType, desc.AgentID)
	started := time.Now()
	env, handleErr := ag.Handle(ctx, desc.Input)
	durationMS := time.Since(started).Milliseconds()

	out := TaskOutcome{
		TaskID:     taskID,
		AgentID:    desc.AgentID,
		AgentName:  ag.Name(),
		TaskType:   taskType,
		DurationMS: durationMS,
	}

	if handleErr != nil {
		out.Error = handleErr.Error()
		o.logger.Error("task %s/%s failed after %dms: %v", desc.AgentID, taskType, durationMS, handleErr)
	} else {
		out.Success = true
		out.Result = env.Result
		out.Metadata = env.Metadata
		out.TokensUsed = env.Usage.PromptTokens + env.Usage.CompletionTokens
		out.CostUSD = config.CostUSD(ag.Descriptor().Model, env.Usage.PromptTokens, env.Usage.CompletionTokens)
	}

	if taskID != "" {
		update := registry.UpdateTaskRequest{
			Status:     registry.StatusCompleted,
			OutputData: out.Result,
			TokensUsed: out.TokensUsed,
			CostUSD:    out.CostUSD,
		}
		if !out.Success {
			update.Status = registry.StatusFailed
			update.ErrorMessage = out.Error
			update.OutputData = ""
		}
		if err := o.reg.UpdateTask(ctx, taskID, update); err != nil {
			o.logger.Warn("registry update_task %s failed: %v", taskID, err)
		}
	}

	return out
}

// ListAvailableAgents reports every roster entry with its initialization
// state, in roster order.
func (o *Orchestrator) ListAvailableAgents() []AgentStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	roster := agent.Roster()
	statuses := make([]AgentStatus, 0, len(roster))
	for _, d := range roster {
		_, initialized := o.agents[d.ID]
		statuses = append(statuses, AgentStatus{
			ID:          d.ID,
			DisplayName: d.DisplayName,
			Emoji:       d.Emoji,
			Role:        d.Role,
			Specialties: d.Specialties,
			Initialized: initialized,
			Reason:      o.unavailable[d.ID],
		})
	}
	return statuses
}

// WorkflowStatus returns the locally tracked status of a workflow.
func (o *Orchestrator) WorkflowStatus(workflowID string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	wf, ok := o.workflows[workflowID]
	if !ok {
		return "", false
	}
	return wf.status, true
}
