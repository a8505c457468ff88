// Package registry is the client for the external workflow registry service.
// All calls are best effort: the registry records history, it never gates
// execution.
package registry

// Task and workflow statuses the registry accepts.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// CreateWorkflowRequest is the POST /api/workflows payload.
type CreateWorkflowRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	WorkflowType string `json:"workflow_type"`
	Initiator    string `json:"initiator"`
}

// CreateWorkflowResponse is the registry's 201 body.
type CreateWorkflowResponse struct {
	ID string `json:"id"`
}

// CreateTaskRequest is the POST /api/tasks payload. WorkflowID is omitted for
// tasks that run outside a workflow.
type CreateTaskRequest struct {
	AgentID     string `json:"agent_id"`
	WorkflowID  string `json:"workflow_id,omitempty"`
	TaskType    string `json:"task_type"`
	Description string `json:"description"`
	InputData   string `json:"input_data"`
}

// CreateTaskResponse is the registry's 201 body.
type CreateTaskResponse struct {
	ID string `json:"id"`
}

// UpdateTaskRequest is the PUT /api/tasks/{id} payload.
type UpdateTaskRequest struct {
	Status       string  `json:"status"`
	OutputData   string  `json:"output_data,omitempty"`
	ErrorMessage string  `json:"error_message,omitempty"`
	TokensUsed   int     `json:"tokens_used,omitempty"`
	CostUSD      float64 `json:"cost_usd,omitempty"`
}
