package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ensemble/pkg/config"
	"ensemble/pkg/logx"
)

// Client records workflows and tasks with the registry service.
type Client interface {
	// CreateWorkflow registers a workflow and returns the registry's ID.
	CreateWorkflow(ctx context.Context, req CreateWorkflowRequest) (string, error)
	// CreateTask registers a task and returns the registry's ID.
	CreateTask(ctx context.Context, req CreateTaskRequest) (string, error)
	// UpdateTask reports a task's terminal state.
	UpdateTask(ctx context.Context, taskID string, req UpdateTaskRequest) error
}

// HTTPClient talks to a registry over its JSON API.
type HTTPClient struct {
	baseURL string
	logger  *logx.Logger
	client  *http.Client
}

// NewHTTPClient creates a registry client for the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logx.NewLogger("registry"),
		client:  &http.Client{Timeout: config.RegistryTimeout},
	}
}

// CreateWorkflow implements Client.
func (c *HTTPClient) CreateWorkflow(ctx context.Context, req CreateWorkflowRequest) (string, error) {
	var resp CreateWorkflowResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/workflows", req, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("registry returned workflow without id")
	}
	return resp.ID, nil
}

// CreateTask implements Client.
func (c *HTTPClient) CreateTask(ctx context.Context, req CreateTaskRequest) (string, error) {
	var resp CreateTaskResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/tasks", req, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("registry returned task without id")
	}
	return resp.ID, nil
}

// UpdateTask implements Client.
func (c *HTTPClient) UpdateTask(ctx context.Context, taskID string, req UpdateTaskRequest) error {
	path := "/api/tasks/" + taskID
	return c.doJSON(ctx, http.MethodPut, path, req, http.StatusOK, nil)
}

// doJSON performs one JSON round trip and decodes the response into out when
// out is non-nil.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("%s %s", method, url)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("registry %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode registry response: %w", err)
	}
	return nil
}

// Nop is a registry client that records nothing. Used when no registry is
// reachable or configured.
type Nop struct{}

// CreateWorkflow implements Client.
func (Nop) CreateWorkflow(context.Context, CreateWorkflowRequest) (string, error) {
	return "", nil
}

// CreateTask implements Client.
func (Nop) CreateTask(context.Context, CreateTaskRequest) (string, error) {
	return "", nil
}

// UpdateTask implements Client.
func (Nop) UpdateTask(context.Context, string, UpdateTaskRequest) error {
	return nil
}
