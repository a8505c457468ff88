package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWorkflow(t *testing.T) {
	var got CreateWorkflowRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/workflows", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreateWorkflowResponse{ID: "wf-42"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	id, err := client.CreateWorkflow(context.Background(), CreateWorkflowRequest{
		Name:         "PR Analysis",
		WorkflowType: "pr_analysis",
		Initiator:    "cli",
	})
	require.NoError(t, err)
	assert.Equal(t, "wf-42", id)
	assert.Equal(t, "PR Analysis", got.Name)
	assert.Equal(t, "pr_analysis", got.WorkflowType)
}

func TestCreateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)

		var req CreateTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "akira-001", req.AgentID)
		assert.Equal(t, "wf-42", req.WorkflowID)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreateTaskResponse{ID: "task-7"})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	id, err := client.CreateTask(context.Background(), CreateTaskRequest{
		AgentID:    "akira-001",
		WorkflowID: "wf-42",
		TaskType:   "review_code",
	})
	require.NoError(t, err)
	assert.Equal(t, "task-7", id)
}

func TestUpdateTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/tasks/task-7", r.URL.Path)

		var req UpdateTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, StatusCompleted, req.Status)
		assert.Equal(t, 200, req.TokensUsed)
		assert.InDelta(t, 0.0042, req.CostUSD, 1e-9)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	err := client.UpdateTask(context.Background(), "task-7", UpdateTaskRequest{
		Status:     StatusCompleted,
		OutputData: "done",
		TokensUsed: 200,
		CostUSD:    0.0042,
	})
	require.NoError(t, err)
}

func TestUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.CreateWorkflow(context.Background(), CreateWorkflowRequest{Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "boom")
}

func TestUnreachableRegistry(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1")
	_, err := client.CreateWorkflow(context.Background(), CreateWorkflowRequest{Name: "x"})
	require.Error(t, err)
}

func TestMissingIDIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL)
	_, err := client.CreateWorkflow(context.Background(), CreateWorkflowRequest{Name: "x"})
	require.Error(t, err)
}

func TestNopClient(t *testing.T) {
	var client Client = Nop{}
	id, err := client.CreateWorkflow(context.Background(), CreateWorkflowRequest{Name: "x"})
	require.NoError(t, err)
	assert.Empty(t, id)
	require.NoError(t, client.UpdateTask(context.Background(), "t", UpdateTaskRequest{Status: StatusFailed}))
}
