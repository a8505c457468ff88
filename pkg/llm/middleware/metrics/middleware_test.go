package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ensemble/pkg/llm"
)

// captureRecorder stores the last observation.
type captureRecorder struct {
	model      string
	provider   string
	agentID    string
	workflowID string
	prompt     int
	completion int
	success    bool
	reason     string
	calls      int
}

func (c *captureRecorder) ObserveRequest(model, provider, agentID, workflowID string,
	promptTokens, completionTokens int, _ float64, success bool, reason string, _ time.Duration) {
	c.model, c.provider, c.agentID, c.workflowID = model, provider, agentID, workflowID
	c.prompt, c.completion = promptTokens, completionTokens
	c.success, c.reason = success, reason
	c.calls++
}

type okClient struct{}

func (okClient) Generate(_ context.Context, _ llm.Request) (llm.Response, error) {
	return llm.Response{Text: "done", Usage: llm.Usage{PromptTokens: 12, CompletionTokens: 34}}, nil
}
func (okClient) ModelName() string    { return "gpt-4o" }
func (okClient) ProviderName() string { return "openai" }

type failClient struct{}

func (failClient) Generate(_ context.Context, _ llm.Request) (llm.Response, error) {
	return llm.Response{}, llm.NewProviderError("openai", llm.ReasonRateLimit, "slow down")
}
func (failClient) ModelName() string    { return "gpt-4o" }
func (failClient) ProviderName() string { return "openai" }

func TestMiddlewareRecordsSuccess(t *testing.T) {
	rec := &captureRecorder{}
	client := Middleware(rec, "yuki-002")(okClient{})

	ctx := WithWorkflowID(context.Background(), "wf-1")
	_, err := client.Generate(ctx, llm.NewRequest("hi", ""))
	require.NoError(t, err)

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "gpt-4o", rec.model)
	assert.Equal(t, "openai", rec.provider)
	assert.Equal(t, "yuki-002", rec.agentID)
	assert.Equal(t, "wf-1", rec.workflowID)
	assert.Equal(t, 12, rec.prompt)
	assert.Equal(t, 34, rec.completion)
	assert.True(t, rec.success)
	assert.Empty(t, rec.reason)
}

func TestMiddlewareRecordsFailureReason(t *testing.T) {
	rec := &captureRecorder{}
	client := Middleware(rec, "yuki-002")(failClient{})

	_, err := client.Generate(context.Background(), llm.NewRequest("hi", ""))
	require.Error(t, err)

	assert.False(t, rec.success)
	assert.Equal(t, "rate_limit", rec.reason)
	assert.Equal(t, "none", rec.workflowID) // untagged context
}

func TestWorkflowIDFromPlainContext(t *testing.T) {
	assert.Equal(t, "none", WorkflowIDFrom(context.Background()))
}

func TestNopRecorder(t *testing.T) {
	// Just exercises the no-op path.
	var r Recorder = NopRecorder{}
	r.ObserveRequest("m", "p", "a", "w", 0, 0, 0, true, "", time.Millisecond)
	assert.NotNil(t, r)
}
