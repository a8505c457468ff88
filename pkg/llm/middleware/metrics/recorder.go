// Package metrics provides Prometheus-based metrics recording for LLM calls.
package metrics

import (
	"context"
	"time"
)

// Recorder receives one observation per completed LLM call.
type Recorder interface {
	ObserveRequest(
		model, provider, agentID, workflowID string,
		promptTokens, completionTokens int,
		cost float64,
		success bool,
		reason string,
		duration time.Duration,
	)
}

// NopRecorder discards all observations. Used in tests and offline runs.
type NopRecorder struct{}

// ObserveRequest implements Recorder.
func (NopRecorder) ObserveRequest(_, _, _, _ string, _, _ int, _ float64, _ bool, _ string, _ time.Duration) {
}

type contextKey string

const workflowIDKey contextKey = "workflow_id"

// WithWorkflowID tags a context with the workflow executing the call so the
// middleware can label observations.
func WithWorkflowID(ctx context.Context, workflowID string) context.Context {
	return context.WithValue(ctx, workflowIDKey, workflowID)
}

// WorkflowIDFrom extracts the workflow ID label from a context.
func WorkflowIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(workflowIDKey).(string); ok {
		return v
	}
	return "none"
}
