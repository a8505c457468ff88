// Package metrics queries aggregated usage data from Prometheus. The
// collectors themselves live with the LLM middleware; this package answers
// "what did this workflow cost" after the fact.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// WorkflowUsage aggregates token and cost accounting for one workflow.
type WorkflowUsage struct {
	WorkflowID       string  `json:"workflow_id"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost_usd"`
}

// QueryService reads usage data from a Prometheus server scraping the
// process's /metrics endpoint.
type QueryService struct {
	queryAPI v1.API
}

// NewQueryService creates a query service against the given Prometheus URL.
func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{Address: prometheusURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}
	return &QueryService{queryAPI: v1.NewAPI(client)}, nil
}

// sum evaluates a PromQL sum and returns the first sample, zero when the
// series does not exist yet.
func (q *QueryService) sum(ctx context.Context, query string) (float64, error) {
	result, _, err := q.queryAPI.Query(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("query %q failed: %w", query, err)
	}
	if vector, ok := result.(model.Vector); ok && len(vector) > 0 {
		return float64(vector[0].Value), nil
	}
	return 0, nil
}

// WorkflowUsage aggregates tokens and cost across every agent that ran within
// the workflow.
func (q *QueryService) WorkflowUsage(ctx context.Context, workflowID string) (*WorkflowUsage, error) {
	usage := &WorkflowUsage{WorkflowID: workflowID}

	prompt, err := q.sum(ctx, fmt.Sprintf(`sum(llm_tokens_total{workflow_id=%q, type="prompt"})`, workflowID))
	if err != nil {
		return nil, err
	}
	completion, err := q.sum(ctx, fmt.Sprintf(`sum(llm_tokens_total{workflow_id=%q, type="completion"})`, workflowID))
	if err != nil {
		return nil, err
	}
	cost, err := q.sum(ctx, fmt.Sprintf(`sum(llm_costs_total{workflow_id=%q})`, workflowID))
	if err != nil {
		return nil, err
	}

	usage.PromptTokens = int64(prompt)
	usage.CompletionTokens = int64(completion)
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	usage.TotalCost = cost
	return usage, nil
}

// WorkflowUsageByAgent breaks the workflow's usage down per agent id.
func (q *QueryService) WorkflowUsageByAgent(ctx context.Context, workflowID string) (map[string]*WorkflowUsage, error) {
	result, _, err := q.queryAPI.Query(ctx,
		fmt.Sprintf(`group by (agent_id) (llm_tokens_total{workflow_id=%q})`, workflowID), time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}

	var agents []string
	if vector, ok := result.(model.Vector); ok {
		for _, sample := range vector {
			if id, ok := sample.Metric["agent_id"]; ok {
				agents = append(agents, string(id))
			}
		}
	}

	byAgent := make(map[string]*WorkflowUsage, len(agents))
	for _, agentID := range agents {
		usage := &WorkflowUsage{WorkflowID: workflowID}

		prompt, err := q.sum(ctx, fmt.Sprintf(
			`sum(llm_tokens_total{workflow_id=%q, agent_id=%q, type="prompt"})`, workflowID, agentID))
		if err != nil {
			return nil, err
		}
		completion, err := q.sum(ctx, fmt.Sprintf(
			`sum(llm_tokens_total{workflow_id=%q, agent_id=%q, type="completion"})`, workflowID, agentID))
		if err != nil {
			return nil, err
		}
		cost, err := q.sum(ctx, fmt.Sprintf(
			`sum(llm_costs_total{workflow_id=%q, agent_id=%q})`, workflowID, agentID))
		if err != nil {
			return nil, err
		}

		usage.PromptTokens = int64(prompt)
		usage.CompletionTokens = int64(completion)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
		usage.TotalCost = cost
		byAgent[agentID] = usage
	}
	return byAgent, nil
}
