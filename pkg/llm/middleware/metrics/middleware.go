package metrics

import (
	"context"
	"time"

	"ensemble/pkg/config"
	"ensemble/pkg/llm"
)

// Middleware records one observation per generate call. The workflow label is
// read from the context; the agent label is fixed at construction because one
// client serves exactly one agent.
func Middleware(recorder Recorder, agentID string) llm.Middleware {
	return func(next llm.Client) llm.Client {
		return llm.WrapClient(next, func(ctx context.Context, in llm.Request) (llm.Response, error) {
			start := time.Now()
			resp, err := next.Generate(ctx, in)
			duration := time.Since(start)

			reason := ""
			if err != nil {
				reason = string(llm.ReasonUnknown)
				if pe, ok := llm.AsProviderError(err); ok {
					reason = string(pe.Reason)
				}
			}

			cost := config.CostUSD(next.ModelName(), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			recorder.ObserveRequest(
				next.ModelName(), next.ProviderName(), agentID, WorkflowIDFrom(ctx),
				resp.Usage.PromptTokens, resp.Usage.CompletionTokens,
				cost,
				err == nil,
				reason,
				duration,
			)

			return resp, err
		})
	}
}
