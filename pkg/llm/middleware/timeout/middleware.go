// Package timeout provides wall-clock budget middleware for LLM clients.
package timeout

import (
	"context"
	"time"

	"ensemble/pkg/llm"
)

// Middleware bounds the total wall clock of each generate call. The per-call
// network deadline lives in the provider adapters; this budget covers the
// whole call including SDK-internal retries.
func Middleware(budget time.Duration) llm.Middleware {
	return func(next llm.Client) llm.Client {
		return llm.WrapClient(next, func(ctx context.Context, in llm.Request) (llm.Response, error) {
			budgetCtx, cancel := context.WithTimeout(ctx, budget)
			defer cancel()

			resp, err := next.Generate(budgetCtx, in)
			if err != nil {
				return llm.Response{}, llm.Classify(next.ProviderName(), err)
			}
			return resp, nil
		})
	}
}
