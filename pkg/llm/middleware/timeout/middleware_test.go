package timeout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ensemble/pkg/llm"
)

// slowClient blocks until its context is done.
type slowClient struct{}

func (slowClient) Generate(ctx context.Context, _ llm.Request) (llm.Response, error) {
	<-ctx.Done()
	return llm.Response{}, ctx.Err()
}

func (slowClient) ModelName() string    { return "slow-model" }
func (slowClient) ProviderName() string { return "anthropic" }

// fastClient answers immediately.
type fastClient struct{}

func (fastClient) Generate(_ context.Context, _ llm.Request) (llm.Response, error) {
	return llm.Response{Text: "fast"}, nil
}

func (fastClient) ModelName() string    { return "fast-model" }
func (fastClient) ProviderName() string { return "openai" }

func TestBudgetExceeded(t *testing.T) {
	client := Middleware(20 * time.Millisecond)(slowClient{})

	start := time.Now()
	_, err := client.Generate(context.Background(), llm.NewRequest("hi", ""))
	elapsed := time.Since(start)

	require.Error(t, err)
	pe, ok := llm.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, llm.ReasonTransient, pe.Reason)
	assert.Equal(t, "anthropic", pe.Provider)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}

func TestBudgetNotExceeded(t *testing.T) {
	client := Middleware(time.Second)(fastClient{})

	resp, err := client.Generate(context.Background(), llm.NewRequest("hi", ""))
	require.NoError(t, err)
	assert.Equal(t, "fast", resp.Text)
}
