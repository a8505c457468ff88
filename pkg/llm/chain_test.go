package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient returns a fixed response and records requests it saw.
type stubClient struct {
	resp Response
	seen []Request
}

func (s *stubClient) Generate(_ context.Context, in Request) (Response, error) {
	s.seen = append(s.seen, in)
	return s.resp, nil
}

func (s *stubClient) ModelName() string    { return "stub-model" }
func (s *stubClient) ProviderName() string { return "stub" }

func TestChainOrdering(t *testing.T) {
	var calls []string

	tag := func(name string) Middleware {
		return func(next Client) Client {
			return WrapClient(next, func(ctx context.Context, in Request) (Response, error) {
				calls = append(calls, name)
				return next.Generate(ctx, in)
			})
		}
	}

	base := &stubClient{resp: Response{Text: "ok"}}
	client := Chain(base, tag("outer"), tag("inner"))

	resp, err := client.Generate(context.Background(), NewRequest("hi", ""))
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

func TestWrapClientKeepsIdentity(t *testing.T) {
	base := &stubClient{}
	wrapped := WrapClient(base, base.Generate)
	assert.Equal(t, "stub-model", wrapped.ModelName())
	assert.Equal(t, "stub", wrapped.ProviderName())
}

func TestNewRequestDefaults(t *testing.T) {
	req := NewRequest("prompt", "system")
	assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
	assert.Equal(t, float32(TemperatureDefault), req.Temperature)
}

func TestNormalize(t *testing.T) {
	req := Request{Prompt: "p", MaxTokens: -1, Temperature: 2.5}
	got := Normalize(req, "claude-sonnet-4-5")
	assert.Equal(t, float32(1), got.Temperature)
	assert.Equal(t, 8192, got.MaxTokens) // model output cap
}
