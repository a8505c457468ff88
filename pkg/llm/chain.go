package llm

import "context"

// Middleware wraps a Client with additional behavior. Middlewares are composed
// with Chain() to form a processing pipeline around the raw provider client.
type Middleware func(next Client) Client

// clientFunc adapts plain functions to the Client interface.
type clientFunc struct {
	generate func(context.Context, Request) (Response, error)
	model    string
	provider string
}

func (f clientFunc) Generate(ctx context.Context, in Request) (Response, error) {
	return f.generate(ctx, in)
}

func (f clientFunc) ModelName() string    { return f.model }
func (f clientFunc) ProviderName() string { return f.provider }

// WrapClient builds a Client from a generate function, keeping the wrapped
// client's model and provider identity. Helper for middleware implementations.
func WrapClient(next Client, generate func(context.Context, Request) (Response, error)) Client {
	return clientFunc{
		generate: generate,
		model:    next.ModelName(),
		provider: next.ProviderName(),
	}
}

// Chain composes middlewares around a base Client.
//
// Chain(client, mw1, mw2) produces the call stack mw1 -> mw2 -> client, so the
// first middleware is outermost and sees the request first.
func Chain(base Client, middlewares ...Middleware) Client {
	client := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		client = middlewares[i](client)
	}
	return client
}
