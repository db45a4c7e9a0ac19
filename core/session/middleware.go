package session

import (
	"context"

	"github.com/leofalp/duochat/providers/ai"
)

// StreamFunc opens a reply stream for a request. It is the unit threaded
// through the middleware chain.
type StreamFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error)

// StreamMiddleware wraps the next StreamFunc. It may wrap the returned
// ChatStream to observe or transform its events.
type StreamMiddleware func(next StreamFunc) StreamFunc

// buildStreamChain applies middlewares in reverse so that middlewares[0] is
// the outermost wrapper, the first to see a request.
func buildStreamChain(provider ai.StreamProvider, middlewares []StreamMiddleware) StreamFunc {
	var chain StreamFunc = provider.StreamMessage

	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			chain = middlewares[i](chain)
		}
	}
	return chain
}
