package middleware

import (
	"context"
	"time"

	"github.com/leofalp/duochat/core/session"
	"github.com/leofalp/duochat/providers/ai"
)

// NewTimeoutMiddleware bounds the lifetime of a stream. The deadline covers
// waiting for the response headers and reading the body; the context is
// released when the iterator finishes, fails or is abandoned. A shorter
// deadline already on the caller's context wins.
func NewTimeoutMiddleware(timeout time.Duration) session.StreamMiddleware {
	return func(next session.StreamFunc) session.StreamFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)

			stream, err := next(ctx, request)
			if err != nil {
				cancel()
				return nil, err
			}

			return wrapStreamWithCancel(stream, cancel), nil
		}
	}
}

// wrapStreamWithCancel calls cancel once the wrapped iterator returns.
// Done events do not end the stream: usage may still follow them.
func wrapStreamWithCancel(stream *ai.ChatStream, cancel context.CancelFunc) *ai.ChatStream {
	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		defer cancel()

		for event, err := range stream.Iter() {
			if !yield(event, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}

	return ai.NewChatStream(iteratorFunc)
}
