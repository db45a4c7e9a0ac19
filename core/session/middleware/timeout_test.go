package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leofalp/duochat/providers/ai"
)

// ========== Helpers ==========

// makeStreamFunc returns a StreamFunc that sleeps for the given duration
// before yielding a reply, simulating a slow provider.
func makeStreamFunc(sleep time.Duration) func(context.Context, ai.ChatRequest) (*ai.ChatStream, error) {
	return func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatStream, error) {
		iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
			select {
			case <-time.After(sleep):
				if !yield(ai.StreamEvent{Type: ai.StreamEventContent, Content: "hello"}, nil) {
					return
				}
				yield(ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: "stop"}, nil)
			case <-ctx.Done():
				yield(ai.StreamEvent{}, ctx.Err())
			}
		}
		return ai.NewChatStream(iteratorFunc), nil
	}
}

// collectErrors drains stream and returns every error it yielded.
func collectErrors(stream *ai.ChatStream) []error {
	var errs []error
	for _, err := range stream.Iter() {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ========== Stream timeout tests ==========

// TestTimeoutMiddleware_StreamCompletesBeforeTimeout verifies that a fast stream
// is delivered without error.
func TestTimeoutMiddleware_StreamCompletesBeforeTimeout(t *testing.T) {
	chain := NewTimeoutMiddleware(time.Second)(makeStreamFunc(0))

	stream, err := chain(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if response.Content != "hello" {
		t.Errorf("expected 'hello', got %q", response.Content)
	}
	if response.FinishReason != "stop" {
		t.Errorf("expected finish reason 'stop', got %q", response.FinishReason)
	}
}

// TestTimeoutMiddleware_StreamExceedsTimeout verifies that the deadline also
// covers reading the body, not only the wait for headers.
func TestTimeoutMiddleware_StreamExceedsTimeout(t *testing.T) {
	chain := NewTimeoutMiddleware(20 * time.Millisecond)(makeStreamFunc(500 * time.Millisecond))

	stream, err := chain(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected pre-stream error: %v", err)
	}

	for _, iterErr := range collectErrors(stream) {
		if errors.Is(iterErr, context.DeadlineExceeded) {
			return
		}
	}
	t.Error("expected DeadlineExceeded as a stream error")
}

// TestTimeoutMiddleware_ExistingShorterDeadline verifies that the caller's
// shorter deadline wins over the middleware's.
func TestTimeoutMiddleware_ExistingShorterDeadline(t *testing.T) {
	chain := NewTimeoutMiddleware(time.Second)(makeStreamFunc(500 * time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	stream, err := chain(ctx, ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected pre-stream error: %v", err)
	}
	errs := collectErrors(stream)
	elapsed := time.Since(start)

	if len(errs) != 1 || !errors.Is(errs[0], context.DeadlineExceeded) {
		t.Errorf("expected one DeadlineExceeded error, got %v", errs)
	}
	if elapsed > 300*time.Millisecond {
		t.Errorf("expected cancellation near 20ms, elapsed %v", elapsed)
	}
}

// TestTimeoutMiddleware_PreStreamError verifies that an error before streaming
// begins is returned as-is and no stream is produced.
func TestTimeoutMiddleware_PreStreamError(t *testing.T) {
	providerErr := errors.New("authentication failed")
	failing := func(_ context.Context, _ ai.ChatRequest) (*ai.ChatStream, error) {
		return nil, providerErr
	}

	stream, err := NewTimeoutMiddleware(time.Second)(failing)(context.Background(), ai.ChatRequest{})
	if stream != nil {
		t.Error("expected nil stream on pre-stream error")
	}
	if !errors.Is(err, providerErr) {
		t.Errorf("expected providerErr, got %v", err)
	}
}

// TestWrapStreamWithCancel_CancelsOnEarlyBreak verifies that the context is
// released when the consumer stops ranging before the end.
func TestWrapStreamWithCancel_CancelsOnEarlyBreak(t *testing.T) {
	cancelled := false
	inner := ai.NewChatStream(func(yield func(ai.StreamEvent, error) bool) {
		for i := 0; i < 3; i++ {
			if !yield(ai.StreamEvent{Type: ai.StreamEventContent, Content: "x"}, nil) {
				return
			}
		}
	})

	wrapped := wrapStreamWithCancel(inner, func() { cancelled = true })
	for range wrapped.Iter() {
		break
	}

	if !cancelled {
		t.Error("expected cancel to be called after early break")
	}
}

// TestWrapStreamWithCancel_KeepsEventsAfterDone verifies that a usage event
// sent after the finish reason still reaches the consumer.
func TestWrapStreamWithCancel_KeepsEventsAfterDone(t *testing.T) {
	inner := ai.NewChatStream(func(yield func(ai.StreamEvent, error) bool) {
		if !yield(ai.StreamEvent{Type: ai.StreamEventContent, Content: "hi"}, nil) {
			return
		}
		if !yield(ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: "stop"}, nil) {
			return
		}
		yield(ai.StreamEvent{Type: ai.StreamEventUsage, Usage: &ai.Usage{TotalTokens: 7}}, nil)
	})

	response, err := wrapStreamWithCancel(inner, func() {}).Collect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Usage == nil || response.Usage.TotalTokens != 7 {
		t.Errorf("expected usage after done to be kept, got %+v", response.Usage)
	}
}
