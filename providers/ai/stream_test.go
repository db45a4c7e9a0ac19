package ai

import (
	"errors"
	"iter"
	"testing"
)

// makeStream is a test helper that builds a ChatStream from a hand-crafted event
// slice. If midErr is non-nil the error is yielded after all events.
func makeStream(events []StreamEvent, midErr error) *ChatStream {
	iteratorFunc := func(yield func(StreamEvent, error) bool) {
		for _, event := range events {
			if !yield(event, nil) {
				return
			}
		}
		if midErr != nil {
			yield(StreamEvent{}, midErr)
		}
	}
	return NewChatStream(iter.Seq2[StreamEvent, error](iteratorFunc))
}

// TestCollect_AppendsContentDeltas verifies the OpenAI-style append rule.
func TestCollect_AppendsContentDeltas(t *testing.T) {
	stream := makeStream([]StreamEvent{
		{Type: StreamEventContent, Content: "Hel"},
		{Type: StreamEventContent, Content: "lo"},
		{Type: StreamEventUsage, Usage: &Usage{TotalTokens: 7}},
		{Type: StreamEventDone, FinishReason: "stop"},
	}, nil)

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Content != "Hello" {
		t.Errorf("expected %q, got %q", "Hello", response.Content)
	}
	if response.FinishReason != "stop" {
		t.Errorf("expected finish reason stop, got %q", response.FinishReason)
	}
	if response.Usage == nil || response.Usage.TotalTokens != 7 {
		t.Errorf("expected usage to be carried, got %+v", response.Usage)
	}
}

// TestCollect_SnapshotReplaces verifies the Gemini-style replace rule.
func TestCollect_SnapshotReplaces(t *testing.T) {
	stream := makeStream([]StreamEvent{
		{Type: StreamEventSnapshot, Content: "The"},
		{Type: StreamEventSnapshot, Content: "The sky"},
		{Type: StreamEventSnapshot, Content: "The sky is blue"},
	}, nil)

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Content != "The sky is blue" {
		t.Errorf("expected last snapshot, got %q", response.Content)
	}
}

// TestCollect_EmptyStream_ReturnsErrEmptyResponse verifies that a stream with
// no text is an error rather than an empty reply.
func TestCollect_EmptyStream_ReturnsErrEmptyResponse(t *testing.T) {
	stream := makeStream([]StreamEvent{{Type: StreamEventDone}}, nil)

	_, err := stream.Collect()
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

// TestCollect_MidStreamError_ReturnsPartial verifies that a mid-stream error
// is returned along with the text received so far.
func TestCollect_MidStreamError_ReturnsPartial(t *testing.T) {
	midErr := &TransportError{Message: "connection reset"}
	stream := makeStream([]StreamEvent{{Type: StreamEventContent, Content: "partial"}}, midErr)

	response, err := stream.Collect()
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if response.Content != "partial" {
		t.Errorf("expected partial content, got %q", response.Content)
	}
}

func TestAccumulator_ReportsChanges(t *testing.T) {
	var accumulator Accumulator

	if accumulator.Apply(StreamEvent{Type: StreamEventContent}) {
		t.Error("empty content delta should not count as a change")
	}
	if !accumulator.Apply(StreamEvent{Type: StreamEventSnapshot, Content: "abc"}) {
		t.Error("first snapshot should count as a change")
	}
	if accumulator.Apply(StreamEvent{Type: StreamEventSnapshot, Content: "abc"}) {
		t.Error("identical snapshot should not count as a change")
	}
	if accumulator.Apply(StreamEvent{Type: StreamEventDone}) {
		t.Error("done events never change the text")
	}

	accumulator.Reset()
	if accumulator.Len() != 0 {
		t.Errorf("expected empty accumulator after Reset, got %q", accumulator.String())
	}
}

func TestParseProviderKind(t *testing.T) {
	tests := []struct {
		input string
		want  ProviderKind
		ok    bool
	}{
		{"", ProviderOpenAI, true},
		{"openai", ProviderOpenAI, true},
		{" Gemini ", ProviderGemini, true},
		{"anthropic", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseProviderKind(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseProviderKind(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
