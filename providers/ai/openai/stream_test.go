package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leofalp/duochat/internal/framing"
	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/observability"
	"github.com/leofalp/duochat/providers/observability/slogobs"
)

// writeSSE is a test helper that writes an SSE data line to the response writer and flushes.
func writeSSE(writer http.ResponseWriter, data string) {
	fmt.Fprintf(writer, "data: %s\n\n", data)
	if flusher, ok := writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

// writeRaw writes bytes exactly as given and flushes, so tests control chunk
// boundaries.
func writeRaw(writer http.ResponseWriter, data string) {
	_, _ = io.WriteString(writer, data)
	if flusher, ok := writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

func newTestProvider(serverURL string) *OpenAIProvider {
	provider := New()
	provider.WithBaseURL(serverURL)
	provider.WithAPIKey("test-key")
	return provider
}

// TestStreamMessage_TwoChunkExample_CommitsHello verifies the canonical split
// example: the second chunk carries the rest of the reply and the sentinel.
func TestStreamMessage_TwoChunkExample_CommitsHello(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "text/event-stream")
		writeRaw(writer, `data: {"choices":[{"delta":{"content":"Hel"}}]}`+"\n")
		writeRaw(writer, `data: {"choices":[{"delta":{"content":"lo"}}]}`+"\n\ndata: [DONE]\n")
	}))
	defer server.Close()

	stream, err := newTestProvider(server.URL).StreamMessage(context.Background(), ai.ChatRequest{
		Model:    "gpt-4",
		Messages: []ai.Message{{Role: ai.RoleUser, Content: "Hi"}},
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if response.Content != "Hello" {
		t.Errorf("expected content %q, got %q", "Hello", response.Content)
	}
}

// TestStreamMessage_RequestShape verifies endpoint, auth header and body,
// including the system prompt sent as the leading message.
func TestStreamMessage_RequestShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotPath = request.URL.Path
		gotAuth = request.Header.Get("Authorization")
		_ = json.NewDecoder(request.Body).Decode(&gotBody)
		writeSSE(writer, `{"choices":[{"delta":{"content":"ok"}}]}`)
		writeSSE(writer, "[DONE]")
	}))
	defer server.Close()

	provider := New()
	provider.WithBaseURL(server.URL + "/v1/")
	provider.WithAPIKey("sk-x")

	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		Model:        "gpt-4",
		SystemPrompt: "be brief",
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: "Hi"},
			{Role: ai.RoleAssistant, Content: "Hello"},
			{Role: ai.RoleUser, Content: "Bye"},
		},
	})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}
	if _, err := stream.Collect(); err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if gotPath != "/v1/chat/completions" {
		t.Errorf("expected /v1/chat/completions, got %q", gotPath)
	}
	if gotAuth != "Bearer sk-x" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if !gotBody.Stream || gotBody.Model != "gpt-4" {
		t.Errorf("expected stream=true and model gpt-4, got %+v", gotBody)
	}
	if len(gotBody.Messages) != 4 || gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != "be brief" {
		t.Fatalf("expected system prompt first, got %+v", gotBody.Messages)
	}
	if gotBody.Messages[3].Content != "Bye" {
		t.Errorf("expected history order preserved, got %+v", gotBody.Messages)
	}
}

// TestStreamMessage_MalformedFrame_IsSkippedAndCounted verifies that a bad
// frame neither aborts the stream nor contributes text.
func TestStreamMessage_MalformedFrame_IsSkippedAndCounted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeSSE(writer, `{"choices":[{"delta":{"content":"a"}}]}`)
		writeSSE(writer, `{"choices":[{"delta":{"content":`)
		writeSSE(writer, `{"choices":[{"delta":{}}]}`)
		writeSSE(writer, `{"choices":[{"delta":{"content":"b"},"finish_reason":"stop"}]}`)
		writeSSE(writer, "[DONE]")
	}))
	defer server.Close()

	observer := slogobs.New(slogobs.WithOutput(&bytes.Buffer{}))
	ctx := observability.ContextWithObserver(context.Background(), observer)

	stream, err := newTestProvider(server.URL).StreamMessage(ctx, ai.ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}
	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if response.Content != "ab" {
		t.Errorf("expected %q, got %q", "ab", response.Content)
	}
	if response.FinishReason != "stop" {
		t.Errorf("expected finish reason stop, got %q", response.FinishReason)
	}
	if got := observer.CounterValue(observability.MetricFramesRejected); got != 1 {
		t.Errorf("expected 1 rejected frame, got %d", got)
	}
}

// TestStreamMessage_DoneSentinel_StopsReading verifies that nothing after
// [DONE] is delivered.
func TestStreamMessage_DoneSentinel_StopsReading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeSSE(writer, `{"choices":[{"delta":{"content":"done"}}]}`)
		writeSSE(writer, "[DONE]")
		writeSSE(writer, `{"choices":[{"delta":{"content":" and more"}}]}`)
	}))
	defer server.Close()

	stream, err := newTestProvider(server.URL).StreamMessage(context.Background(), ai.ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("StreamMessage returned error: %v", err)
	}

	var types []ai.StreamEventType
	var text string
	for event, err := range stream.Iter() {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		types = append(types, event.Type)
		text += event.Content
	}

	if text != "done" {
		t.Errorf("expected text %q, got %q", "done", text)
	}
	if len(types) != 2 || types[1] != ai.StreamEventDone {
		t.Errorf("expected content then done, got %v", types)
	}
}

// TestStreamMessage_HTTPError_ReturnsTransportError verifies that non-2xx
// statuses fail before any stream is returned.
func TestStreamMessage_HTTPError_ReturnsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(writer, `{"error":{"message":"Incorrect API key provided"}}`)
	}))
	defer server.Close()

	stream, err := newTestProvider(server.URL).StreamMessage(context.Background(), ai.ChatRequest{Model: "m"})
	if stream != nil {
		t.Error("expected nil stream on HTTP error")
	}
	var transportErr *ai.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *ai.TransportError, got %T: %v", err, err)
	}
	if transportErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", transportErr.StatusCode)
	}
}

// TestStreamMessage_MissingAPIKey verifies the provider-level guard.
func TestStreamMessage_MissingAPIKey(t *testing.T) {
	_, err := New().StreamMessage(context.Background(), ai.ChatRequest{Model: "m"})
	if !errors.Is(err, ai.ErrConfigIncomplete) {
		t.Errorf("expected ErrConfigIncomplete, got %v", err)
	}
}

func TestFrameToStreamEvents(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantTypes []ai.StreamEventType
		wantText  string
		wantErr   bool
	}{
		{"content", `{"choices":[{"delta":{"content":"x"}}]}`, []ai.StreamEventType{ai.StreamEventContent}, "x", false},
		{"role only", `{"choices":[{"delta":{"role":"assistant"}}]}`, nil, "", false},
		{"null content", `{"choices":[{"delta":{"content":null}}]}`, nil, "", false},
		{"no choices", `{"choices":[]}`, nil, "", false},
		{"usage", `{"choices":[],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`, []ai.StreamEventType{ai.StreamEventUsage}, "", false},
		{"finish", `{"choices":[{"delta":{},"finish_reason":"length"}]}`, []ai.StreamEventType{ai.StreamEventDone}, "", false},
		{"malformed", `{"choices":`, nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := frameToStreamEvents(framing.Frame{Payload: []byte(tt.payload)})
			if tt.wantErr {
				if !errors.Is(err, ai.ErrFrameDecode) {
					t.Fatalf("expected ErrFrameDecode, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(events) != len(tt.wantTypes) {
				t.Fatalf("expected %d events, got %+v", len(tt.wantTypes), events)
			}
			var text string
			for i, event := range events {
				if event.Type != tt.wantTypes[i] {
					t.Errorf("event %d: expected %q, got %q", i, tt.wantTypes[i], event.Type)
				}
				text += event.Content
			}
			if text != tt.wantText {
				t.Errorf("expected text %q, got %q", tt.wantText, text)
			}
		})
	}
}
