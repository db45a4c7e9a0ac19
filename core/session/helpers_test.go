package session

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/leofalp/duochat/core/settings"
	"github.com/leofalp/duochat/providers/ai"
)

// scriptedProvider streams whatever the test pushes into events and ends when
// events is closed. It records the requests and configs it was opened with.
type scriptedProvider struct {
	events  chan ai.StreamEvent
	openErr error

	mu       sync.Mutex
	requests []ai.ChatRequest
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{events: make(chan ai.StreamEvent)}
}

func (p *scriptedProvider) Kind() ai.ProviderKind { return ai.ProviderOpenAI }
func (p *scriptedProvider) ListModels(context.Context) ([]ai.ModelInfo, error) { return nil, nil }
func (p *scriptedProvider) WithAPIKey(string) ai.Provider { return p }
func (p *scriptedProvider) WithBaseURL(string) ai.Provider { return p }
func (p *scriptedProvider) WithHttpClient(*http.Client) ai.Provider { return p }

func (p *scriptedProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	p.mu.Lock()
	p.requests = append(p.requests, request)
	p.mu.Unlock()

	if p.openErr != nil {
		return nil, p.openErr
	}

	return ai.NewChatStream(func(yield func(ai.StreamEvent, error) bool) {
		for {
			select {
			case event, ok := <-p.events:
				if !ok {
					return
				}
				if !yield(event, nil) {
					return
				}
			case <-ctx.Done():
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}
		}
	}), nil
}

func (p *scriptedProvider) lastRequest() ai.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[len(p.requests)-1]
}

// push sends a content event, failing the test if nobody reads it.
func (p *scriptedProvider) push(t *testing.T, content string) {
	t.Helper()
	select {
	case p.events <- ai.StreamEvent{Type: ai.StreamEventContent, Content: content}:
	case <-time.After(2 * time.Second):
		t.Fatalf("provider did not consume %q", content)
	}
}

// providerQueue hands out one provider per submission, in order, and keeps
// the configs it was asked for.
type providerQueue struct {
	mu        sync.Mutex
	providers []ai.StreamProvider
	configs   []settings.ProviderConfig
}

func (q *providerQueue) factory(config settings.ProviderConfig) (ai.StreamProvider, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.configs = append(q.configs, config)
	provider := q.providers[0]
	if len(q.providers) > 1 {
		q.providers = q.providers[1:]
	}
	return provider, nil
}

// recordingRenderer keeps every update and forwards it to a channel.
type recordingRenderer struct {
	mu      sync.Mutex
	updates []Update
	ch      chan Update
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{ch: make(chan Update, 128)}
}

func (r *recordingRenderer) Render(update Update) {
	r.mu.Lock()
	r.updates = append(r.updates, update)
	r.mu.Unlock()
	r.ch <- update
}

func (r *recordingRenderer) all() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

// waitFor returns the next update of the given kind.
func (r *recordingRenderer) waitFor(t *testing.T, kind UpdateKind) Update {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case update := <-r.ch:
			if update.Kind == kind {
				return update
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s update", kind)
		}
	}
}

func openAISettings(url string) settings.Settings {
	return settings.Settings{APIType: "openai", Model: "gpt-4", OpenAIAPIURL: url, OpenAIAPIKey: "sk-x"}
}

// writeRaw writes bytes exactly as given and flushes, so tests control chunk
// boundaries.
func writeRaw(writer http.ResponseWriter, data string) {
	_, _ = io.WriteString(writer, data)
	if flusher, ok := writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

func waitResult(t *testing.T, exchange *Exchange) Result {
	t.Helper()
	select {
	case <-exchange.Done():
		return exchange.Wait()
	case <-time.After(2 * time.Second):
		t.Fatal("exchange did not finish")
		return Result{}
	}
}
