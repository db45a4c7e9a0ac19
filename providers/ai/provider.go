package ai

import (
	"context"
	"net/http"
)

// Provider is the configuration and discovery surface shared by all backends.
type Provider interface {
	// Kind reports which wire protocol the provider speaks.
	Kind() ProviderKind

	// ListModels returns the models usable for chat on this endpoint.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}

// StreamProvider streams chat replies.
type StreamProvider interface {
	Provider
	// StreamMessage returns once the response headers have arrived.
	// Pre-stream failures (bad status, connection refused) are returned
	// directly and match ErrTransport. Failures after that are yielded
	// through the iterator. Malformed individual frames are skipped.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)
}
