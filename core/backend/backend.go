// Package backend builds the streaming provider for a validated
// [settings.ProviderConfig].
package backend

import (
	"fmt"
	"net/http"

	"github.com/leofalp/duochat/core/settings"
	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/ai/gemini"
	"github.com/leofalp/duochat/providers/ai/openai"
)

type options struct {
	httpClient    *http.Client
	geminiBaseURL string
	geminiOpts    []gemini.Option
}

// Option configures Open.
type Option func(*options)

// WithHTTPClient sets the client used for every request.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithGeminiBaseURL points Gemini at another server root.
func WithGeminiBaseURL(baseURL string) Option {
	return func(o *options) {
		o.geminiBaseURL = baseURL
	}
}

// WithGeminiSSE selects alt=sse framing for Gemini streams.
func WithGeminiSSE(enabled bool) Option {
	return func(o *options) {
		o.geminiOpts = append(o.geminiOpts, gemini.WithSSE(enabled))
	}
}

// WithGeminiTextMode sets how Gemini chunk text folds into the reply.
func WithGeminiTextMode(mode gemini.TextMode) Option {
	return func(o *options) {
		o.geminiOpts = append(o.geminiOpts, gemini.WithTextMode(mode))
	}
}

// Factory builds a provider for a config. Open is the default; tests swap in
// fakes.
type Factory func(config settings.ProviderConfig) (ai.StreamProvider, error)

// NewFactory returns a Factory that calls Open with opts.
func NewFactory(opts ...Option) Factory {
	return func(config settings.ProviderConfig) (ai.StreamProvider, error) {
		return Open(config, opts...)
	}
}

// Open returns the provider selected by config, configured with its key and
// endpoint.
func Open(config settings.ProviderConfig, opts ...Option) (ai.StreamProvider, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	switch config.Provider {
	case ai.ProviderOpenAI:
		provider := openai.New()
		provider.WithAPIKey(config.APIKey)
		if config.EndpointURL != "" {
			provider.WithBaseURL(config.EndpointURL)
		}
		if o.httpClient != nil {
			provider.WithHttpClient(o.httpClient)
		}
		return provider, nil

	case ai.ProviderGemini:
		provider := gemini.New(o.geminiOpts...)
		provider.WithAPIKey(config.APIKey)
		if o.geminiBaseURL != "" {
			provider.WithBaseURL(o.geminiBaseURL)
		}
		if o.httpClient != nil {
			provider.WithHttpClient(o.httpClient)
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ai.ErrConfigIncomplete, config.Provider)
	}
}
