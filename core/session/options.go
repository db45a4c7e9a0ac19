package session

import (
	"net/http"

	"github.com/leofalp/duochat/core/backend"
	"github.com/leofalp/duochat/providers/memory"
	"github.com/leofalp/duochat/providers/observability"
)

// DefaultGreeting is rendered after NewChat unless WithGreeting overrides it.
const DefaultGreeting = "Hello! A new conversation has started."

// Option configures a Session.
type Option func(*Session)

// WithMemory sets the history store. Default: an empty inmemory.Conversation.
func WithMemory(history memory.Provider) Option {
	return func(s *Session) {
		s.history = history
	}
}

// WithRenderer sets the renderer. Default: updates are discarded.
func WithRenderer(renderer Renderer) Option {
	return func(s *Session) {
		s.renderer = renderer
	}
}

// WithObserver enables spans, counters and logs for every exchange.
func WithObserver(observer observability.Provider) Option {
	return func(s *Session) {
		s.observer = observer
	}
}

// WithHTTPClient sets the client used by the default provider factory.
// Ignored when WithProviderFactory is given.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		s.backendOpts = append(s.backendOpts, backend.WithHTTPClient(client))
	}
}

// WithBackendOptions passes options to the default provider factory.
func WithBackendOptions(opts ...backend.Option) Option {
	return func(s *Session) {
		s.backendOpts = append(s.backendOpts, opts...)
	}
}

// WithProviderFactory replaces the function that builds a provider from the
// validated settings of each submission.
func WithProviderFactory(factory backend.Factory) Option {
	return func(s *Session) {
		s.factory = factory
	}
}

// WithMiddleware appends stream middleware. The first one given is the
// outermost.
func WithMiddleware(middlewares ...StreamMiddleware) Option {
	return func(s *Session) {
		s.middlewares = append(s.middlewares, middlewares...)
	}
}

// WithGreeting sets the text rendered after NewChat. Empty disables it.
func WithGreeting(greeting string) Option {
	return func(s *Session) {
		s.greeting = greeting
	}
}
