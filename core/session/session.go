package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/leofalp/duochat/core/backend"
	"github.com/leofalp/duochat/core/settings"
	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/memory"
	"github.com/leofalp/duochat/providers/memory/inmemory"
	"github.com/leofalp/duochat/providers/observability"
)

// Session owns one conversation and the exchange currently running in it.
//
// mu guards state, generation, active and every history mutation. Renders
// happen under renderMu, acquired before mu is released, so updates reach
// the renderer in the order the state changed.
type Session struct {
	store       settings.Store
	history     memory.Provider
	renderer    Renderer
	observer    observability.Provider
	factory     backend.Factory
	backendOpts []backend.Option
	middlewares []StreamMiddleware
	greeting    string

	mu         sync.Mutex
	renderMu   sync.Mutex
	state      State
	generation uint64
	active     *Exchange
}

// New returns an idle session reading its settings from store on every
// submission.
func New(store settings.Store, opts ...Option) *Session {
	s := &Session{
		store:    store,
		renderer: discardRenderer{},
		greeting: DefaultGreeting,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = inmemory.New()
	}
	if s.renderer == nil {
		s.renderer = discardRenderer{}
	}
	if s.factory == nil {
		s.factory = backend.NewFactory(s.backendOpts...)
	}
	return s
}

// State returns the state of the current exchange.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the committed turns.
func (s *Session) History(ctx context.Context) ([]ai.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.AllMessages(ctx)
}

// Submit starts an exchange for input. It fails with ErrEmptyInput for blank
// input, ErrBusy while another exchange runs, and an error matching
// ai.ErrConfigIncomplete when the latest stored settings are incomplete; in
// all those cases the history is untouched. Otherwise the user turn is
// appended before Submit returns and the reply streams in the background.
//
// The exchange inherits ctx: cancelling it abandons the exchange.
func (s *Session) Submit(ctx context.Context, input string) (*Exchange, error) {
	content := strings.TrimSpace(input)
	if content == "" {
		return nil, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Busy() {
		return nil, ErrBusy
	}

	stored, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	config, err := settings.Validate(stored)
	if err != nil {
		return nil, err
	}
	provider, err := s.factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s provider: %w", config.Provider, err)
	}

	exchange := &Exchange{
		id:         uuid.NewString(),
		session:    s,
		generation: s.generation,
		done:       make(chan struct{}),
	}

	ctx, exchange.cancel = context.WithCancel(ctx)
	if s.observer != nil {
		ctx = observability.ContextWithObserver(ctx, s.observer)
		ctx, _ = s.observer.StartSpan(ctx, observability.SpanSessionExchange,
			observability.String(observability.AttrSessionExchangeID, exchange.id),
			observability.String(observability.AttrLLMProvider, string(config.Provider)),
			observability.String(observability.AttrLLMModel, config.ModelID),
			observability.Bool(observability.AttrLLMStreaming, true),
		)
	}

	s.history.AppendMessage(ctx, &ai.Message{Role: ai.RoleUser, Content: content})
	messages, err := s.history.AllMessages(ctx)
	if err != nil {
		exchange.cancel()
		if span := observability.SpanFromContext(ctx); span != nil {
			span.RecordError(err)
			span.End()
		}
		s.state = StateFailed
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	s.state = StateAwaitingFirstByte
	s.active = exchange

	request := ai.ChatRequest{
		Model:        config.ModelID,
		SystemPrompt: config.SystemPrompt,
		Messages:     messages,
	}
	go exchange.run(ctx, buildStreamChain(provider, s.middlewares), request)

	return exchange, nil
}

// Send is Submit followed by Wait. The returned error is the exchange
// error, if any.
func (s *Session) Send(ctx context.Context, input string) (Result, error) {
	exchange, err := s.Submit(ctx, input)
	if err != nil {
		return Result{}, err
	}
	result := exchange.Wait()
	return result, result.Err
}

// NewChat abandons the running exchange, if any, clears the history and
// renders a reset carrying the greeting. It does not wait for the abandoned
// exchange's goroutine; that goroutine can no longer change the session.
func (s *Session) NewChat(ctx context.Context) {
	s.mu.Lock()

	s.generation++
	abandoned := s.active != nil && s.state.Busy()
	if abandoned {
		s.active.cancel()
	}
	s.active = nil
	s.state = StateIdle
	s.history.ClearMessages(ctx)

	if abandoned {
		s.count(ctx, observability.MetricExchangeAbandoned)
	}
	s.publish(Update{Kind: UpdateReset, State: StateIdle, Content: s.greeting})
}

// current reports whether exchange may still change the session. Callers
// must hold s.mu.
func (s *Session) current(exchange *Exchange) bool {
	return s.active == exchange && s.generation == exchange.generation
}

// publish renders update and releases s.mu. Callers must hold s.mu.
func (s *Session) publish(update Update) {
	s.renderMu.Lock()
	s.mu.Unlock()
	defer s.renderMu.Unlock()
	s.renderer.Render(update)
}

func (s *Session) count(ctx context.Context, metric string, attrs ...observability.Attribute) {
	if s.observer != nil {
		s.observer.Counter(metric).Add(ctx, 1, attrs...)
	}
}
