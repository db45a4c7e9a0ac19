package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/duochat/internal/utils"
	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/observability"
)

// Result is the outcome of one exchange. On failure Content holds the
// partial reply that was shown but not stored.
type Result struct {
	ID      string
	State   State
	Content string
	Err     error
}

// Exchange is the handle to one submission.
type Exchange struct {
	id         string
	session    *Session
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	result     Result
}

// ID returns the exchange's UUID.
func (e *Exchange) ID() string {
	return e.id
}

// Done is closed when the exchange goroutine has exited.
func (e *Exchange) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the exchange ends and returns its result.
func (e *Exchange) Wait() Result {
	<-e.done
	return e.result
}

// Cancel abandons this exchange if it is still running: the stream is
// closed, nothing more is rendered for it except one failed update, and the
// history keeps only the user turn. The session can accept a new submission
// as soon as Cancel returns.
func (e *Exchange) Cancel() {
	s := e.session
	s.mu.Lock()
	if !s.current(e) || !s.state.Busy() {
		s.mu.Unlock()
		return
	}

	s.generation++
	s.state = StateFailed
	e.cancel()

	s.count(context.Background(), observability.MetricExchangeAbandoned)
	s.publish(Update{Kind: UpdateFailed, ExchangeID: e.id, State: StateFailed, Err: ErrAbandoned})
}

// run drives the stream to completion on the exchange goroutine.
func (e *Exchange) run(ctx context.Context, open StreamFunc, request ai.ChatRequest) {
	defer close(e.done)
	defer e.cancel()
	if span := observability.SpanFromContext(ctx); span != nil {
		defer span.End()
	}

	timer := utils.NewTimer()
	stream, err := open(ctx, request)
	timer.Stop()
	if err != nil {
		e.fail(ctx, "", err)
		return
	}

	if !e.advance(StateStreaming) {
		e.abandon(stream)
		return
	}
	e.recordFirstByte(ctx, timer)

	var accumulator ai.Accumulator
	deltas := 0
	for event, err := range stream.Iter() {
		if err != nil {
			e.fail(ctx, accumulator.String(), err)
			return
		}
		if !accumulator.Apply(event) {
			continue
		}
		deltas++
		if !e.renderDelta(accumulator.String()) {
			e.result = e.abandonedResult()
			return
		}
	}

	e.finalize(ctx, accumulator.String(), deltas)
}

// advance moves the session to state if the exchange is still current.
func (e *Exchange) advance(state State) bool {
	s := e.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(e) {
		return false
	}
	s.state = state
	return true
}

func (e *Exchange) renderDelta(content string) bool {
	s := e.session
	s.mu.Lock()
	if !s.current(e) {
		s.mu.Unlock()
		return false
	}
	s.publish(Update{Kind: UpdateDelta, ExchangeID: e.id, State: StateStreaming, Content: content})
	return true
}

// finalize commits a non-empty reply; an empty one fails the exchange.
func (e *Exchange) finalize(ctx context.Context, content string, deltas int) {
	s := e.session
	s.mu.Lock()
	if !s.current(e) {
		s.mu.Unlock()
		e.result = e.abandonedResult()
		return
	}

	s.state = StateFinalizing
	if content == "" {
		e.failLocked(ctx, "", ai.ErrEmptyResponse)
		return
	}

	s.history.AppendMessage(ctx, &ai.Message{Role: ai.RoleAssistant, Content: content})
	s.state = StateCommitted
	e.result = Result{ID: e.id, State: StateCommitted, Content: content}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.SetAttributes(
			observability.String(observability.AttrSessionState, StateCommitted.String()),
			observability.Int(observability.AttrStreamDeltas, deltas),
			observability.Int(observability.AttrResponseLength, len(content)),
		)
		span.SetStatus(observability.StatusOK, "")
	}
	if s.observer != nil {
		s.observer.Debug(ctx, "Exchange committed",
			observability.String(observability.AttrSessionExchangeID, e.id),
			observability.Int(observability.AttrStreamDeltas, deltas),
			observability.Int(observability.AttrResponseLength, len(content)),
		)
	}
	s.count(ctx, observability.MetricExchangeCommitted)

	s.publish(Update{Kind: UpdateCommitted, ExchangeID: e.id, State: StateCommitted, Content: content})
}

func (e *Exchange) fail(ctx context.Context, partial string, err error) {
	s := e.session
	s.mu.Lock()
	if !s.current(e) {
		s.mu.Unlock()
		e.result = e.abandonedResult()
		return
	}
	e.failLocked(ctx, partial, err)
}

// failLocked expects s.mu held and releases it.
func (e *Exchange) failLocked(ctx context.Context, partial string, err error) {
	s := e.session
	if cause := ctx.Err(); cause != nil && errors.Is(err, cause) {
		err = fmt.Errorf("%w: %w", ErrAbandoned, err)
	}

	s.state = StateFailed
	e.result = Result{ID: e.id, State: StateFailed, Content: partial, Err: err}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.RecordError(err)
		span.SetAttributes(observability.String(observability.AttrSessionState, StateFailed.String()))
		span.SetStatus(observability.StatusError, "exchange failed")
	}
	if s.observer != nil {
		s.observer.Warn(ctx, "Exchange failed",
			observability.String(observability.AttrSessionExchangeID, e.id),
			observability.Error(err),
		)
	}
	s.count(ctx, observability.MetricExchangeFailed)

	s.publish(Update{Kind: UpdateFailed, ExchangeID: e.id, State: StateFailed, Content: partial, Err: err})
}

// abandon releases a stream that was opened after the exchange stopped
// being current. Ranging once runs the provider's cleanup.
func (e *Exchange) abandon(stream *ai.ChatStream) {
	e.cancel()
	for range stream.Iter() {
		break
	}
	e.result = e.abandonedResult()
}

func (e *Exchange) abandonedResult() Result {
	return Result{ID: e.id, State: StateFailed, Err: ErrAbandoned}
}

func (e *Exchange) recordFirstByte(ctx context.Context, timer *utils.Timer) {
	ttfb := timer.GetDuration()
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventStreamStarted,
			observability.Duration(observability.AttrStreamTimeToFirstByte, ttfb),
		)
	}
	if observer := e.session.observer; observer != nil {
		observer.Histogram(observability.MetricTimeToFirstByte).Record(ctx, float64(ttfb.Milliseconds()))
	}
}
