package inmemory

import (
	"context"
	"sync"

	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/memory"
	"github.com/leofalp/duochat/providers/observability"
)

// Conversation is a mutex-guarded message slice.
type Conversation struct {
	mu       sync.RWMutex
	messages []ai.Message
}

// New returns an empty Conversation.
func New() *Conversation {
	return &Conversation{}
}

// Ensure Conversation implements memory.Provider at compile time.
var _ memory.Provider = (*Conversation)(nil)

// AppendMessage stores a copy of message at the end of the history.
// When a span is present in ctx, an event with the role and content length
// is recorded along with the new history size.
func (c *Conversation) AppendMessage(ctx context.Context, message *ai.Message) {
	if message == nil {
		return
	}

	c.mu.Lock()
	c.messages = append(c.messages, *message)
	total := len(c.messages)
	c.mu.Unlock()

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryAppend,
			observability.String(observability.AttrMemoryMessageRole, string(message.Role)),
			observability.Int(observability.AttrMemoryMessageLength, len(message.Content)),
		)
		span.SetAttributes(observability.Int(observability.AttrMemoryTotalMessages, total))
	}
}

// AllMessages returns a copy, so callers cannot mutate stored turns. The
// error is always nil.
func (c *Conversation) AllMessages(_ context.Context) ([]ai.Message, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ai.Message, len(c.messages))
	copy(out, c.messages)
	return out, nil
}

// Count returns the number of messages stored. The error is always nil.
func (c *Conversation) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages), nil
}

// ClearMessages drops all messages. The backing array is released rather than
// reused so slices handed out earlier keep their contents.
func (c *Conversation) ClearMessages(ctx context.Context) {
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryClear)
	}

	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}
