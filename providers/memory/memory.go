package memory

import (
	"context"

	"github.com/leofalp/duochat/providers/ai"
)

// Provider stores the committed turns of one conversation, in order.
// Messages are copied in and out; stored messages are never modified.
type Provider interface {
	// AppendMessage adds a copy of message at the end. Nil is ignored.
	AppendMessage(ctx context.Context, message *ai.Message)

	// AllMessages returns a copy of the history in insertion order.
	AllMessages(ctx context.Context) ([]ai.Message, error)

	// Count returns the number of stored messages.
	Count(ctx context.Context) (int, error)

	// ClearMessages drops the whole history.
	ClearMessages(ctx context.Context)
}
