package ai

import (
	"iter"
	"strings"
)

// StreamEventType identifies the kind of delta carried by a StreamEvent.
type StreamEventType string

const (
	// StreamEventContent carries an incremental text delta to append.
	StreamEventContent StreamEventType = "content"
	// StreamEventSnapshot carries the full reply text so far; it replaces
	// whatever was accumulated.
	StreamEventSnapshot StreamEventType = "snapshot"
	// StreamEventUsage carries token usage metadata.
	StreamEventUsage StreamEventType = "usage"
	// StreamEventDone signals the explicit end-of-stream marker or a finish
	// reason from the provider.
	StreamEventDone StreamEventType = "done"
)

// StreamEvent represents a single event yielded during response streaming.
type StreamEvent struct {
	Type         StreamEventType `json:"type"`
	Content      string          `json:"content,omitempty"`       // Content and Snapshot
	Usage        *Usage          `json:"usage,omitempty"`         // Usage
	FinishReason string          `json:"finish_reason,omitempty"` // Done, may be empty
}

// ChatStream wraps a streaming iterator and provides automatic accumulation
// of deltas into a final ChatResponse.
//
// Callers must consume the stream, either by ranging over Iter() (breaking
// out early is fine) or by calling Collect(). The provider holds the HTTP
// response body open until the iterator returns.
type ChatStream struct {
	iterator iter.Seq2[StreamEvent, error]
}

// NewChatStream creates a ChatStream from a raw streaming iterator.
func NewChatStream(iterator iter.Seq2[StreamEvent, error]) *ChatStream {
	return &ChatStream{iterator: iterator}
}

// Iter returns the underlying iterator for use with range-over-func loops.
//
//	for event, err := range stream.Iter() {
//	    if err != nil { handle error }
//	    fmt.Print(event.Content)
//	}
func (stream *ChatStream) Iter() iter.Seq2[StreamEvent, error] {
	return stream.iterator
}

// Collect consumes the entire stream and returns the accumulated ChatResponse.
// A mid-stream error stops collection and is returned with the partial
// response. A stream that produced no text yields ErrEmptyResponse.
func (stream *ChatStream) Collect() (*ChatResponse, error) {
	var accumulator Accumulator
	response := &ChatResponse{}

	for event, err := range stream.iterator {
		if err != nil {
			response.Content = accumulator.String()
			return response, err
		}
		accumulator.Apply(event)
		switch event.Type {
		case StreamEventUsage:
			if event.Usage != nil {
				response.Usage = event.Usage
			}
		case StreamEventDone:
			if event.FinishReason != "" {
				response.FinishReason = event.FinishReason
			}
		}
	}

	response.Content = accumulator.String()
	if accumulator.Len() == 0 {
		return response, ErrEmptyResponse
	}
	return response, nil
}

// Accumulator is the growing reply text of one exchange. Content events
// append, snapshot events replace. The zero value is ready to use; it is not
// safe for concurrent use.
type Accumulator struct {
	text strings.Builder
}

// Apply folds one event into the accumulator and reports whether the text
// changed.
func (a *Accumulator) Apply(event StreamEvent) bool {
	switch event.Type {
	case StreamEventContent:
		if event.Content == "" {
			return false
		}
		a.text.WriteString(event.Content)
		return true
	case StreamEventSnapshot:
		if event.Content == a.text.String() {
			return false
		}
		a.text.Reset()
		a.text.WriteString(event.Content)
		return true
	default:
		return false
	}
}

// String returns the current text.
func (a *Accumulator) String() string {
	return a.text.String()
}

// Len returns the length of the current text in bytes.
func (a *Accumulator) Len() int {
	return a.text.Len()
}

// Reset discards the accumulated text.
func (a *Accumulator) Reset() {
	a.text.Reset()
}
