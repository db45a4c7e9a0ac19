package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/duochat/internal/utils"
)

var (
	// ErrConfigIncomplete is returned before any network call when the
	// selected provider is missing a required setting.
	ErrConfigIncomplete = errors.New("configuration incomplete")

	// ErrTransport covers non-2xx statuses, connection failures and body
	// read failures. Match it with errors.Is; use errors.As with
	// *TransportError for the status code.
	ErrTransport = errors.New("transport error")

	// ErrEmptyResponse means the stream ended without a single usable delta.
	ErrEmptyResponse = errors.New("empty response")

	// ErrFrameDecode marks one malformed frame. It is logged and counted,
	// never returned from a stream.
	ErrFrameDecode = errors.New("frame decode error")

	// ErrStreamTermination means the body ended while the decoder still held
	// bytes it could not parse. It is a transport-level failure.
	ErrStreamTermination = fmt.Errorf("%w: stream ended with undecodable data", ErrTransport)
)

// TransportError is a failed exchange with the provider endpoint.
// StatusCode is zero for connection-level failures.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport error: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return "transport error: " + e.Message
}

// Is makes every TransportError match ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsTransportError classifies an error returned by the HTTP layer. Errors
// already classified and context cancellation pass through unchanged.
func AsTransportError(err error) error {
	if err == nil || errors.Is(err, ErrTransport) || errors.Is(err, context.Canceled) {
		return err
	}
	var statusErr *utils.HTTPStatusError
	if errors.As(err, &statusErr) {
		return &TransportError{StatusCode: statusErr.StatusCode, Message: statusErr.Body, Err: err}
	}
	return &TransportError{Message: err.Error(), Err: err}
}
