package session

import "errors"

// State is the lifecycle position of the current exchange.
type State int

const (
	// StateIdle means no exchange has run since the session started or
	// was reset.
	StateIdle State = iota
	// StateAwaitingFirstByte means the request is sent and no response
	// headers have arrived yet.
	StateAwaitingFirstByte
	// StateStreaming means deltas are being applied.
	StateStreaming
	// StateFinalizing means the stream ended and the reply is being
	// committed or rejected.
	StateFinalizing
	// StateCommitted means the reply was stored as an assistant turn.
	StateCommitted
	// StateFailed means the exchange ended without storing a reply.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFirstByte:
		return "awaiting_first_byte"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether an exchange in this state blocks a new submission.
func (s State) Busy() bool {
	switch s {
	case StateAwaitingFirstByte, StateStreaming, StateFinalizing:
		return true
	}
	return false
}

var (
	// ErrBusy is returned by Submit while another exchange is running.
	ErrBusy = errors.New("an exchange is already in progress")

	// ErrEmptyInput is returned by Submit for blank input.
	ErrEmptyInput = errors.New("empty input")

	// ErrAbandoned is the result of an exchange cancelled before it could
	// finish, by Cancel, NewChat or the caller's context.
	ErrAbandoned = errors.New("exchange abandoned")
)
