package session

// UpdateKind tells the renderer what changed.
type UpdateKind int

const (
	// UpdateDelta carries the reply so far after a change.
	UpdateDelta UpdateKind = iota
	// UpdateCommitted carries the final reply, now stored in the history.
	UpdateCommitted
	// UpdateFailed carries the error that ended the exchange.
	UpdateFailed
	// UpdateReset means the transcript was cleared; Content holds the
	// greeting, if any.
	UpdateReset
)

func (k UpdateKind) String() string {
	switch k {
	case UpdateDelta:
		return "delta"
	case UpdateCommitted:
		return "committed"
	case UpdateFailed:
		return "failed"
	case UpdateReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Update is one repaint instruction. Content is always the whole reply so
// far, never a fragment.
type Update struct {
	Kind       UpdateKind
	ExchangeID string
	State      State
	Content    string
	Err        error
}

// Renderer paints updates. Calls are serialized and arrive in order.
// Render must not call Submit, Send, NewChat or Exchange.Cancel.
type Renderer interface {
	Render(update Update)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(update Update)

func (f RendererFunc) Render(update Update) {
	f(update)
}

type discardRenderer struct{}

func (discardRenderer) Render(Update) {}
