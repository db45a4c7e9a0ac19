package framing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/leofalp/duochat/providers/ai"
)

// readBufferSize is the size of a single body read.
const readBufferSize = 4 * 1024

// Frame is one complete logical unit of a streamed response.
type Frame struct {
	// Payload is the JSON text of the frame. Empty when Done is set.
	Payload []byte
	// Done marks the explicit end-of-stream sentinel.
	Done bool
}

// Decoder reassembles frames from arbitrarily split chunks. Implementations
// keep per-stream state and must not be shared between streams.
type Decoder interface {
	// Feed consumes one chunk and returns the frames it completed, in order.
	Feed(chunk []byte) []Frame
	// Finish is called once when the body is exhausted. It returns any frame
	// still buffered, or an error if the remaining bytes cannot be decoded.
	Finish() ([]Frame, error)
}

// Read yields the frames decoded from r. The context is checked before every
// chunk; read failures are reported as ai.ErrTransport. The sequence ends
// after the first error or when the consumer stops ranging.
func Read(ctx context.Context, r io.Reader, decoder Decoder) iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		buf := make([]byte, readBufferSize)
		for {
			if err := ctx.Err(); err != nil {
				yield(Frame{}, err)
				return
			}

			n, readErr := r.Read(buf)
			if n > 0 {
				for _, frame := range decoder.Feed(buf[:n]) {
					if !yield(frame, nil) {
						return
					}
				}
			}

			if errors.Is(readErr, io.EOF) {
				frames, err := decoder.Finish()
				for _, frame := range frames {
					if !yield(frame, nil) {
						return
					}
				}
				if err != nil {
					yield(Frame{}, err)
				}
				return
			}
			if readErr != nil {
				// A cancelled request surfaces as a body read error.
				if ctxErr := ctx.Err(); ctxErr != nil {
					yield(Frame{}, ctxErr)
					return
				}
				yield(Frame{}, fmt.Errorf("%w: reading response body: %w", ai.ErrTransport, readErr))
				return
			}
		}
	}
}
