package framing

import (
	"bytes"
	"fmt"

	"github.com/leofalp/duochat/providers/ai"
)

// framingNoise is what may legitimately sit between top-level objects:
// whitespace plus the brackets and commas of an enclosing JSON array.
const framingNoise = " \t\r\n,[]"

type span struct {
	start, end int
}

// ObjectDecoder reassembles a stream of concatenated JSON objects.
//
// The buffer is scanned once, string and escape aware, to find where each
// top-level object ends. Every complete object becomes a frame as soon as its
// closing brace arrives. Objects are not parsed here: a malformed one is
// still a frame, and the provider's extractor rejects it on its own.
type ObjectDecoder struct {
	buf      []byte
	scanned  int
	depth    int
	inString bool
	escaped  bool
	objStart int
	spans    []span
}

// NewObjectDecoder returns an empty ObjectDecoder.
func NewObjectDecoder() *ObjectDecoder {
	return &ObjectDecoder{objStart: -1}
}

func (d *ObjectDecoder) Feed(chunk []byte) []Frame {
	d.buf = append(d.buf, chunk...)
	d.scan()
	return d.takeFrames()
}

// Finish flushes the remaining objects. Leftover bytes that are neither a
// complete object nor array framing yield ai.ErrStreamTermination.
func (d *ObjectDecoder) Finish() ([]Frame, error) {
	defer d.reset()

	d.scan()
	frames := d.takeFrames()
	if rest := bytes.Trim(d.buf, framingNoise); len(rest) > 0 {
		return frames, fmt.Errorf("%w: %d trailing bytes form no complete object", ai.ErrStreamTermination, len(rest))
	}
	return frames, nil
}

// scan advances over unscanned bytes, recording each complete top-level
// object. Brackets outside an object belong to the enclosing array and are
// not counted.
func (d *ObjectDecoder) scan() {
	for ; d.scanned < len(d.buf); d.scanned++ {
		c := d.buf[d.scanned]
		if d.inString {
			switch {
			case d.escaped:
				d.escaped = false
			case c == '\\':
				d.escaped = true
			case c == '"':
				d.inString = false
			}
			continue
		}

		switch c {
		case '"':
			d.inString = true
		case '{', '[':
			if d.depth == 0 {
				if c == '[' {
					continue
				}
				d.objStart = d.scanned
			}
			d.depth++
		case '}', ']':
			if d.depth == 0 {
				continue
			}
			d.depth--
			if d.depth == 0 {
				d.spans = append(d.spans, span{start: d.objStart, end: d.scanned + 1})
				d.objStart = -1
			}
		}
	}
}

// takeFrames returns a frame per complete object and drops the consumed
// prefix of the buffer.
func (d *ObjectDecoder) takeFrames() []Frame {
	if len(d.spans) == 0 {
		return nil
	}
	frames := make([]Frame, 0, len(d.spans))
	for _, s := range d.spans {
		frames = append(frames, Frame{Payload: bytes.Clone(d.buf[s.start:s.end])})
	}
	d.consume(d.spans[len(d.spans)-1].end)
	return frames
}

// consume drops the first n bytes of the buffer and rebases scan state.
func (d *ObjectDecoder) consume(n int) {
	remaining := copy(d.buf, d.buf[n:])
	d.buf = d.buf[:remaining]
	d.scanned -= n
	if d.objStart >= 0 {
		d.objStart -= n
	}
	d.spans = d.spans[:0]
}

func (d *ObjectDecoder) reset() {
	*d = ObjectDecoder{objStart: -1}
}
