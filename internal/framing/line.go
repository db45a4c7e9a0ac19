package framing

import "bytes"

var (
	dataPrefix   = []byte("data:")
	doneSentinel = []byte("[DONE]")
)

// LineDecoder splits a body into "data:" lines. Lines without the prefix
// (comments, event:, id:, blank separators) are ignored. A trailing partial
// line is carried over to the next chunk.
type LineDecoder struct {
	carry []byte
}

// NewLineDecoder returns a LineDecoder with an empty carry-over buffer.
func NewLineDecoder() *LineDecoder {
	return &LineDecoder{}
}

func (d *LineDecoder) Feed(chunk []byte) []Frame {
	d.carry = append(d.carry, chunk...)

	var frames []Frame
	start := 0
	for {
		i := bytes.IndexByte(d.carry[start:], '\n')
		if i < 0 {
			break
		}
		if frame, ok := parseLine(d.carry[start : start+i]); ok {
			frames = append(frames, frame)
		}
		start += i + 1
	}

	// Shift the partial line to the front so the buffer does not grow.
	remaining := copy(d.carry, d.carry[start:])
	d.carry = d.carry[:remaining]
	return frames
}

func (d *LineDecoder) Finish() ([]Frame, error) {
	line := d.carry
	d.carry = nil
	if frame, ok := parseLine(line); ok {
		return []Frame{frame}, nil
	}
	return nil, nil
}

// parseLine returns the frame carried by one line, if any. The payload is
// copied out of the decoder buffer.
func parseLine(line []byte) (Frame, bool) {
	line = bytes.TrimRight(line, "\r")
	if !bytes.HasPrefix(line, dataPrefix) {
		return Frame{}, false
	}
	payload := bytes.TrimSpace(line[len(dataPrefix):])
	if len(payload) == 0 {
		return Frame{}, false
	}
	if bytes.Equal(payload, doneSentinel) {
		return Frame{Done: true}, true
	}
	return Frame{Payload: bytes.Clone(payload)}, true
}
