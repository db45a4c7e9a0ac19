package gemini

import "strings"

// TextMode decides how the text of successive chunks folds into the reply.
// Gemini has been observed both repeating the full text so far and sending
// only the new piece, depending on model and framing.
type TextMode int

const (
	// TextModeAuto replaces the reply when a chunk extends it and appends
	// otherwise. Correct for both behaviours, except for an incremental chunk
	// that happens to repeat the whole reply so far.
	TextModeAuto TextMode = iota
	// TextModeCumulative treats every chunk as the full reply so far.
	TextModeCumulative
	// TextModeIncremental treats every chunk as new text to append.
	TextModeIncremental
)

func (m TextMode) String() string {
	switch m {
	case TextModeCumulative:
		return "cumulative"
	case TextModeIncremental:
		return "incremental"
	default:
		return "auto"
	}
}

// ParseTextMode maps a name to a TextMode; unknown names yield TextModeAuto.
func ParseTextMode(name string) TextMode {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cumulative":
		return TextModeCumulative
	case "incremental":
		return TextModeIncremental
	default:
		return TextModeAuto
	}
}

// textTracker holds the reply snapshot of one stream.
type textTracker struct {
	mode     TextMode
	snapshot string
}

// fold applies one chunk and returns the new snapshot.
func (t *textTracker) fold(chunk string) string {
	switch t.mode {
	case TextModeCumulative:
		t.snapshot = chunk
	case TextModeIncremental:
		t.snapshot += chunk
	default:
		if strings.HasPrefix(chunk, t.snapshot) {
			t.snapshot = chunk
		} else {
			t.snapshot += chunk
		}
	}
	return t.snapshot
}
