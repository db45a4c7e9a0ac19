package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/leofalp/duochat/core/session"
	"github.com/leofalp/duochat/core/settings"
	"github.com/leofalp/duochat/providers/ai"
)

// terminalRenderer prints a transcript to a terminal. Updates carry the
// whole reply so far; only the new suffix is written when the reply grew.
// A reply that changed in place is reprinted in full under a marker.
type terminalRenderer struct {
	mu       sync.Mutex
	out      io.Writer
	exchange string
	printed  string

	assistantLabel lipgloss.Style
	greeting       lipgloss.Style
	errorText      lipgloss.Style
	notice         lipgloss.Style
}

func newTerminalRenderer(out io.Writer) *terminalRenderer {
	renderer := lipgloss.NewRenderer(out)
	return &terminalRenderer{
		out:            out,
		assistantLabel: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		greeting:       renderer.NewStyle().Italic(true).Foreground(lipgloss.Color("10")),
		errorText:      renderer.NewStyle().Foreground(lipgloss.Color("9")),
		notice:         renderer.NewStyle().Faint(true),
	}
}

var _ session.Renderer = (*terminalRenderer)(nil)

func (r *terminalRenderer) Render(update session.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch update.Kind {
	case session.UpdateDelta:
		r.printSnapshot(update.ExchangeID, update.Content)
	case session.UpdateCommitted:
		r.printSnapshot(update.ExchangeID, update.Content)
		fmt.Fprintln(r.out)
		r.endReply()
	case session.UpdateFailed:
		r.breakLine()
		fmt.Fprintln(r.out, r.errorText.Render("error: "+describeError(update.Err)))
		r.endReply()
	case session.UpdateReset:
		r.breakLine()
		r.endReply()
		if update.Content != "" {
			fmt.Fprintln(r.out, r.greeting.Render(update.Content))
		}
	}
}

// Greet prints text the way a reset does, for the REPL banner.
func (r *terminalRenderer) Greet(text string) {
	r.Render(session.Update{Kind: session.UpdateReset, Content: text})
}

// Notice prints an out-of-band line, e.g. a settings reload.
func (r *terminalRenderer) Notice(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakLine()
	fmt.Fprintln(r.out, r.notice.Render(text))
}

// Error prints an error that never reached the session, e.g. a busy or
// incomplete-settings rejection.
func (r *terminalRenderer) Error(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakLine()
	fmt.Fprintln(r.out, r.errorText.Render("error: "+describeError(err)))
}

func (r *terminalRenderer) printSnapshot(exchange, content string) {
	if exchange != r.exchange {
		r.breakLine()
		r.exchange = exchange
		r.printed = ""
		fmt.Fprint(r.out, r.assistantLabel.Render("assistant>")+" ")
	}

	if strings.HasPrefix(content, r.printed) {
		fmt.Fprint(r.out, content[len(r.printed):])
	} else {
		fmt.Fprint(r.out, "\n"+r.notice.Render("(revised)")+"\n"+content)
	}
	r.printed = content
}

// breakLine ends a partially printed reply.
func (r *terminalRenderer) breakLine() {
	if r.printed != "" {
		fmt.Fprintln(r.out)
		r.printed = ""
	}
}

func (r *terminalRenderer) endReply() {
	r.exchange = ""
	r.printed = ""
}

// describeError turns session and provider errors into one readable line.
func describeError(err error) string {
	var incomplete *settings.IncompleteError
	switch {
	case err == nil:
		return "unknown error"
	case errors.As(err, &incomplete):
		return fmt.Sprintf("settings incomplete, missing %s (set with: duochat settings set <key> <value>)",
			strings.Join(incomplete.Missing, ", "))
	case errors.Is(err, session.ErrAbandoned):
		return "reply cancelled"
	case errors.Is(err, session.ErrBusy):
		return "still answering the previous message"
	case errors.Is(err, ai.ErrEmptyResponse):
		return "the model returned an empty reply"
	default:
		return err.Error()
	}
}
