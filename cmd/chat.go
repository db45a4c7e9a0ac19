package cmd

import (
	"bufio"
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/duochat/core/session"
	"github.com/leofalp/duochat/core/settings"
)

const chatHelp = `Commands:
  /new      start a new conversation
  /models   list the models of the configured provider
  /history  print the conversation so far
  /help     show this help
  /quit     leave
Ctrl-C while a reply streams cancels it.`

func (a *app) newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd.Context())
		},
	}
}

// runChat reads lines until /quit or end of input. SIGINT belongs to the
// loop: while a reply streams it cancels that reply, otherwise it leaves.
// The session runs on a context detached from ctx, because the process-wide
// interrupt handler cancels ctx on the same signal.
func (a *app) runChat(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)

	store, err := a.openStore()
	if err != nil {
		return err
	}

	renderer := newTerminalRenderer(a.out)
	chat := a.newSession(store, renderer)

	if _, err := os.Stat(store.Path()); err == nil {
		store.OnChange(func(settings.Settings) {
			renderer.Notice("settings reloaded")
		})
	}

	interrupts := a.interrupts
	if interrupts == nil {
		interrupts = make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt)
		defer signal.Stop(interrupts)
	}

	renderer.Greet(session.DefaultGreeting + " Type /help for commands.")

	stop := make(chan struct{})
	defer close(stop)
	lines := a.readLines(stop)
	for {
		a.printf("you> ")
		var line string
		select {
		case read, ok := <-lines:
			if !ok {
				a.printf("\n")
				return nil
			}
			if read.err != nil {
				return read.err
			}
			line = strings.TrimSpace(read.text)
		case <-interrupts:
			a.printf("\n")
			return nil
		}
		if line == "" {
			continue
		}

		if isCommand(line) {
			if quit := a.runChatCommand(ctx, chat, store, renderer, line); quit {
				return nil
			}
			continue
		}

		exchange, err := chat.Submit(ctx, line)
		if err != nil {
			renderer.Error(err)
			continue
		}
		select {
		case <-exchange.Done():
		case <-interrupts:
			exchange.Cancel()
			<-exchange.Done()
		}
	}
}

type inputLine struct {
	text string
	err  error
}

// readLines scans a.in on its own goroutine so the loop can wait for a line
// and an interrupt at once. The channel is closed at end of input; closing
// stop releases a goroutine blocked on delivery.
func (a *app) readLines(stop <-chan struct{}) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)
		send := func(line inputLine) bool {
			select {
			case lines <- line:
				return true
			case <-stop:
				return false
			}
		}
		scanner := bufio.NewScanner(a.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if !send(inputLine{text: scanner.Text()}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(inputLine{err: err})
		}
	}()
	return lines
}

// runChatCommand handles one slash command and reports whether to quit.
func (a *app) runChatCommand(ctx context.Context, chat *session.Session, store settings.Store, renderer *terminalRenderer, line string) bool {
	switch strings.Fields(line)[0] {
	case "/quit", "/exit":
		return true
	case "/new":
		chat.NewChat(ctx)
	case "/models":
		if err := a.printModels(ctx, store); err != nil {
			renderer.Error(err)
		}
	case "/history":
		history, err := chat.History(ctx)
		if err != nil {
			renderer.Error(err)
			return false
		}
		if len(history) == 0 {
			renderer.Notice("(empty)")
		}
		for _, message := range history {
			a.printf("%s> %s\n", message.Role, message.Content)
		}
	case "/help":
		a.printf("%s\n", chatHelp)
	default:
		renderer.Error(errors.New("unknown command " + line + ", try /help"))
	}
	return false
}
