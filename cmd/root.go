// Package cmd implements the duochat command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leofalp/duochat/core/backend"
	"github.com/leofalp/duochat/core/session"
	"github.com/leofalp/duochat/core/session/middleware"
	"github.com/leofalp/duochat/core/settings"
	"github.com/leofalp/duochat/providers/ai/gemini"
	"github.com/leofalp/duochat/providers/observability/slogobs"
)

// defaultLogLevel keeps library chatter off the terminal unless asked for.
const defaultLogLevel = "warn"

// app carries the global flags and I/O shared by every subcommand.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath     string
	logLevel       string
	logFormat      string
	timeout        time.Duration
	geminiSSE      bool
	geminiTextMode string

	observer *slogobs.Observer

	// interrupts replaces SIGINT delivery for the REPL when set.
	interrupts chan os.Signal
}

// newRootCommand builds the command tree. Tests drive it with buffers.
func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	return (&app{in: in, out: out, errOut: errOut}).rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	in, out, errOut := a.in, a.out, a.errOut
	root := &cobra.Command{
		Use:   "duochat",
		Short: "Streaming chat with OpenAI-compatible and Gemini models",
		Long: `duochat streams replies from an OpenAI-compatible chat-completions endpoint
or from Google Gemini, keeping one conversation history across turns.

Settings live in ~/.duochat/settings.json; see "duochat settings --help".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setupObserver()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd.Context())
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "settings file (default ~/.duochat/settings.json)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (default from DUOCHAT_LOG_LEVEL, else warn)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: compact, pretty, json (default from DUOCHAT_LOG_FORMAT)")
	flags.DurationVar(&a.timeout, "timeout", 5*time.Minute, "deadline for one reply, 0 disables it")
	flags.BoolVar(&a.geminiSSE, "gemini-sse", false, "request alt=sse framing from Gemini")
	flags.StringVar(&a.geminiTextMode, "gemini-text-mode", "auto", "how Gemini chunks combine: auto, cumulative, incremental")

	root.AddCommand(
		a.newChatCommand(),
		a.newAskCommand(),
		a.newModelsCommand(),
		a.newSettingsCommand(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) setupObserver() {
	level := a.logLevel
	if level == "" {
		level = os.Getenv("DUOCHAT_LOG_LEVEL")
	}
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = defaultLogLevel
	}

	format := slogobs.GetFormatFromEnv()
	if a.logFormat != "" {
		format = slogobs.ParseFormat(a.logFormat)
	}

	a.observer = slogobs.New(
		slogobs.WithLevel(slogobs.ParseLogLevel(level)),
		slogobs.WithFormat(format),
		slogobs.WithOutput(a.errOut),
	)
	slog.SetDefault(a.observer.Logger())
}

func (a *app) openStore(opts ...settings.FileStoreOption) (*settings.FileStore, error) {
	return settings.NewFileStore(a.configPath, opts...)
}

func (a *app) backendOptions() []backend.Option {
	return []backend.Option{
		backend.WithGeminiSSE(a.geminiSSE),
		backend.WithGeminiTextMode(gemini.ParseTextMode(a.geminiTextMode)),
	}
}

func (a *app) newSession(store settings.Store, renderer session.Renderer) *session.Session {
	var middlewares []session.StreamMiddleware
	if a.timeout > 0 {
		middlewares = append(middlewares, middleware.NewTimeoutMiddleware(a.timeout))
	}
	middlewares = append(middlewares, middleware.NewLoggingMiddleware(a.observer.Logger(), middleware.LogLevelStandard))

	return session.New(store,
		session.WithRenderer(renderer),
		session.WithObserver(a.observer),
		session.WithBackendOptions(a.backendOptions()...),
		session.WithMiddleware(middlewares...),
	)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) warnf(format string, args ...any) {
	fmt.Fprintf(a.errOut, format, args...)
}

// isCommand reports whether line is a REPL command such as /new.
func isCommand(line string) bool {
	return strings.HasPrefix(line, "/")
}
