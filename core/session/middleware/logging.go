package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/duochat/core/session"
	"github.com/leofalp/duochat/internal/utils"
	"github.com/leofalp/duochat/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits.
type LogLevel int

const (
	// LogLevelMinimal logs the model, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the message count, finish reason and reply
	// length.
	LogLevelStandard

	// LogLevelVerbose adds the last user message and the reply, each
	// truncated to 500 characters.
	//
	// WARNING: prompts and replies may contain secrets or personal data.
	// Use only for local debugging.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware logs each stream: an entry when it is requested, and
// one when it completes, fails or is abandoned by the caller.
// The logger must not be nil.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) session.StreamMiddleware {
	return func(next session.StreamFunc) session.StreamFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
			logger.InfoContext(ctx, "llm stream", buildRequestAttrs(request, level)...)

			start := time.Now()
			stream, err := next(ctx, request)
			if err != nil {
				logger.ErrorContext(ctx, "llm stream failed",
					slog.String("model", request.Model),
					slog.Duration("duration", time.Since(start)),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			return wrapStreamWithLogging(ctx, stream, logger, request.Model, level, start), nil
		}
	}
}

func wrapStreamWithLogging(
	ctx context.Context,
	stream *ai.ChatStream,
	logger *slog.Logger,
	model string,
	level LogLevel,
	start time.Time,
) *ai.ChatStream {
	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		var (
			finishReason string
			usage        *ai.Usage
			reply        ai.Accumulator
		)

		for event, err := range stream.Iter() {
			if err != nil {
				logger.ErrorContext(ctx, "llm stream failed",
					slog.String("model", model),
					slog.Duration("duration", time.Since(start)),
					slog.Int("response_length", reply.Len()),
					slog.String("error", err.Error()),
				)
				yield(event, err)
				return
			}

			reply.Apply(event)
			switch event.Type {
			case ai.StreamEventUsage:
				if event.Usage != nil {
					usage = event.Usage
				}
			case ai.StreamEventDone:
				if event.FinishReason != "" {
					finishReason = event.FinishReason
				}
			}

			if !yield(event, nil) {
				logger.InfoContext(ctx, "llm stream abandoned",
					slog.String("model", model),
					slog.Duration("duration", time.Since(start)),
				)
				return
			}
		}

		attrs := []any{
			slog.String("model", model),
			slog.Duration("duration", time.Since(start)),
		}
		if level >= LogLevelStandard {
			attrs = append(attrs, slog.Int("response_length", reply.Len()))
			if finishReason != "" {
				attrs = append(attrs, slog.String("finish_reason", finishReason))
			}
		}
		if usage != nil {
			attrs = append(attrs,
				slog.Int("prompt_tokens", usage.PromptTokens),
				slog.Int("completion_tokens", usage.CompletionTokens),
				slog.Int("total_tokens", usage.TotalTokens),
			)
		}
		if level >= LogLevelVerbose && reply.Len() > 0 {
			attrs = append(attrs, slog.String("response_content", utils.TruncateString(reply.String(), truncateLen)))
		}

		logger.InfoContext(ctx, "llm stream completed", attrs...)
	}

	return ai.NewChatStream(iteratorFunc)
}

// buildRequestAttrs describes an outgoing request at the given verbosity.
func buildRequestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{
		slog.String("model", request.Model),
	}

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("message_count", len(request.Messages)))
	}

	if level >= LogLevelVerbose && len(request.Messages) > 0 {
		last := request.Messages[len(request.Messages)-1]
		attrs = append(attrs,
			slog.String("last_message_role", string(last.Role)),
			slog.String("last_message_content", utils.TruncateString(last.Content, truncateLen)),
		)
	}

	return attrs
}
