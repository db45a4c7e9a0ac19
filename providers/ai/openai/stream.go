package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leofalp/duochat/internal/framing"
	"github.com/leofalp/duochat/internal/utils"
	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/observability"
)

// StreamMessage implements ai.StreamProvider for the chat completions
// endpoint. It returns as soon as the response headers arrive.
func (provider *OpenAIProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, string(ai.ProviderOpenAI)),
			observability.String(observability.AttrLLMEndpoint, provider.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.String(observability.AttrStreamFraming, "lines"),
		)
	}

	if observer != nil {
		observer.Trace(ctx, "OpenAI provider preparing streaming request",
			observability.String(observability.AttrLLMEndpoint, provider.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
		)
	}

	if provider.apiKey == "" {
		return nil, fmt.Errorf("%w: openai API key is not set", ai.ErrConfigIncomplete)
	}

	httpResponse, err := utils.DoPostStream(ctx, provider.client, provider.baseURL+chatCompletionsEndpoint,
		provider.apiKey, requestToChatCompletion(request))
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "Streaming HTTP request failed", observability.Error(err))
		}
		return nil, fmt.Errorf("openai: %w", ai.AsTransportError(err))
	}

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		for frame, err := range framing.Read(ctx, httpResponse.Body, framing.NewLineDecoder()) {
			if err != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("openai: %w", ai.AsTransportError(err)))
				return
			}
			if frame.Done {
				yield(ai.StreamEvent{Type: ai.StreamEventDone}, nil)
				return
			}

			events, err := frameToStreamEvents(frame)
			if err != nil {
				framing.Reject(ctx, ai.ProviderOpenAI, frame, err)
				continue
			}
			for _, event := range events {
				if !yield(event, nil) {
					return
				}
			}
		}
	}

	return ai.NewChatStream(iteratorFunc), nil
}

// frameToStreamEvents is the delta extractor. It decodes one chunk into
// events: usage first, then the content delta of the first choice, then its
// finish reason. A chunk without content yields no content event. Only
// choices[0] is read; n>1 completions are never requested.
func frameToStreamEvents(frame framing.Frame) ([]ai.StreamEvent, error) {
	var chunk chatCompletionStreamChunk
	if err := json.Unmarshal(frame.Payload, &chunk); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrFrameDecode, err)
	}

	var events []ai.StreamEvent
	if chunk.Usage != nil {
		events = append(events, ai.StreamEvent{
			Type: ai.StreamEventUsage,
			Usage: &ai.Usage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			},
		})
	}

	if len(chunk.Choices) == 0 {
		return events, nil
	}
	choice := chunk.Choices[0]
	if choice.Delta.Content != nil && *choice.Delta.Content != "" {
		events = append(events, ai.StreamEvent{Type: ai.StreamEventContent, Content: *choice.Delta.Content})
	}
	if choice.FinishReason != nil && *choice.FinishReason != "" {
		events = append(events, ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: *choice.FinishReason})
	}
	return events, nil
}
