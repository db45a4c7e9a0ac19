package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/leofalp/duochat/internal/framing"
	"github.com/leofalp/duochat/internal/utils"
	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/observability"
)

// StreamMessage implements ai.StreamProvider for the streamGenerateContent
// endpoint. Text is always reported as snapshot events: the full reply so
// far, folded according to the provider's TextMode.
func (p *GeminiProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	model := strings.TrimPrefix(request.Model, "models/")
	framingName := "objects"
	if p.sse {
		framingName = "sse"
	}

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, string(ai.ProviderGemini)),
			observability.String(observability.AttrLLMEndpoint, p.baseURL),
			observability.String(observability.AttrLLMModel, model),
			observability.String(observability.AttrStreamFraming, framingName),
		)
	}

	if observer != nil {
		observer.Trace(ctx, "Gemini provider preparing streaming request",
			observability.String(observability.AttrLLMEndpoint, p.baseURL),
			observability.String(observability.AttrLLMModel, model),
			observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			observability.String("gemini.text_mode", p.textMode.String()),
		)
	}

	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is not set", ai.ErrConfigIncomplete)
	}

	streamURL := fmt.Sprintf("%s%s/models/%s:streamGenerateContent?key=%s",
		p.baseURL, apiVersionPath, url.PathEscape(model), url.QueryEscape(p.apiKey))
	if p.sse {
		streamURL += "&alt=sse"
	}

	// The key travels in the query string, so no bearer header.
	httpResponse, err := utils.DoPostStream(ctx, p.client, streamURL, "", requestToGemini(request))
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "Streaming HTTP request failed", observability.Error(err))
		}
		return nil, fmt.Errorf("gemini: %w", ai.AsTransportError(err))
	}

	var decoder framing.Decoder = framing.NewObjectDecoder()
	if p.sse {
		decoder = framing.NewLineDecoder()
	}
	tracker := &textTracker{mode: p.textMode}

	iteratorFunc := func(yield func(ai.StreamEvent, error) bool) {
		defer utils.CloseWithLog(httpResponse.Body)

		for frame, err := range framing.Read(ctx, httpResponse.Body, decoder) {
			if err != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("gemini: %w", ai.AsTransportError(err)))
				return
			}
			if frame.Done {
				yield(ai.StreamEvent{Type: ai.StreamEventDone}, nil)
				return
			}

			events, err := frameToStreamEvents(frame)
			if errors.Is(err, ai.ErrFrameDecode) {
				framing.Reject(ctx, ai.ProviderGemini, frame, err)
				continue
			}
			if err != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("gemini: %w", err))
				return
			}

			for _, event := range events {
				if event.Type == ai.StreamEventContent {
					event = ai.StreamEvent{Type: ai.StreamEventSnapshot, Content: tracker.fold(event.Content)}
				}
				if !yield(event, nil) {
					return
				}
			}
		}
	}

	return ai.NewChatStream(iteratorFunc), nil
}
