package framing

import (
	"context"

	"github.com/leofalp/duochat/internal/utils"
	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/observability"
)

// framePreviewLength bounds the payload excerpt attached to rejection logs.
const framePreviewLength = 200

// Reject records a frame that could not be decoded. The stream goes on; the
// frame is only counted and logged through the observer in ctx, if any.
func Reject(ctx context.Context, provider ai.ProviderKind, frame Frame, err error) {
	attrs := []observability.Attribute{
		observability.String(observability.AttrLLMProvider, string(provider)),
		observability.String(observability.AttrStreamFramePreview, utils.TruncateString(string(frame.Payload), framePreviewLength)),
		observability.Error(err),
	}

	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventFrameRejected, attrs...)
	}
	if observer := observability.ObserverFromContext(ctx); observer != nil {
		observer.Counter(observability.MetricFramesRejected).Add(ctx, 1,
			observability.String(observability.AttrLLMProvider, string(provider)))
		observer.Debug(ctx, "Skipping malformed stream frame", attrs...)
	}
}
