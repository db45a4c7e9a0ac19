// Package catalog discovers the models a provider offers for chat.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/observability"
)

// ErrNoModels is returned when discovery succeeds but finds nothing usable.
var ErrNoModels = errors.New("no chat models available")

// Defaults returns the models offered when discovery fails.
func Defaults(kind ai.ProviderKind) []ai.ModelInfo {
	switch kind {
	case ai.ProviderGemini:
		return []ai.ModelInfo{{ID: "gemini-pro", DisplayName: "Gemini Pro"}}
	default:
		return []ai.ModelInfo{{ID: "gpt-3.5-turbo", DisplayName: "gpt-3.5-turbo"}}
	}
}

// List asks provider for its chat models. An empty list is ErrNoModels.
func List(ctx context.Context, provider ai.Provider) ([]ai.ModelInfo, error) {
	if observer := observability.ObserverFromContext(ctx); observer != nil {
		var span observability.Span
		ctx, span = observer.StartSpan(ctx, observability.SpanCatalogList,
			observability.String(observability.AttrLLMProvider, string(provider.Kind())),
		)
		defer span.End()
	}
	span := observability.SpanFromContext(ctx)

	models, err := provider.ListModels(ctx)
	if err == nil && len(models) == 0 {
		err = fmt.Errorf("%s: %w", provider.Kind(), ErrNoModels)
	}
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "model discovery failed")
		}
		return nil, err
	}

	if span != nil {
		span.SetAttributes(observability.Int(observability.AttrCatalogModelsCount, len(models)))
		span.SetStatus(observability.StatusOK, "")
	}
	return models, nil
}

// ListOrDefault is List with a fallback: when discovery fails the defaults
// for the provider are returned together with the discovery error, so the
// caller can both offer a model and report what went wrong. Context
// cancellation is returned without defaults.
func ListOrDefault(ctx context.Context, provider ai.Provider) ([]ai.ModelInfo, error) {
	models, err := List(ctx, provider)
	if err == nil {
		return models, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	if observer := observability.ObserverFromContext(ctx); observer != nil {
		observer.Warn(ctx, "Model discovery failed, using defaults",
			observability.String(observability.AttrLLMProvider, string(provider.Kind())),
			observability.Bool(observability.AttrCatalogFallback, true),
			observability.Error(err),
		)
	}
	return Defaults(provider.Kind()), err
}
