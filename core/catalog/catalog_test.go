package catalog

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/observability"
	"github.com/leofalp/duochat/providers/observability/slogobs"
)

type fakeProvider struct {
	kind   ai.ProviderKind
	models []ai.ModelInfo
	err    error
}

func (f *fakeProvider) Kind() ai.ProviderKind { return f.kind }
func (f *fakeProvider) WithAPIKey(string) ai.Provider { return f }
func (f *fakeProvider) WithBaseURL(string) ai.Provider { return f }
func (f *fakeProvider) WithHttpClient(*http.Client) ai.Provider { return f }

func (f *fakeProvider) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.models, f.err
}

func TestList(t *testing.T) {
	provider := &fakeProvider{kind: ai.ProviderOpenAI, models: []ai.ModelInfo{{ID: "gpt-4"}, {ID: "gpt-4o"}}}

	models, err := List(context.Background(), provider)
	require.NoError(t, err)
	assert.Len(t, models, 2)
}

func TestList_EmptyIsError(t *testing.T) {
	_, err := List(context.Background(), &fakeProvider{kind: ai.ProviderGemini})
	assert.ErrorIs(t, err, ErrNoModels)
}

func TestListOrDefault(t *testing.T) {
	discoveryErr := &ai.TransportError{StatusCode: 401, Message: "bad key"}

	tests := []struct {
		name    string
		kind    ai.ProviderKind
		want    string
		wantErr error
	}{
		{"openai fallback", ai.ProviderOpenAI, "gpt-3.5-turbo", ai.ErrTransport},
		{"gemini fallback", ai.ProviderGemini, "gemini-pro", ai.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models, err := ListOrDefault(context.Background(), &fakeProvider{kind: tt.kind, err: discoveryErr})
			assert.ErrorIs(t, err, tt.wantErr)
			require.Len(t, models, 1)
			assert.Equal(t, tt.want, models[0].ID)
		})
	}
}

func TestListOrDefault_CancelledHasNoDefaults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	models, err := ListOrDefault(ctx, &fakeProvider{kind: ai.ProviderOpenAI})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, models)
}

// TestListOrDefault_LogsFallback verifies the span and the fallback warning
// when an observer travels in the context.
func TestListOrDefault_LogsFallback(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(slogobs.WithFormat(slogobs.FormatJSON), slogobs.WithLevel(slogobs.LevelTrace), slogobs.WithOutput(&buf))
	ctx := observability.ContextWithObserver(context.Background(), observer)

	_, err := ListOrDefault(ctx, &fakeProvider{kind: ai.ProviderGemini, err: errors.New("offline")})
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, observability.SpanCatalogList)
	assert.Contains(t, out, "Model discovery failed, using defaults")
}
