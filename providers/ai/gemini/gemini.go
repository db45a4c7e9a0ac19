package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/leofalp/duochat/internal/utils"
	"github.com/leofalp/duochat/providers/ai"
	"github.com/leofalp/duochat/providers/observability"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	apiVersionPath = "/v1beta"

	// generateContentMethod must be listed in supportedGenerationMethods for a
	// model to be offered for chat.
	generateContentMethod = "generateContent"
)

// GeminiProvider streams replies from the Gemini generateContent API.
type GeminiProvider struct {
	apiKey   string
	baseURL  string
	client   *http.Client
	sse      bool
	textMode TextMode
}

// Option configures a GeminiProvider.
type Option func(*GeminiProvider)

// WithSSE requests alt=sse framing: one "data:" line per chunk instead of
// the default stream of concatenated JSON objects.
func WithSSE(enabled bool) Option {
	return func(p *GeminiProvider) {
		p.sse = enabled
	}
}

// WithTextMode sets how chunk text folds into the reply. Default TextModeAuto.
func WithTextMode(mode TextMode) Option {
	return func(p *GeminiProvider) {
		p.textMode = mode
	}
}

// New creates a Gemini provider for the public endpoint.
func New(opts ...Option) *GeminiProvider {
	provider := &GeminiProvider{
		baseURL:  defaultBaseURL,
		client:   &http.Client{},
		textMode: TextModeAuto,
	}
	for _, opt := range opts {
		opt(provider)
	}
	return provider
}

// Kind implements ai.Provider.
func (p *GeminiProvider) Kind() ai.ProviderKind {
	return ai.ProviderGemini
}

// WithAPIKey sets the API key for the provider.
func (p *GeminiProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the server root; a trailing slash or /v1beta is tolerated.
func (p *GeminiProvider) WithBaseURL(baseURL string) ai.Provider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	p.baseURL = strings.TrimSuffix(baseURL, apiVersionPath)
	return p
}

// WithHttpClient sets a custom HTTP client.
func (p *GeminiProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// ListModels returns the Gemini models that support generateContent. IDs are
// the last path segment of the resource name ("models/gemini-pro" becomes
// "gemini-pro").
func (p *GeminiProvider) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is not set", ai.ErrConfigIncomplete)
	}

	listURL := p.baseURL + apiVersionPath + "/models?pageSize=1000&key=" + url.QueryEscape(p.apiKey)
	body, err := utils.DoGet(ctx, p.client, listURL)
	if err != nil {
		return nil, fmt.Errorf("gemini: listing models: %w", ai.AsTransportError(err))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("gemini: listing models: %w", &ai.TransportError{Message: "model list is not valid JSON"})
	}

	var models []ai.ModelInfo
	gjson.GetBytes(body, "models").ForEach(func(_, model gjson.Result) bool {
		name := model.Get("name").String()
		if !strings.Contains(name, "gemini") || !supportsGenerateContent(model) {
			return true
		}
		id := name[strings.LastIndex(name, "/")+1:]
		displayName := model.Get("displayName").String()
		if displayName == "" {
			displayName = id
		}
		models = append(models, ai.ModelInfo{ID: id, DisplayName: displayName})
		return true
	})

	if observer := observability.ObserverFromContext(ctx); observer != nil {
		observer.Debug(ctx, "Gemini models listed", observability.Int("models.count", len(models)))
	}
	return models, nil
}

func supportsGenerateContent(model gjson.Result) bool {
	for _, method := range model.Get("supportedGenerationMethods").Array() {
		if method.String() == generateContentMethod {
			return true
		}
	}
	return false
}
