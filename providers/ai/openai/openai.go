package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/leofalp/duochat/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com"
	chatCompletionsEndpoint = "/v1/chat/completions"
	apiVersionPath          = "/v1"
)

// OpenAIProvider streams chat completions from an OpenAI-compatible endpoint.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a provider for the public OpenAI endpoint. Use WithBaseURL for
// compatible servers (local gateways, proxies, other vendors).
func New() *OpenAIProvider {
	return &OpenAIProvider{
		baseURL: defaultBaseURL,
		client:  &http.Client{},
	}
}

// Kind implements ai.Provider.
func (provider *OpenAIProvider) Kind() ai.ProviderKind {
	return ai.ProviderOpenAI
}

// WithAPIKey sets the bearer key sent with every request.
func (provider *OpenAIProvider) WithAPIKey(apiKey string) ai.Provider {
	provider.apiKey = apiKey
	return provider
}

// WithBaseURL sets the server root, without the /v1 suffix. A trailing slash
// or /v1 is tolerated.
func (provider *OpenAIProvider) WithBaseURL(baseURL string) ai.Provider {
	provider.baseURL = normalizeBaseURL(baseURL)
	return provider
}

// WithHttpClient sets a custom HTTP client
func (provider *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	provider.client = httpClient
	return provider
}

// BaseURL returns the normalized server root.
func (provider *OpenAIProvider) BaseURL() string {
	return provider.baseURL
}

// ListModels returns the models served by the endpoint, in server order.
func (provider *OpenAIProvider) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	config := goopenai.DefaultConfig(provider.apiKey)
	config.BaseURL = provider.baseURL + apiVersionPath
	if provider.client != nil {
		config.HTTPClient = provider.client
	}

	list, err := goopenai.NewClientWithConfig(config).ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai: listing models: %w", classifyClientError(err))
	}

	models := make([]ai.ModelInfo, 0, len(list.Models))
	for _, model := range list.Models {
		if model.ID == "" {
			continue
		}
		models = append(models, ai.ModelInfo{ID: model.ID, DisplayName: model.ID})
	}
	return models, nil
}

// classifyClientError maps go-openai failures onto ai.TransportError.
func classifyClientError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &ai.TransportError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var requestErr *goopenai.RequestError
	if errors.As(err, &requestErr) {
		return &ai.TransportError{StatusCode: requestErr.HTTPStatusCode, Message: requestErr.Error(), Err: err}
	}
	return ai.AsTransportError(err)
}

func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	baseURL = strings.TrimSuffix(baseURL, apiVersionPath)
	return baseURL
}
