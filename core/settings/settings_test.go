package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/duochat/providers/ai"
)

// TestValidate_OpenAIWithoutURL is the reference gate example: an OpenAI
// config with model and key but no endpoint fails on openaiApiUrl alone.
func TestValidate_OpenAIWithoutURL(t *testing.T) {
	_, err := Validate(Settings{APIType: "openai", Model: "gpt-4", OpenAIAPIKey: "sk-x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrConfigIncomplete))

	var incomplete *IncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{KeyOpenAIAPIURL}, incomplete.Missing)
	assert.Equal(t, ai.ProviderOpenAI, incomplete.Provider)
	assert.Contains(t, err.Error(), KeyOpenAIAPIURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		missing  []string
		want     ProviderConfig
	}{
		{
			name:     "complete openai",
			settings: Settings{APIType: "openai", Model: "gpt-4", OpenAIAPIURL: "https://api.example.com", OpenAIAPIKey: "sk-x"},
			want:     ProviderConfig{Provider: ai.ProviderOpenAI, EndpointURL: "https://api.example.com", APIKey: "sk-x", ModelID: "gpt-4"},
		},
		{
			name:     "empty api type selects openai",
			settings: Settings{Model: "gpt-4", OpenAIAPIURL: "http://localhost:8080", OpenAIAPIKey: "sk-x"},
			want:     ProviderConfig{Provider: ai.ProviderOpenAI, EndpointURL: "http://localhost:8080", APIKey: "sk-x", ModelID: "gpt-4"},
		},
		{
			name:     "complete gemini needs no url",
			settings: Settings{APIType: "gemini", Model: "gemini-pro", GeminiAPIKey: "g-key", SystemPrompt: " be brief "},
			want:     ProviderConfig{Provider: ai.ProviderGemini, APIKey: "g-key", ModelID: "gemini-pro", SystemPrompt: "be brief"},
		},
		{
			name:     "gemini ignores openai key",
			settings: Settings{APIType: "gemini", Model: "gemini-pro", OpenAIAPIKey: "sk-x"},
			missing:  []string{KeyGeminiAPIKey},
		},
		{
			name:     "blank values count as missing",
			settings: Settings{APIType: "openai", Model: "  ", OpenAIAPIURL: "\t", OpenAIAPIKey: ""},
			missing:  []string{KeyModel, KeyOpenAIAPIURL, KeyOpenAIAPIKey},
		},
		{
			name:     "unknown api type",
			settings: Settings{APIType: "anthropic", Model: "claude"},
			missing:  []string{KeyAPIType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.settings)
			if tt.missing == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var incomplete *IncompleteError
			require.ErrorAs(t, err, &incomplete)
			assert.Equal(t, tt.missing, incomplete.Missing)
			assert.Equal(t, ProviderConfig{}, got)
		})
	}
}

func TestValidateDiscovery_AllowsMissingModel(t *testing.T) {
	config, err := ValidateDiscovery(Settings{APIType: "gemini", GeminiAPIKey: "g-key"})
	require.NoError(t, err)
	assert.Equal(t, ai.ProviderGemini, config.Provider)
	assert.Empty(t, config.ModelID)

	_, err = ValidateDiscovery(Settings{APIType: "openai", OpenAIAPIKey: "sk-x"})
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{KeyOpenAIAPIURL}, incomplete.Missing)
}

func TestSettings_GetSet(t *testing.T) {
	var s Settings

	require.NoError(t, s.Set("APITYPE", " gemini "))
	require.NoError(t, s.Set(KeySystemPrompt, "  keep spacing "))
	assert.Equal(t, "gemini", s.APIType)
	assert.Equal(t, "  keep spacing ", s.SystemPrompt)

	value, err := s.Get("apiType")
	require.NoError(t, err)
	assert.Equal(t, "gemini", value)

	err = s.Set("theme", "dark")
	assert.ErrorIs(t, err, ErrUnknownKey)
	_, err = s.Get("theme")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestSettings_Redacted(t *testing.T) {
	s := Settings{OpenAIAPIKey: "sk-1234567890abcd", GeminiAPIKey: "short"}
	redacted := s.Redacted()

	assert.Equal(t, "****abcd", redacted.OpenAIAPIKey)
	assert.Equal(t, "****", redacted.GeminiAPIKey)
	assert.Equal(t, "sk-1234567890abcd", s.OpenAIAPIKey, "original must be untouched")
	assert.True(t, IsSecret("OPENAIAPIKEY"))
	assert.False(t, IsSecret(KeyModel))
}
