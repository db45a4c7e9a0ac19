package settings

import (
	"errors"
	"fmt"
	"strings"
)

// Keys as they appear in the settings file. The first five match the object
// the browser client kept in local storage.
const (
	KeyAPIType      = "apiType"
	KeyModel        = "model"
	KeyOpenAIAPIURL = "openaiApiUrl"
	KeyOpenAIAPIKey = "openaiApiKey"
	KeyGeminiAPIKey = "geminiApiKey"
	KeySystemPrompt = "systemPrompt"
)

// Keys lists every settings key in display order.
var Keys = []string{KeyAPIType, KeyModel, KeyOpenAIAPIURL, KeyOpenAIAPIKey, KeyGeminiAPIKey, KeySystemPrompt}

// ErrUnknownKey is returned by Get and Set for keys outside Keys.
var ErrUnknownKey = errors.New("unknown settings key")

// Settings is the persisted key-value object. Empty fields are unset.
type Settings struct {
	APIType      string `mapstructure:"apiType" json:"apiType"`
	Model        string `mapstructure:"model" json:"model"`
	OpenAIAPIURL string `mapstructure:"openaiApiUrl" json:"openaiApiUrl"`
	OpenAIAPIKey string `mapstructure:"openaiApiKey" json:"openaiApiKey"`
	GeminiAPIKey string `mapstructure:"geminiApiKey" json:"geminiApiKey"`
	SystemPrompt string `mapstructure:"systemPrompt" json:"systemPrompt,omitempty"`
}

// field returns a pointer to the field stored under key, matched
// case-insensitively.
func (s *Settings) field(key string) (*string, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case strings.ToLower(KeyAPIType):
		return &s.APIType, nil
	case strings.ToLower(KeyModel):
		return &s.Model, nil
	case strings.ToLower(KeyOpenAIAPIURL):
		return &s.OpenAIAPIURL, nil
	case strings.ToLower(KeyOpenAIAPIKey):
		return &s.OpenAIAPIKey, nil
	case strings.ToLower(KeyGeminiAPIKey):
		return &s.GeminiAPIKey, nil
	case strings.ToLower(KeySystemPrompt):
		return &s.SystemPrompt, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
}

// Get returns the value stored under key.
func (s Settings) Get(key string) (string, error) {
	ptr, err := s.field(key)
	if err != nil {
		return "", err
	}
	return *ptr, nil
}

// Set stores value under key. Surrounding whitespace is trimmed except for
// the system prompt, which is kept verbatim.
func (s *Settings) Set(key, value string) error {
	ptr, err := s.field(key)
	if err != nil {
		return err
	}
	if ptr != &s.SystemPrompt {
		value = strings.TrimSpace(value)
	}
	*ptr = value
	return nil
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case strings.ToLower(KeyOpenAIAPIKey), strings.ToLower(KeyGeminiAPIKey):
		return true
	}
	return false
}

// Redacted returns a copy with API keys masked, for display.
func (s Settings) Redacted() Settings {
	s.OpenAIAPIKey = mask(s.OpenAIAPIKey)
	s.GeminiAPIKey = mask(s.GeminiAPIKey)
	return s
}

// mask keeps the last four characters of keys long enough to stay unguessable.
func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
