package settings

import (
	"strings"

	"github.com/leofalp/duochat/providers/ai"
)

// ProviderConfig is a validated view of Settings for one provider.
// EndpointURL is empty for Gemini.
type ProviderConfig struct {
	Provider     ai.ProviderKind
	EndpointURL  string
	APIKey       string
	ModelID      string
	SystemPrompt string
}

// IncompleteError lists the settings keys the selected provider still needs.
type IncompleteError struct {
	Provider ai.ProviderKind
	Missing  []string
}

func (e *IncompleteError) Error() string {
	return ai.ErrConfigIncomplete.Error() + ": missing " + strings.Join(e.Missing, ", ")
}

// Is makes every IncompleteError match ai.ErrConfigIncomplete.
func (e *IncompleteError) Is(target error) bool {
	return target == ai.ErrConfigIncomplete
}

// Validate checks that every key required by the selected provider is set.
// An empty apiType selects OpenAI; an unrecognised one is reported as a
// missing apiType. Blank values count as missing.
func Validate(s Settings) (ProviderConfig, error) {
	kind, ok := ai.ParseProviderKind(s.APIType)
	if !ok {
		return ProviderConfig{}, &IncompleteError{Missing: []string{KeyAPIType}}
	}

	config := ProviderConfig{
		Provider:     kind,
		ModelID:      strings.TrimSpace(s.Model),
		SystemPrompt: strings.TrimSpace(s.SystemPrompt),
	}

	var missing []string
	if config.ModelID == "" {
		missing = append(missing, KeyModel)
	}

	switch kind {
	case ai.ProviderOpenAI:
		config.EndpointURL = strings.TrimSpace(s.OpenAIAPIURL)
		config.APIKey = strings.TrimSpace(s.OpenAIAPIKey)
		if config.EndpointURL == "" {
			missing = append(missing, KeyOpenAIAPIURL)
		}
		if config.APIKey == "" {
			missing = append(missing, KeyOpenAIAPIKey)
		}
	case ai.ProviderGemini:
		config.APIKey = strings.TrimSpace(s.GeminiAPIKey)
		if config.APIKey == "" {
			missing = append(missing, KeyGeminiAPIKey)
		}
	}

	if len(missing) > 0 {
		return ProviderConfig{}, &IncompleteError{Provider: kind, Missing: missing}
	}
	return config, nil
}

// ValidateDiscovery is Validate without the model requirement. Model lists
// are fetched before a model has been chosen.
func ValidateDiscovery(s Settings) (ProviderConfig, error) {
	candidate := s
	if strings.TrimSpace(candidate.Model) == "" {
		candidate.Model = "-"
	}
	config, err := Validate(candidate)
	if err != nil {
		return ProviderConfig{}, err
	}
	config.ModelID = strings.TrimSpace(s.Model)
	return config, nil
}
