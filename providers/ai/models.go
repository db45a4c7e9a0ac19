package ai

import "strings"

// ProviderKind selects one of the two supported wire protocols.
type ProviderKind string

const (
	// ProviderOpenAI is any OpenAI-compatible chat-completions endpoint.
	ProviderOpenAI ProviderKind = "openai"
	// ProviderGemini is the Google Gemini generateContent API.
	ProviderGemini ProviderKind = "gemini"
)

// ParseProviderKind maps a stored apiType value to a ProviderKind. An empty
// value selects ProviderOpenAI.
func ParseProviderKind(value string) (ProviderKind, bool) {
	switch ProviderKind(strings.ToLower(strings.TrimSpace(value))) {
	case "", ProviderOpenAI:
		return ProviderOpenAI, true
	case ProviderGemini:
		return ProviderGemini, true
	default:
		return "", false
	}
}

// MessageRole is the author of a Message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one role-tagged turn of a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatRequest is everything a provider needs to stream one reply.
// SystemPrompt is sent ahead of Messages when non-empty and is never part of
// the stored history.
type ChatRequest struct {
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Messages     []Message `json:"messages"`
}

// Usage is the token accounting reported by the provider, passed through as-is.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is a fully collected reply.
type ChatResponse struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

// ModelInfo describes one model offered by a provider.
type ModelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}
