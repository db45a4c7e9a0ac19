package openai

import "github.com/leofalp/duochat/providers/ai"

/*
	CHAT COMPLETIONS STREAMING API

	Request body and the chunk shape returned by /v1/chat/completions when
	stream=true. Every field of a chunk is optional: a chunk may carry only a
	role, only content, only a finish reason or only usage.
*/

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// chatCompletionStreamChunk represents a single frame from the streaming
// chat completions endpoint.
type chatCompletionStreamChunk struct {
	ID      string         `json:"id,omitempty"`
	Model   string         `json:"model,omitempty"`
	Choices []streamChoice `json:"choices"`
	Usage   *chatUsage     `json:"usage,omitempty"` // final chunk, when the server reports it
}

type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"` // nil until the final chunk for this choice
}

type streamDelta struct {
	Role    *string `json:"role,omitempty"`
	Content *string `json:"content,omitempty"` // nil distinguishes absent from empty
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// requestToChatCompletion builds the wire request. The system prompt, when
// set, is sent as the leading message.
func requestToChatCompletion(request ai.ChatRequest) chatCompletionRequest {
	messages := make([]chatMessage, 0, len(request.Messages)+1)
	if request.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: string(ai.RoleSystem), Content: request.SystemPrompt})
	}
	for _, message := range request.Messages {
		messages = append(messages, chatMessage{Role: string(message.Role), Content: message.Content})
	}
	return chatCompletionRequest{
		Model:    request.Model,
		Messages: messages,
		Stream:   true,
	}
}
