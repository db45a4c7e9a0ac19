package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leofalp/duochat/internal/framing"
	"github.com/leofalp/duochat/providers/ai"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

// requestToGemini converts the generic request. Assistant turns become
// "model" turns; the system prompt travels as system_instruction.
func requestToGemini(request ai.ChatRequest) generateContentRequest {
	geminiRequest := generateContentRequest{
		Contents: make([]content, 0, len(request.Messages)),
	}

	for _, message := range request.Messages {
		text := message.Content
		switch message.Role {
		case ai.RoleAssistant:
			geminiRequest.Contents = append(geminiRequest.Contents, content{Role: roleModel, Parts: []part{{Text: &text}}})
		case ai.RoleSystem:
			// Stored history never holds system turns; fold any stray one into the instruction.
			request.SystemPrompt = joinNonEmpty(request.SystemPrompt, text)
		default:
			geminiRequest.Contents = append(geminiRequest.Contents, content{Role: roleUser, Parts: []part{{Text: &text}}})
		}
	}

	if request.SystemPrompt != "" {
		prompt := request.SystemPrompt
		geminiRequest.SystemInstruction = &systemInstruction{Parts: []part{{Text: &prompt}}}
	}
	return geminiRequest
}

// frameToStreamEvents is the delta extractor. It decodes one response object
// into events: the chunk text as a content event, usage, then the finish
// reason. The text is the concatenation of the first candidate's non-thought
// parts; how it folds into the reply is decided by the TextMode. An error
// object is reported as a transport failure.
func frameToStreamEvents(frame framing.Frame) ([]ai.StreamEvent, error) {
	var response generateContentResponse
	if err := json.Unmarshal(frame.Payload, &response); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrFrameDecode, err)
	}

	if response.Error != nil {
		return nil, &ai.TransportError{
			StatusCode: response.Error.Code,
			Message:    strings.TrimSpace(response.Error.Status + " " + response.Error.Message),
		}
	}

	var events []ai.StreamEvent
	var finishReason string
	if len(response.Candidates) > 0 {
		candidate := response.Candidates[0]
		if text := candidateText(candidate); text != "" {
			events = append(events, ai.StreamEvent{Type: ai.StreamEventContent, Content: text})
		}
		finishReason = candidate.FinishReason
	} else if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
		finishReason = "SAFETY"
	}

	if response.UsageMetadata != nil {
		events = append(events, ai.StreamEvent{
			Type: ai.StreamEventUsage,
			Usage: &ai.Usage{
				PromptTokens:     response.UsageMetadata.PromptTokenCount,
				CompletionTokens: response.UsageMetadata.CandidatesTokenCount,
				TotalTokens:      response.UsageMetadata.TotalTokenCount,
			},
		})
	}

	if finishReason != "" {
		events = append(events, ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: mapFinishReason(finishReason)})
	}
	return events, nil
}

func candidateText(c candidate) string {
	if c.Content == nil {
		return ""
	}
	var builder strings.Builder
	for _, p := range c.Content.Parts {
		if p.Thought || p.Text == nil {
			continue
		}
		builder.WriteString(*p.Text)
	}
	return builder.String()
}

// mapFinishReason converts Gemini finish reasons to the OpenAI vocabulary.
func mapFinishReason(geminiReason string) string {
	switch geminiReason {
	case "MAX_TOKENS":
		return "length"
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return "content_filter"
	default:
		return "stop"
	}
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n\n" + b
	}
}
