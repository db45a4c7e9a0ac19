// Package gemini implements the chat backend for the Google Gemini API.
//
// Replies are streamed from models/{model}:streamGenerateContent with the API
// key in the query string. By default the body is a sequence of concatenated
// JSON objects decoded with framing.ObjectDecoder; [WithSSE] switches to
// alt=sse line framing. Every chunk's text is folded into a reply snapshot
// according to the [TextMode] and reported as ai.StreamEventSnapshot.
//
// [GeminiProvider.ListModels] keeps only gemini models that support
// generateContent.
package gemini
