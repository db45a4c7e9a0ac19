// Package openai implements the chat backend for OpenAI-compatible endpoints.
//
// Requests go to {baseURL}/v1/chat/completions with stream=true. The
// response is read as newline-terminated "data:" frames ending with the
// [DONE] sentinel; each frame's choices[0].delta.content is appended to the
// reply. Frames that are not valid JSON are skipped and reported through the
// observer in the request context.
//
// The main entry point is [New]. Model discovery ([OpenAIProvider.ListModels])
// uses the go-openai client against the same base URL.
package openai
