// Package ai defines the provider-agnostic types shared by the OpenAI-style
// and Gemini backends. Each backend maps [ChatRequest] to its own wire format
// and normalizes its stream into [StreamEvent] values: content events append
// to the reply, snapshot events replace it. [Accumulator] applies that rule and
// [ChatStream] exposes the events as a range-over-func iterator.
//
// Failures are classified with the sentinels in errors.go so callers can use
// errors.Is regardless of the backend.
package ai
