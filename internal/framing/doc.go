// Package framing turns raw response body chunks into provider frames.
//
// Two decoders are provided. [LineDecoder] handles newline-terminated
// "data:" lines, used by OpenAI-compatible endpoints and by Gemini when
// alt=sse is requested. [ObjectDecoder] handles Gemini's default format, a
// sequence of JSON objects with no reliable delimiter between them.
//
// [Read] drives a decoder over an io.Reader and exposes the frames as a lazy
// iterator. Each Read on the body is one chunk; chunk boundaries are
// arbitrary and never change the resulting frame sequence.
package framing
