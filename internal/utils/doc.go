// Package utils provides shared low-level helpers used by the providers and
// the session: HTTP helpers for streaming POST and JSON GET requests with
// readable status errors, lenient JSON parsing, string truncation for log
// previews, and a simple elapsed-time timer.
//
// Key entry points: [DoPostStream] opens a streaming response body,
// [DoGet] fetches a JSON document, [ParseStringAs] parses (and repairs)
// loosely formatted JSON, and [Timer] measures latency.
package utils
