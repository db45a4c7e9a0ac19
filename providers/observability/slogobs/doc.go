// Package slogobs provides an observability.Provider implementation backed by
// the standard library log/slog package. Spans, counters and histograms are
// rendered as debug records through a configurable handler that emits
// compact, pretty, or JSON output.
// The main entry point is [New]; output format and log level can be tuned with
// [WithFormat], [WithLevel], [WithOutput], [WithColors], and [WithLogger].
package slogobs
