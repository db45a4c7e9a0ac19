// Package inmemory provides a concurrency-safe, slice-backed implementation
// of [memory.Provider]. The main entry point is [New].
package inmemory
