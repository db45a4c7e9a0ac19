// Package settings holds the persisted chat settings and the gate that
// checks them before a request is made.
//
// [Validate] turns a [Settings] snapshot into a [ProviderConfig] or reports
// which keys are missing for the selected provider. It is pure and cheap, so
// callers run it on every submission against the latest stored values rather
// than caching a result.
//
// Two [Store] implementations are provided: [FileStore], a viper-backed file
// with hot reload, and [MemoryStore] for tests and embedders.
package settings
