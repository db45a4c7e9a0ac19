// Package memory defines the Provider interface for conversation history.
// The history holds only committed user and assistant turns; the system
// prompt is rebuilt from settings for every request and never stored.
// Read methods return errors so that persistent implementations can surface
// failures. The bundled implementation lives in
// [github.com/leofalp/duochat/providers/memory/inmemory].
package memory
