// Package session drives one conversation: it validates settings, records
// turns, streams replies and commits them.
//
// A [Session] runs at most one exchange at a time. [Session.Submit] returns
// once the user turn is recorded and the request is underway; the reply is
// streamed on a background goroutine and reported to the [Renderer] as a
// series of [Update] values carrying the full reply so far. When the stream
// ends the reply is committed as an assistant turn, or the exchange fails
// and the history keeps only the user turn.
//
// [Session.NewChat] abandons the running exchange, clears the history and
// resets the session to [StateIdle]. Nothing from an abandoned exchange is
// rendered or committed afterwards.
//
// Requests pass through a chain of [StreamMiddleware]; ready-made timeout and
// logging middleware live in the middleware subpackage.
package session
