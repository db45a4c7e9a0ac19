// Package middleware provides stream middleware for [session.Session].
// Each constructor returns a [session.StreamMiddleware] ready to be passed to
// [session.WithMiddleware].
//
//   - [NewTimeoutMiddleware] puts a deadline on the whole stream, from
//     request to last event.
//   - [NewLoggingMiddleware] emits slog records when a stream starts, ends,
//     fails or is abandoned.
//
// Middlewares run outermost-first:
//
//	s := session.New(store, session.WithMiddleware(
//	    middleware.NewTimeoutMiddleware(2*time.Minute),
//	    middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	))
//
// Here a request passes Timeout, then Logging, then reaches the provider.
package middleware
