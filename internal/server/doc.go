// Package server provides HTTP routing, middleware and the serve loop for the web front end.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("POST /upload"), so requests with
// the wrong method get a 405 from the mux itself.
//
// # Middleware
//
//   - [RequestID] tags each request with an X-Request-Id (generated when the client sends none)
//   - [Logging] writes one line per request through charmbracelet/log
//   - [Recover] turns handler panics into a 500
//
// Prometheus request metrics come from the metrics package and plug in as ordinary [Middleware].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Serving
//
// [Serve] runs an [http.Server] until its context is cancelled and then shuts it down gracefully.
package server
