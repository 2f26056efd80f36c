// Package server provides HTTP routing, middleware, and the web surface of the film cache.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Film Handler
//
// [FilmHandler] serves the cached watchlist:
//
//	GET  /            → server-rendered watchlist page
//	GET  /health      → liveness probe
//	GET  /api/films   → cached films as JSON, with count and refresh state
//	POST /api/refresh → launch a background refresh cycle
//
// The refresh trigger is fire-and-forget: the handler returns started or
// already_running immediately and the cycle runs detached from the request.
// The page and the films API always read the cache; they never call the
// upstream sources directly.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
