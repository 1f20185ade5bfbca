// Package server provides HTTP routing, middleware, and the JSON API served by `reminis serve`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] added first is outermost and sees the request first.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method patterns ("GET /photos/{id}").
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Photo API
//
// [PhotoHandler] exposes the photo journal:
//
//	GET    /photos               list, newest first
//	POST   /photos               capture (multipart "photo" file, optional "latitude"/"longitude")
//	GET    /photos/{id}          one record
//	DELETE /photos/{id}          delete record and image
//	GET    /photos/{id}/image    the stored JPEG
//	POST   /photos/{id}/gallery  export into the media library
//	GET    /clusters             located photos grouped for a map
//	GET    /health               liveness and collection size
//
// Errors are JSON objects of the form {"error": "..."}.
//
// # Middleware
//
// [NewRouter] installs [RequestID], [Logging] and [Recover] in that order. A panicking handler becomes a 500.
package server
