// Package errs defines the error types returned to API clients.
//
// Every error that leaves a handler is funneled into an *HTTPError
// by the global error handler, so clients always receive the same
// `{ "error": "..." }` shape.
package errs
