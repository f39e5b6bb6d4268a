// Package transportcore provides core types, interfaces, and primitives for the transport layer.
// This package exists to break import cycles between the transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"
)

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Server manages the HTTP server lifecycle.
type Server interface {
	// Start begins serving HTTP requests on the configured address.
	// It blocks until the server stops and returns nil after Shutdown.
	Start() error

	// Shutdown gracefully shuts down the server without interrupting
	// active connections.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	Addr() string
}

// Router handles HTTP request routing and middleware composition.
type Router interface {
	http.Handler

	// Handle registers a handler for the given pattern.
	// The pattern syntax follows http.ServeMux conventions.
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for the given pattern.
	HandleFunc(pattern string, handler http.HandlerFunc)

	// Use wraps the whole router, matched or not, in middleware.
	// The first middleware registered is the outermost.
	Use(middlewares ...Middleware)
}

// AuthMiddleware provides bearer token authentication.
type AuthMiddleware interface {
	// Authenticate evaluates the bypass rules in order, then validates the
	// bearer token and stores the AuthContext in the request context.
	//
	// Rejected credentials get 401 and an unreachable authorization server
	// gets 503, both as error envelopes.
	Authenticate() Middleware

	// RequireScopes checks that the AuthContext grants all scopes.
	// It must run after Authenticate. Returns 403 insufficient_scope.
	RequireScopes(scopes ...string) Middleware
}

// Responder writes JSON responses and the standard envelopes.
type Responder interface {
	// JSON writes v with the given status.
	JSON(w http.ResponseWriter, status int, v any)

	// Success writes a success envelope carrying result.
	Success(w http.ResponseWriter, r *http.Request, result any)

	// Error writes an error envelope with the status, code and message of
	// err. 401 and 403 responses carry a WWW-Authenticate challenge.
	// Internal causes are logged, never sent.
	Error(w http.ResponseWriter, r *http.Request, err error)
}
