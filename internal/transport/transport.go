package transport

import (
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

// Re-exported from transportcore so callers outside the transport tree need
// only this package.

// Middleware is a function that wraps an http.Handler.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
type Router = transportcore.Router

// AuthMiddleware provides bearer token authentication and scope checks.
type AuthMiddleware = transportcore.AuthMiddleware

// Responder writes JSON responses and the standard envelopes.
type Responder = transportcore.Responder
