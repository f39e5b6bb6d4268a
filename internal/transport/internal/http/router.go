package http

import (
	"net/http"
	"sync"

	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

// router implements transportcore.Router using http.ServeMux.
// Middleware wraps the mux as a whole so it also sees unmatched paths.
type router struct {
	mux         *http.ServeMux
	mu          sync.RWMutex
	middlewares []transportcore.Middleware
	handler     http.Handler
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() transportcore.Router {
	mux := http.NewServeMux()
	return &router{
		mux:     mux,
		handler: mux,
	}
}

// Handle registers a handler for the given pattern.
func (r *router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// HandleFunc registers a handler function for the given pattern.
func (r *router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// Use adds middleware around the router.
func (r *router) Use(middlewares ...transportcore.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.middlewares = append(r.middlewares, middlewares...)
	r.handler = chain(r.mux, r.middlewares)
}

// ServeHTTP runs the middleware chain and then the mux.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	h := r.handler
	r.mu.RUnlock()

	h.ServeHTTP(w, req)
}

// Chain wraps handler so that middlewares[0] executes first.
func Chain(handler http.Handler, middlewares ...transportcore.Middleware) http.Handler {
	return chain(handler, middlewares)
}

func chain(handler http.Handler, middlewares []transportcore.Middleware) http.Handler {
	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}
