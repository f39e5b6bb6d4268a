// Package handlers provides HTTP handlers for the transport layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/jamesprial/mcp-youtube-transcript/internal/mcp"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status          string   `json:"status"`
	Version         string   `json:"version"`
	Environment     string   `json:"environment"`
	Timestamp       string   `json:"timestamp"`
	ToolsLoaded     int      `json:"tools_loaded"`
	RegisteredTools []string `json:"registered_tools"`
}

// HealthOptions configures the health handler.
type HealthOptions struct {
	Version     string
	Environment string
	Tools       mcp.ToolRegistry
	Responder   transportcore.Responder
	Now         func() time.Time
}

type healthHandler struct {
	opts HealthOptions
}

// NewHealthHandler creates a handler for the /health endpoint. It never
// touches the authorization server.
func NewHealthHandler(opts HealthOptions) http.Handler {
	if opts.Responder == nil {
		panic("responder cannot be nil")
	}
	if opts.Tools == nil {
		panic("tool registry cannot be nil")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &healthHandler{opts: opts}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	names := h.opts.Tools.Names()
	h.opts.Responder.JSON(w, http.StatusOK, HealthStatus{
		Status:          "healthy",
		Version:         h.opts.Version,
		Environment:     h.opts.Environment,
		Timestamp:       h.opts.Now().UTC().Format(time.RFC3339),
		ToolsLoaded:     len(names),
		RegisteredTools: names,
	})
}
