package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jamesprial/mcp-youtube-transcript/internal/mcp"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-youtube-transcript/pkg/oauth"
)

// MaxBodySize bounds request bodies on the protocol and REST endpoints.
const MaxBodySize = 1 << 20

// mcpHandler serves stateless JSON-RPC over POST.
type mcpHandler struct {
	handler mcp.Handler
	logger  *slog.Logger
}

// NewMCPHandler creates a handler for MCP JSON-RPC requests. Notifications
// are acknowledged with 202 and no body.
func NewMCPHandler(handler mcp.Handler, logger *slog.Logger) http.Handler {
	if handler == nil {
		panic("handler cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &mcpHandler{handler: handler, logger: logger}
}

func (h *mcpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req mcp.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
		h.writeResponse(w, &mcp.Response{
			JSONRPC: mcp.JSONRPCVersion,
			Error:   mcp.NewError(mcp.CodeParseError, "Parse error", nil),
		})
		return
	}

	ec := executionContext(r, h.logger)
	resp, err := h.handler.HandleRequest(r.Context(), &req, ec)
	if err != nil {
		ec.Logger.Error("mcp request failed", "method", req.Method, "error", err)
		resp = &mcp.Response{
			JSONRPC: mcp.JSONRPCVersion,
			ID:      req.ID,
			Error:   mcp.NewError(mcp.CodeInternalError, "Internal error", nil),
		}
	}

	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	h.writeResponse(w, resp)
}

// writeResponse sends a JSON-RPC response. Protocol errors still use 200.
func (h *mcpHandler) writeResponse(w http.ResponseWriter, resp *mcp.Response) {
	w.Header().Set(pkgoauth.HeaderContentType, pkgoauth.ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode JSON-RPC response", "error", err)
	}
}

// executionContext builds the per-call context from what the middleware
// chain stored on the request.
func executionContext(r *http.Request, logger *slog.Logger) *mcp.ExecutionContext {
	ctx := r.Context()
	auth, ok := transportcore.AuthFromContext(ctx)
	if !ok {
		auth = oauth.AnonymousAuthContext()
	}
	ec := mcp.NewExecutionContext(transportcore.CorrelationIDFromContext(ctx), auth, logger)
	if start := transportcore.StartTimeFromContext(ctx); !start.IsZero() {
		ec.StartTime = start
	}
	return ec
}

// isBodyTooLarge reports whether err came from MaxBytesReader.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
