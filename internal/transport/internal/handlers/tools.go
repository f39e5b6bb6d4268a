package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	internalerrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/mcp"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-youtube-transcript/pkg/oauth"
)

// InvokeRequest is the body of POST /tools/invoke.
type InvokeRequest struct {
	ToolName   string         `json:"tool_name"`
	Parameters map[string]any `json:"parameters"`
	Context    *InvokeContext `json:"context,omitempty"`
}

// InvokeContext carries caller supplied request metadata.
type InvokeContext struct {
	CorrelationID string `json:"correlation_id,omitempty"`
}

// NewToolsListHandler serves GET /tools/list as a JSON array of definitions.
func NewToolsListHandler(tools mcp.ToolRegistry, responder transportcore.Responder) http.Handler {
	if tools == nil {
		panic("tool registry cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		responder.JSON(w, http.StatusOK, tools.List())
	})
}

type toolsInvokeHandler struct {
	tools     mcp.ToolRegistry
	responder transportcore.Responder
	logger    *slog.Logger
}

// NewToolsInvokeHandler serves POST /tools/invoke with success and error
// envelopes.
func NewToolsInvokeHandler(tools mcp.ToolRegistry, responder transportcore.Responder, logger *slog.Logger) http.Handler {
	if tools == nil {
		panic("tool registry cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &toolsInvokeHandler{tools: tools, responder: responder, logger: logger}
}

func (h *toolsInvokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var body InvokeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&body); err != nil {
		msg := "request body must be a JSON object"
		if isBodyTooLarge(err) {
			msg = "request body is too large"
		}
		h.responder.Error(w, r, invalidRequest(err, msg))
		return
	}
	if body.ToolName == "" {
		h.responder.Error(w, r, invalidRequest(transportcore.ErrInvalidBody, "tool_name is required"))
		return
	}

	if body.Context != nil && body.Context.CorrelationID != "" {
		r = r.WithContext(transportcore.ContextWithCorrelationID(r.Context(), body.Context.CorrelationID))
		w.Header().Set(pkgoauth.HeaderCorrelationID, body.Context.CorrelationID)
	}

	ec := executionContext(r, h.logger)
	result, err := h.tools.Invoke(r.Context(), body.ToolName, body.Parameters, ec)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.Success(w, r, result)
}

func invalidRequest(cause error, msg string) error {
	return internalerrors.New("transport", "invokeTool", internalerrors.ErrBadRequest, cause).
		WithCode(internalerrors.CodeInvalidRequest).
		WithMessage(msg)
}
