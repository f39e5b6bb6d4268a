package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	internalerrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
)

// handler implements the Handler interface. It keeps no per-session state:
// every request is answered on its own, so initialize is informational only.
type handler struct {
	tools      ToolRegistry
	serverInfo Implementation
}

// newHandler creates a new MCP protocol handler.
func newHandler(tools ToolRegistry, info Implementation) Handler {
	if tools == nil {
		panic("tools cannot be nil")
	}
	return &handler{tools: tools, serverInfo: info}
}

// HandleRequest processes an MCP JSON-RPC request.
func (h *handler) HandleRequest(ctx context.Context, req *Request, ec *ExecutionContext) (*Response, error) {
	if req == nil {
		return errorResponse(nil, CodeInvalidRequest, "request cannot be nil", nil), nil
	}

	if req.JSONRPC != JSONRPCVersion {
		return errorResponse(req.ID, CodeInvalidRequest, "invalid jsonrpc version", nil), nil
	}

	if req.Method == "" {
		return errorResponse(req.ID, CodeInvalidRequest, "method is required", nil), nil
	}

	// Notifications are acknowledged without a body.
	if req.IsNotification() || strings.HasPrefix(req.Method, "notifications/") {
		return nil, nil
	}

	switch req.Method {
	case "initialize":
		return h.handleInitialize(req), nil
	case "ping":
		return &Response{JSONRPC: JSONRPCVersion, ID: req.ID, Result: struct{}{}}, nil
	case "tools/list":
		return &Response{
			JSONRPC: JSONRPCVersion,
			ID:      req.ID,
			Result:  ToolsListResult{Tools: h.tools.List()},
		}, nil
	case "tools/call":
		return h.handleToolsCall(ctx, req, ec)
	default:
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method), nil), nil
	}
}

func (h *handler) handleInitialize(req *Request) *Response {
	if len(req.Params) > 0 {
		var params InitializeParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, "invalid initialize params", err.Error())
		}
	}

	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      req.ID,
		Result: InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      h.serverInfo,
			Capabilities:    Capabilities{Tools: &ToolsCapability{}},
		},
	}
}

// handleToolsCall invokes a tool through the registry. Lookup and argument
// failures become JSON-RPC errors; failures inside the tool are reported
// as an isError result so the calling model can read them.
func (h *handler) handleToolsCall(ctx context.Context, req *Request, ec *ExecutionContext) (*Response, error) {
	if len(req.Params) == 0 {
		return errorResponse(req.ID, CodeInvalidParams, "params required", nil), nil
	}

	var params ToolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "invalid tools/call params", err.Error()), nil
	}
	if params.Name == "" {
		return errorResponse(req.ID, CodeInvalidParams, "tool name is required", nil), nil
	}

	out, err := h.tools.Invoke(ctx, params.Name, params.Arguments, ec)
	switch {
	case errors.Is(err, ErrToolNotFound):
		return errorResponse(req.ID, CodeToolNotFound, fmt.Sprintf("tool not found: %s", params.Name), nil), nil
	case errors.Is(err, ErrInvalidParams):
		return errorResponse(req.ID, CodeInvalidParams, internalerrors.Message(err),
			map[string]any{"violations": internalerrors.Violations(err)}), nil
	case err != nil:
		return &Response{
			JSONRPC: JSONRPCVersion,
			ID:      req.ID,
			Result: ToolsCallResult{
				Content: TextContent(fmt.Sprintf("%s: %s", internalerrors.Code(err), internalerrors.Message(err))),
				IsError: true,
			},
		}, nil
	}

	text, err := renderText(out)
	if err != nil {
		return errorResponse(req.ID, CodeInternalError, "failed to encode tool result", nil), nil
	}

	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      req.ID,
		Result:  ToolsCallResult{Content: TextContent(text)},
	}, nil
}

// renderText turns a tool result into the text content shown to clients.
func renderText(v any) (string, error) {
	switch r := v.(type) {
	case TextResult:
		return r.ContentText(), nil
	case string:
		return r, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// errorResponse creates a JSON-RPC error response.
func errorResponse(id any, code int, message string, data any) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   NewError(code, message, data),
	}
}
