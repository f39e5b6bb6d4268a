// Package mcp provides the Model Context Protocol (MCP) server side: a
// stateless JSON-RPC 2.0 handler and the tool registry both HTTP surfaces
// invoke tools through.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
)

// Handler processes MCP protocol requests.
type Handler interface {
	// HandleRequest processes one JSON-RPC request. Notifications yield a
	// nil response, which the transport answers with 202 Accepted.
	//
	// Protocol and tool failures are reported inside the Response; the
	// returned error is reserved for failures to produce any response.
	HandleRequest(ctx context.Context, req *Request, ec *ExecutionContext) (*Response, error)
}

// Request represents an MCP JSON-RPC 2.0 request.
type Request struct {
	// JSONRPC is the JSON-RPC version, must be "2.0".
	JSONRPC string `json:"jsonrpc"`

	// ID is the request identifier, can be string, number, or null.
	// Omitted for notification requests.
	ID any `json:"id,omitempty"`

	// Method is the MCP method name to invoke.
	Method string `json:"method"`

	// Params contains method-specific parameters as raw JSON.
	Params json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// Response represents an MCP JSON-RPC 2.0 response.
type Response struct {
	// JSONRPC is the JSON-RPC version, always "2.0".
	JSONRPC string `json:"jsonrpc"`

	// ID matches the request ID, or null for error responses without a valid ID.
	ID any `json:"id"`

	// Result contains the successful response data.
	Result any `json:"result,omitempty"`

	// Error contains error information if the request failed.
	Error *Error `json:"error,omitempty"`
}

// IsError returns true if the response contains an error.
func (r *Response) IsError() bool {
	return r.Error != nil
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// NewError creates a new Error with the given code, message, and optional data.
func NewError(code int, message string, data any) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}

// Protocol constants
const (
	// ProtocolVersion is the MCP protocol version this implementation supports.
	ProtocolVersion = "2024-11-05"

	// JSONRPCVersion is the JSON-RPC version used by MCP.
	JSONRPCVersion = "2.0"
)

// Standard JSON-RPC 2.0 error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// CodeToolNotFound is the MCP-specific code for an unknown tool.
const CodeToolNotFound = -32003

// HandlerFunc executes a tool. params have already been validated against
// the tool's input schema.
type HandlerFunc func(ctx context.Context, params map[string]any, ec *ExecutionContext) (any, error)

// Tool is a registrable capability.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     HandlerFunc
}

// Definition returns the tool's manifest.
func (t Tool) Definition() ToolDefinition {
	return ToolDefinition{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
}

// ToolDefinition describes a tool's interface for client discovery.
type ToolDefinition struct {
	// Name is the unique identifier for this tool.
	Name string `json:"name"`

	// Description explains what the tool does.
	Description string `json:"description"`

	// InputSchema is a JSON Schema describing the tool's expected parameters.
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolRegistry is the catalogue of invocable tools.
// Implementations must be safe for concurrent use.
type ToolRegistry interface {
	// Register adds a tool. It fails with ErrInvalidTool, ErrMissingHandler,
	// ErrInvalidSchema or ErrDuplicateName.
	Register(tool Tool) error

	// List returns all tool manifests in registration order.
	List() []ToolDefinition

	// Names returns all tool names in registration order.
	Names() []string

	// Len returns the number of registered tools.
	Len() int

	// Invoke validates params against the tool's schema and runs it.
	// Failures are *errors.DomainError values carrying a public error code.
	Invoke(ctx context.Context, name string, params map[string]any, ec *ExecutionContext) (any, error)
}

// TextResult is implemented by tool results that have a natural plain text
// rendering for protocol clients.
type TextResult interface {
	ContentText() string
}

// ExecutionContext is the per-request state handed to tool handlers.
type ExecutionContext struct {
	CorrelationID string

	// Auth is the authenticated identity, or the anonymous placeholder.
	Auth *oauth.AuthContext

	// Logger is bound with correlation_id.
	Logger *slog.Logger

	StartTime time.Time
}

// NewExecutionContext creates an execution context starting now.
func NewExecutionContext(correlationID string, auth *oauth.AuthContext, logger *slog.Logger) *ExecutionContext {
	if logger == nil {
		logger = discardLogger()
	}
	return &ExecutionContext{
		CorrelationID: correlationID,
		Auth:          auth,
		Logger:        logger.With("correlation_id", correlationID),
		StartTime:     time.Now(),
	}
}

// Elapsed returns the time since the request started.
func (ec *ExecutionContext) Elapsed() time.Duration {
	return time.Since(ec.StartTime)
}

// Subject returns the authenticated subject, or "".
func (ec *ExecutionContext) Subject() string {
	if ec == nil || ec.Auth == nil {
		return ""
	}
	return ec.Auth.Subject
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
