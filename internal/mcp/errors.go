package mcp

import (
	"errors"
)

// Sentinel errors for MCP operations.
// Registry and handler failures wrap these in a DomainError from internal/errors.
var (
	// ErrInvalidTool indicates a tool without a name or description.
	ErrInvalidTool = errors.New("invalid tool")

	// ErrDuplicateName indicates a tool with the same name is already registered.
	ErrDuplicateName = errors.New("duplicate tool name")

	// ErrInvalidSchema indicates a tool input schema that is not a usable JSON Schema object.
	ErrInvalidSchema = errors.New("invalid input schema")

	// ErrMissingHandler indicates a tool registered without a handler.
	ErrMissingHandler = errors.New("missing handler")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidParams indicates tool parameters failed schema validation.
	ErrInvalidParams = errors.New("invalid params")

	// ErrToolPanicked indicates a tool handler panicked.
	ErrToolPanicked = errors.New("tool handler panicked")
)
