package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	internalerrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
)

// registeredTool pairs a tool with its compiled input schema.
type registeredTool struct {
	tool   Tool
	schema *gojsonschema.Schema
}

// toolRegistry implements ToolRegistry with thread-safe access.
// Tools are kept in registration order.
type toolRegistry struct {
	mu      sync.RWMutex
	ordered []*registeredTool
	byName  map[string]*registeredTool
	metrics *metrics.Metrics
}

// NewToolRegistry creates a new thread-safe tool registry. m may be nil.
func NewToolRegistry(m *metrics.Metrics) ToolRegistry {
	return &toolRegistry{
		byName:  make(map[string]*registeredTool),
		metrics: m,
	}
}

// Register validates and adds a tool.
func (r *toolRegistry) Register(tool Tool) error {
	if tool.Name == "" || tool.Description == "" {
		return internalerrors.New("mcp", "Register", internalerrors.ErrBadRequest, ErrInvalidTool).
			WithContext("tool_name", tool.Name)
	}
	if tool.Handler == nil {
		return internalerrors.New("mcp", "Register", internalerrors.ErrBadRequest, ErrMissingHandler).
			WithContext("tool_name", tool.Name)
	}

	schema, err := compileSchema(tool.InputSchema)
	if err != nil {
		return internalerrors.New("mcp", "Register", internalerrors.ErrBadRequest,
			fmt.Errorf("%w: %v", ErrInvalidSchema, err)).
			WithContext("tool_name", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[tool.Name]; exists {
		return internalerrors.New("mcp", "Register", internalerrors.ErrBadRequest, ErrDuplicateName).
			WithContext("tool_name", tool.Name)
	}

	entry := &registeredTool{tool: tool, schema: schema}
	r.ordered = append(r.ordered, entry)
	r.byName[tool.Name] = entry
	return nil
}

// compileSchema checks that raw is a JSON Schema describing an object.
func compileSchema(raw map[string]any) (*gojsonschema.Schema, error) {
	if raw == nil {
		return nil, errors.New("schema is nil")
	}
	if typ, _ := raw["type"].(string); typ != "object" {
		return nil, fmt.Errorf("top-level type must be \"object\", got %v", raw["type"])
	}

	schemaBytes, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
}

// List returns definitions for all registered tools in registration order.
// The returned slice is a snapshot and safe for concurrent access.
func (r *toolRegistry) List() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	definitions := make([]ToolDefinition, 0, len(r.ordered))
	for _, entry := range r.ordered {
		definitions = append(definitions, entry.tool.Definition())
	}
	return definitions
}

// Names returns registered tool names in registration order.
func (r *toolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ordered))
	for _, entry := range r.ordered {
		names = append(names, entry.tool.Name)
	}
	return names
}

// Len returns the number of registered tools.
func (r *toolRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// Invoke validates params and runs the named tool.
func (r *toolRegistry) Invoke(ctx context.Context, name string, params map[string]any, ec *ExecutionContext) (result any, err error) {
	r.mu.RLock()
	entry, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, internalerrors.New("mcp", "Invoke", internalerrors.ErrNotFound, ErrToolNotFound).
			WithCode(internalerrors.CodeToolNotFound).
			WithMessage(fmt.Sprintf("Tool %q is not registered", name)).
			WithContext("tool_name", name)
	}

	if params == nil {
		params = map[string]any{}
	}
	if violations, err := validateParams(entry.schema, params); err != nil {
		return nil, internalerrors.New("mcp", "Invoke", internalerrors.ErrInternal, err).
			WithContext("tool_name", name)
	} else if len(violations) > 0 {
		return nil, internalerrors.New("mcp", "Invoke", internalerrors.ErrBadRequest, ErrInvalidParams).
			WithCode(internalerrors.CodeInvalidInput).
			WithContext(internalerrors.ContextViolations, violations).
			WithContext("tool_name", name)
	}

	if ec == nil {
		ec = NewExecutionContext("", nil, nil)
	}
	toolEC := *ec
	if toolEC.Logger == nil {
		toolEC.Logger = discardLogger()
	}
	toolEC.Logger = toolEC.Logger.With("tool", name)

	start := time.Now()
	toolEC.Logger.Info("tool invocation started")

	defer func() {
		if rec := recover(); rec != nil {
			toolEC.Logger.Error("tool handler panicked", "panic", rec, "stack", string(debug.Stack()))
			result = nil
			err = internalerrors.New("mcp", "Invoke", internalerrors.ErrInternal,
				fmt.Errorf("%w: %v", ErrToolPanicked, rec)).
				WithCode(internalerrors.CodeInternalError).
				WithContext("tool_name", name)
		}

		elapsed := time.Since(start)
		code := "ok"
		if err != nil {
			code = internalerrors.Code(err)
			toolEC.Logger.Warn("tool invocation failed",
				"error_code", code, "duration_ms", elapsed.Milliseconds(), "error", err)
		} else {
			toolEC.Logger.Info("tool invocation finished", "duration_ms", elapsed.Milliseconds())
		}
		r.metrics.ToolInvocation(name, code, elapsed)
	}()

	result, err = entry.tool.Handler(ctx, params, &toolEC)
	if err != nil {
		if _, isDomain := internalerrors.As(err); !isDomain {
			err = internalerrors.New("mcp", "Invoke", internalerrors.ErrInternal, err).
				WithContext("tool_name", name)
		}
		return nil, err
	}
	return result, nil
}

// validateParams returns one "field: description" line per schema violation,
// sorted for stable output.
func validateParams(schema *gojsonschema.Schema, params map[string]any) ([]string, error) {
	paramBytes, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(paramBytes))
	if err != nil {
		return nil, fmt.Errorf("validate params: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	sort.Strings(violations)
	return violations, nil
}
