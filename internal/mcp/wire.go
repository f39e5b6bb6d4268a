package mcp

import "github.com/jamesprial/mcp-youtube-transcript/internal/metrics"

// DefaultServerName is reported in the initialize result.
const DefaultServerName = "youtube-transcript-server"

// Config holds configuration for MCP services.
type Config struct {
	// ServerName is the name of the MCP server. Defaults to DefaultServerName.
	ServerName string

	// ServerVersion is the version of the MCP server.
	ServerVersion string

	// Metrics records tool invocations. Optional.
	Metrics *metrics.Metrics
}

// NewHandler creates a new MCP protocol handler over tools.
func NewHandler(cfg *Config, tools ToolRegistry) Handler {
	if cfg == nil {
		panic("config cannot be nil")
	}
	name := cfg.ServerName
	if name == "" {
		name = DefaultServerName
	}
	return newHandler(tools, Implementation{Name: name, Version: cfg.ServerVersion})
}

// NewMCPServices creates an empty registry and the handler serving it.
func NewMCPServices(cfg *Config) (Handler, ToolRegistry) {
	if cfg == nil {
		panic("config cannot be nil")
	}
	tools := NewToolRegistry(cfg.Metrics)
	return NewHandler(cfg, tools), tools
}
