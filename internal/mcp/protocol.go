package mcp

// InitializeParams contains parameters for the initialize method.
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ClientInfo      Implementation `json:"clientInfo"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
}

// Implementation names a protocol peer.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult is the result of the initialize method.
type InitializeResult struct {
	// ProtocolVersion is the MCP protocol version the server speaks,
	// regardless of what the client asked for.
	ProtocolVersion string         `json:"protocolVersion"`
	ServerInfo      Implementation `json:"serverInfo"`
	Capabilities    Capabilities   `json:"capabilities"`
	Instructions    string         `json:"instructions,omitempty"`
}

// Capabilities describes what the MCP server supports. Only tools are offered.
type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability indicates tools support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ToolsListResult is the result of the tools/list method.
type ToolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}

// ToolsCallParams contains parameters for the tools/call method.
type ToolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolsCallResult is the result of the tools/call method.
type ToolsCallResult struct {
	Content []Content `json:"content"`

	// IsError marks a tool-level failure reported as content rather than
	// as a JSON-RPC error.
	IsError bool `json:"isError,omitempty"`
}

// Content represents a piece of content in a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextContent wraps text as a single content item.
func TextContent(text string) []Content {
	return []Content{{Type: "text", Text: text}}
}
