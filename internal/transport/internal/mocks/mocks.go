// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"sync/atomic"

	"github.com/jamesprial/mcp-youtube-transcript/internal/mcp"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
)

// TokenValidator is a mock implementation of oauth.TokenValidator.
type TokenValidator struct {
	ValidateFunc func(ctx context.Context, token string) (*oauth.AuthContext, error)

	calls atomic.Int64
}

// ValidateToken calls the mock ValidateFunc.
func (m *TokenValidator) ValidateToken(ctx context.Context, token string) (*oauth.AuthContext, error) {
	m.calls.Add(1)
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, token)
	}
	return &oauth.AuthContext{Subject: "user", TokenHash: oauth.HashToken(token)}, nil
}

// Calls returns how many times ValidateToken ran.
func (m *TokenValidator) Calls() int {
	return int(m.calls.Load())
}

// MetadataService is a mock implementation of oauth.MetadataService.
type MetadataService struct {
	GetMetadataFunc    func(ctx context.Context) (*oauth.ProtectedResourceMetadata, error)
	GetMetadataURLFunc func() string
}

// GetMetadata calls the mock GetMetadataFunc.
func (m *MetadataService) GetMetadata(ctx context.Context) (*oauth.ProtectedResourceMetadata, error) {
	if m.GetMetadataFunc != nil {
		return m.GetMetadataFunc(ctx)
	}
	return &oauth.ProtectedResourceMetadata{}, nil
}

// GetMetadataURL calls the mock GetMetadataURLFunc.
func (m *MetadataService) GetMetadataURL() string {
	if m.GetMetadataURLFunc != nil {
		return m.GetMetadataURLFunc()
	}
	return "https://example.com/.well-known/oauth-protected-resource"
}

// DiscoveryService is a mock implementation of oauth.DiscoveryService.
type DiscoveryService struct {
	MetadataFunc func(ctx context.Context) (map[string]any, error)
}

// Metadata calls the mock MetadataFunc.
func (m *DiscoveryService) Metadata(ctx context.Context) (map[string]any, error) {
	if m.MetadataFunc != nil {
		return m.MetadataFunc(ctx)
	}
	return map[string]any{"issuer": "https://auth.example.com"}, nil
}

// MCPHandler is a mock implementation of mcp.Handler.
type MCPHandler struct {
	HandleFunc func(ctx context.Context, req *mcp.Request, ec *mcp.ExecutionContext) (*mcp.Response, error)
}

// HandleRequest calls the mock HandleFunc.
func (m *MCPHandler) HandleRequest(ctx context.Context, req *mcp.Request, ec *mcp.ExecutionContext) (*mcp.Response, error) {
	if m.HandleFunc != nil {
		return m.HandleFunc(ctx, req, ec)
	}
	if req.IsNotification() {
		return nil, nil
	}
	return &mcp.Response{
		JSONRPC: mcp.JSONRPCVersion,
		ID:      req.ID,
		Result:  struct{}{},
	}, nil
}
