package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jamesprial/mcp-youtube-transcript/internal/config"
	"github.com/jamesprial/mcp-youtube-transcript/internal/mcp"
	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth/oautherr"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/internal/mocks"
)

func testServerConfig(enabled bool) *config.Config {
	return &config.Config{
		Host:           "127.0.0.1",
		MCPPort:        8080,
		RESTPort:       8081,
		BaseURL:        "http://localhost:8080",
		Environment:    "test",
		OAuthEnabled:   enabled,
		IssuerURL:      "https://auth.example.com",
		AuthServerURL:  "https://auth.example.com",
		RequiredScopes: []string{"transcripts:read"},
		MetricsEnabled: true,
	}
}

func newTestServices(t *testing.T, enabled bool, validator oauth.TokenValidator) *Services {
	t.Helper()

	handler, tools := mcp.NewMCPServices(&mcp.Config{ServerVersion: "test"})
	err := tools.Register(mcp.Tool{
		Name:        "hello_world",
		Description: "Says hello",
		InputSchema: map[string]any{"type": "object"},
		Handler: func(context.Context, map[string]any, *mcp.ExecutionContext) (any, error) {
			return "hello world", nil
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	svc, err := NewTransportServices(&Config{
		Server:  testServerConfig(enabled),
		Version: "1.0.0",
		OAuth: &oauth.Services{
			Validator: validator,
			Metadata:  &mocks.MetadataService{},
			Scopes:    oauth.NewScopeChecker(),
			Discovery: &mocks.DiscoveryService{},
		},
		MCPHandler: handler,
		Tools:      tools,
		Metrics:    metrics.New(),
	})
	if err != nil {
		t.Fatalf("NewTransportServices() error = %v", err)
	}
	return svc
}

func serve(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewTransportServices_Validation(t *testing.T) {
	t.Parallel()

	handler, tools := mcp.NewMCPServices(&mcp.Config{})
	services := &oauth.Services{Metadata: &mocks.MetadataService{}}

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"nil server", &Config{OAuth: services, MCPHandler: handler, Tools: tools}},
		{"nil oauth", &Config{Server: testServerConfig(false), MCPHandler: handler, Tools: tools}},
		{"enabled without validator", &Config{Server: testServerConfig(true), OAuth: services, MCPHandler: handler, Tools: tools}},
		{"nil handler", &Config{Server: testServerConfig(false), OAuth: services, Tools: tools}},
		{"nil tools", &Config{Server: testServerConfig(false), OAuth: services, MCPHandler: handler}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewTransportServices(tt.cfg); err == nil {
				t.Error("NewTransportServices() error = nil, want error")
			}
		})
	}
}

func TestTransport_Routes(t *testing.T) {
	t.Parallel()

	validator := &mocks.TokenValidator{ValidateFunc: func(_ context.Context, token string) (*oauth.AuthContext, error) {
		switch token {
		case "reader":
			return &oauth.AuthContext{Subject: "alice", Scopes: []string{"transcripts:read"}, TokenHash: oauth.HashToken(token)}, nil
		case "noscope":
			return &oauth.AuthContext{Subject: "bob", TokenHash: oauth.HashToken(token)}, nil
		}
		return nil, oautherr.NewInvalidTokenError("ValidateToken", oautherr.ReasonBadSignature, errors.New("bad"))
	}}
	svc := newTestServices(t, true, validator)

	tests := []struct {
		name       string
		router     http.Handler
		method     string
		path       string
		token      string
		body       string
		wantStatus int
		wantInBody string
	}{
		{"health open on mcp", svc.MCPRouter, http.MethodGet, "/health", "", "", http.StatusOK, `"registered_tools":["hello_world"]`},
		{"health open on rest", svc.RESTRouter, http.MethodGet, "/health", "", "", http.StatusOK, `"status":"healthy"`},
		{"metadata open", svc.MCPRouter, http.MethodGet, "/.well-known/oauth-protected-resource", "", "", http.StatusOK, ""},
		{"discovery open", svc.RESTRouter, http.MethodGet, "/.well-known/oauth-authorization-server", "", "", http.StatusOK, `"issuer"`},
		{"register open", svc.MCPRouter, http.MethodPost, "/register", "", "{}", http.StatusOK, "registration_acknowledged"},
		{"metrics open", svc.MCPRouter, http.MethodGet, "/metrics", "", "", http.StatusOK, ""},
		{"mcp needs token", svc.MCPRouter, http.MethodPost, "/mcp", "", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, http.StatusUnauthorized, "missing_token"},
		{"mcp bad token", svc.MCPRouter, http.MethodPost, "/mcp", "forged", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, http.StatusUnauthorized, "bad_signature"},
		{"mcp missing scope", svc.MCPRouter, http.MethodPost, "/mcp", "noscope", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, http.StatusForbidden, "insufficient_scope"},
		{"mcp ping", svc.MCPRouter, http.MethodPost, "/mcp", "reader", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, http.StatusOK, `"result":{}`},
		{"mcp get not allowed", svc.MCPRouter, http.MethodGet, "/mcp", "reader", "", http.StatusMethodNotAllowed, ""},
		{"rest list", svc.RESTRouter, http.MethodGet, "/tools/list", "noscope", "", http.StatusOK, `"name":"hello_world"`},
		{"rest invoke", svc.RESTRouter, http.MethodPost, "/tools/invoke", "reader", `{"tool_name":"hello_world","parameters":{}}`, http.StatusOK, `"result":"hello world"`},
		{"rest invoke missing scope", svc.RESTRouter, http.MethodPost, "/tools/invoke", "noscope", `{"tool_name":"hello_world"}`, http.StatusForbidden, ""},
		{"rest has no mcp", svc.RESTRouter, http.MethodPost, "/mcp", "reader", "{}", http.StatusNotFound, ""},
		{"unknown path still authenticates", svc.RESTRouter, http.MethodGet, "/nope", "", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := serve(tt.router, tt.method, tt.path, tt.token, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantInBody != "" && !strings.Contains(w.Body.String(), tt.wantInBody) {
				t.Errorf("body = %s, want it to contain %s", w.Body.String(), tt.wantInBody)
			}
			if w.Header().Get("X-Correlation-ID") == "" {
				t.Error("X-Correlation-ID header missing")
			}
		})
	}
}

func TestTransport_HealthNeverValidates(t *testing.T) {
	t.Parallel()

	validator := &mocks.TokenValidator{}
	svc := newTestServices(t, true, validator)

	for i := 0; i < 5; i++ {
		serve(svc.MCPRouter, http.MethodGet, "/health", "whatever", "")
		serve(svc.RESTRouter, http.MethodGet, "/health", "", "")
	}
	if validator.Calls() != 0 {
		t.Errorf("validator calls = %d, want 0", validator.Calls())
	}
}

func TestTransport_Disabled(t *testing.T) {
	t.Parallel()

	svc := newTestServices(t, false, nil)

	w := serve(svc.RESTRouter, http.MethodPost, "/tools/invoke", "", `{"tool_name":"hello_world","parameters":{}}`)
	if w.Code != http.StatusOK {
		t.Errorf("invoke without token status = %d, want 200: %s", w.Code, w.Body.String())
	}

	w = serve(svc.MCPRouter, http.MethodGet, "/.well-known/oauth-authorization-server", "", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("discovery status = %d, want 404 when authentication is disabled", w.Code)
	}
}

func TestTransport_PreflightSkipsAuth(t *testing.T) {
	t.Parallel()

	validator := &mocks.TokenValidator{}
	svc := newTestServices(t, true, validator)

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	svc.MCPRouter.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
	if validator.Calls() != 0 {
		t.Errorf("validator calls = %d, want 0", validator.Calls())
	}
}
