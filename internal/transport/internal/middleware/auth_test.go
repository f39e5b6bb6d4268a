package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	internalerrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth/oautherr"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/internal/mocks"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

func TestBypassRule_Matches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rule BypassRule
		path string
		want bool
	}{
		{BypassRule{Path: "/health"}, "/health", true},
		{BypassRule{Path: "/health"}, "/health/live", false},
		{BypassRule{Path: "/health"}, "/healthz", false},
		{BypassRule{Path: "/.well-known/", Prefix: true}, "/.well-known/oauth-protected-resource", true},
		{BypassRule{Path: "/.well-known/", Prefix: true}, "/well-known", false},
		{BypassRule{Path: "/register"}, "/register", true},
		{BypassRule{Path: "/metrics"}, "/mcp", false},
	}

	for _, tt := range tests {
		if got := tt.rule.Matches(tt.path); got != tt.want {
			t.Errorf("%+v.Matches(%q) = %v, want %v", tt.rule, tt.path, got, tt.want)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	valid := &oauth.AuthContext{
		Subject:   "alice",
		Scopes:    []string{"transcripts:read"},
		ExpiresAt: time.Now().Add(time.Hour),
		TokenHash: oauth.HashToken("good"),
	}
	validate := func(_ context.Context, token string) (*oauth.AuthContext, error) {
		switch token {
		case "good":
			return valid, nil
		case "expired":
			return nil, oautherr.NewInvalidTokenError("ValidateToken", oautherr.ReasonExpired, errors.New("token is expired"))
		default:
			return nil, oautherr.NewProviderUnreachableError("fetch", "https://auth.example.com/jwks", errors.New("timeout"))
		}
	}

	tests := []struct {
		name          string
		path          string
		header        string
		wantStatus    int
		wantCalled    bool
		wantCode      string
		wantReason    string
		wantChallenge string
		wantCalls     int
	}{
		{
			name:       "health bypasses",
			path:       "/health",
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "well-known prefix bypasses",
			path:       "/.well-known/oauth-authorization-server",
			header:     "Bearer junk",
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:          "missing token",
			path:          "/mcp",
			wantStatus:    http.StatusUnauthorized,
			wantCode:      internalerrors.CodeMissingToken,
			wantReason:    oauth.ReasonMissingToken,
			wantChallenge: `Bearer realm="youtube-transcript"`,
		},
		{
			name:       "basic scheme",
			path:       "/mcp",
			header:     "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusUnauthorized,
			wantCode:   internalerrors.CodeMissingToken,
			wantReason: oauth.ReasonMalformedHeader,
		},
		{
			name:       "expired token",
			path:       "/tools/invoke",
			header:     "Bearer expired",
			wantStatus: http.StatusUnauthorized,
			wantCode:   internalerrors.CodeInvalidToken,
			wantReason: oauth.ReasonExpired,
			wantCalls:  1,
		},
		{
			name:       "provider unreachable",
			path:       "/mcp",
			header:     "Bearer other",
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   internalerrors.CodeServiceUnavailable,
			wantReason: oauth.ReasonProviderUnreachable,
			wantCalls:  1,
		},
		{
			name:       "valid token",
			path:       "/mcp",
			header:     "bearer good",
			wantStatus: http.StatusOK,
			wantCalled: true,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			validator := &mocks.TokenValidator{ValidateFunc: validate}
			mw := NewAuthMiddleware(AuthOptions{
				Enabled:   true,
				Validator: validator,
				Responder: newResponder(),
			})

			var called bool
			var gotAuth *oauth.AuthContext
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotAuth, _ = transportcore.AuthFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			mw.Authenticate()(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Errorf("next called = %v, want %v", called, tt.wantCalled)
			}
			if validator.Calls() != tt.wantCalls {
				t.Errorf("validator calls = %d, want %d", validator.Calls(), tt.wantCalls)
			}
			if tt.name == "valid token" && gotAuth != valid {
				t.Errorf("auth context = %+v, want %+v", gotAuth, valid)
			}
			if tt.wantCode != "" {
				body := w.Body.String()
				if !strings.Contains(body, `"error_code":"`+tt.wantCode+`"`) {
					t.Errorf("body = %s, want error_code %s", body, tt.wantCode)
				}
				if !strings.Contains(body, `"reason":"`+tt.wantReason+`"`) {
					t.Errorf("body = %s, want reason %s", body, tt.wantReason)
				}
			}
			if tt.wantChallenge != "" {
				got := w.Header().Get("WWW-Authenticate")
				if !strings.HasPrefix(got, tt.wantChallenge) || strings.Contains(got, "error=") {
					t.Errorf("WWW-Authenticate = %q, want a bare challenge", got)
				}
			}
		})
	}
}

func TestAuthenticate_Disabled(t *testing.T) {
	t.Parallel()

	validator := &mocks.TokenValidator{}
	mw := NewAuthMiddleware(AuthOptions{
		Enabled:   false,
		Validator: validator,
		Responder: newResponder(),
	})

	var gotAuth *oauth.AuthContext
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth, _ = transportcore.AuthFromContext(r.Context())
	})

	mw.Authenticate()(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/mcp", nil))

	if !gotAuth.IsAnonymous() {
		t.Errorf("auth context = %+v, want anonymous", gotAuth)
	}
	if validator.Calls() != 0 {
		t.Errorf("validator calls = %d, want 0", validator.Calls())
	}
}

func TestAuthenticate_LogsOneLinePerAttempt(t *testing.T) {
	t.Parallel()

	logs, logger := newLogCapture()
	m := metrics.New()
	mw := NewAuthMiddleware(AuthOptions{
		Enabled: true,
		Validator: &mocks.TokenValidator{ValidateFunc: func(_ context.Context, token string) (*oauth.AuthContext, error) {
			if token == "good" {
				return &oauth.AuthContext{Subject: "alice", TokenHash: oauth.HashToken(token)}, nil
			}
			return nil, oautherr.NewInvalidTokenError("ValidateToken", oautherr.ReasonBadSignature, errors.New("bad"))
		}},
		Responder: newResponder(),
		Logger:    logger,
		Metrics:   m,
	})
	handler := mw.Authenticate()(okHandler(nil))

	for _, token := range []string{"good", "forged"} {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req = req.WithContext(transportcore.ContextWithCorrelationID(req.Context(), "corr-"+token))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.entries(t)
	if len(entries) != 2 {
		t.Fatalf("got %d log lines, want 2: %v", len(entries), entries)
	}

	if entries[0]["msg"] != "auth succeeded" || entries[0]["subject"] != "alice" || entries[0]["correlation_id"] != "corr-good" {
		t.Errorf("success line = %v", entries[0])
	}
	if got, _ := entries[0]["token_hash"].(string); got != oauth.HashToken("good")[:16] {
		t.Errorf("token_hash = %q, want 16 char prefix", got)
	}
	if entries[1]["msg"] != "auth failed" || entries[1]["reason"] != oauth.ReasonBadSignature || entries[1]["level"] != "WARN" {
		t.Errorf("failure line = %v", entries[1])
	}
	for _, entry := range entries {
		for _, v := range entry {
			if s, ok := v.(string); ok && (s == "good" || s == "forged") {
				t.Errorf("raw token leaked into log line %v", entry)
			}
		}
	}

	if got := testutil.ToFloat64(m.AuthAttemptsTotal.WithLabelValues("success", "")); got != 1 {
		t.Errorf("successful attempts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AuthAttemptsTotal.WithLabelValues("failure", oauth.ReasonBadSignature)); got != 1 {
		t.Errorf("failed attempts = %v, want 1", got)
	}
}

func TestRequireScopes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		enabled    bool
		auth       *oauth.AuthContext
		required   []string
		wantStatus int
	}{
		{
			name:       "no scopes required",
			enabled:    true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "granted",
			enabled:    true,
			auth:       &oauth.AuthContext{Subject: "a", Scopes: []string{"transcripts:read", "tools:invoke"}},
			required:   []string{"transcripts:read"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing scope",
			enabled:    true,
			auth:       &oauth.AuthContext{Subject: "a", Scopes: []string{"tools:invoke"}},
			required:   []string{"transcripts:read"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no auth context",
			enabled:    true,
			required:   []string{"transcripts:read"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "disabled anonymous passes",
			enabled:    false,
			auth:       oauth.AnonymousAuthContext(),
			required:   []string{"transcripts:read"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mw := NewAuthMiddleware(AuthOptions{
				Enabled:   tt.enabled,
				Validator: &mocks.TokenValidator{},
				Responder: newResponder(),
			})

			req := httptest.NewRequest(http.MethodPost, "/tools/invoke", nil)
			if tt.auth != nil {
				req = req.WithContext(transportcore.ContextWithAuth(req.Context(), tt.auth))
			}
			w := httptest.NewRecorder()
			mw.RequireScopes(tt.required...)(okHandler(nil)).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden {
				got := w.Header().Get("WWW-Authenticate")
				if !strings.Contains(got, `error="insufficient_scope"`) || !strings.Contains(got, `scope="transcripts:read"`) {
					t.Errorf("WWW-Authenticate = %q", got)
				}
			}
		})
	}
}

func TestNewAuthMiddleware_RequiresValidatorWhenEnabled(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("NewAuthMiddleware() did not panic without a validator")
		}
	}()
	NewAuthMiddleware(AuthOptions{Enabled: true, Responder: newResponder()})
}
