// Package middleware provides HTTP middleware for the transport layer.
package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
	pkgoauth "github.com/jamesprial/mcp-youtube-transcript/pkg/oauth"
)

// BypassRule exempts matching paths from authentication.
type BypassRule struct {
	// Path is matched exactly, or as a prefix when Prefix is set.
	Path   string
	Prefix bool
}

// Matches reports whether path falls under the rule.
func (b BypassRule) Matches(path string) bool {
	if b.Prefix {
		return strings.HasPrefix(path, b.Path)
	}
	return path == b.Path
}

// DefaultBypassRules leaves health, discovery, registration and metrics open.
func DefaultBypassRules() []BypassRule {
	return []BypassRule{
		{Path: "/health"},
		{Path: "/.well-known/", Prefix: true},
		{Path: "/register"},
		{Path: "/metrics"},
	}
}

// AuthOptions configures the authentication middleware.
type AuthOptions struct {
	// Enabled turns validation on. When false every request carries the
	// anonymous AuthContext.
	Enabled bool

	// Validator is required when Enabled.
	Validator oauth.TokenValidator

	// Scopes checks RequireScopes. Defaults to oauth.NewScopeChecker().
	Scopes oauth.ScopeChecker

	Responder transportcore.Responder

	// Rules are evaluated in order before any validation. Nil means
	// DefaultBypassRules.
	Rules []BypassRule

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// authMiddleware implements transportcore.AuthMiddleware.
type authMiddleware struct {
	enabled   bool
	validator oauth.TokenValidator
	scopes    oauth.ScopeChecker
	responder transportcore.Responder
	rules     []BypassRule
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewAuthMiddleware creates bearer token authentication middleware.
func NewAuthMiddleware(opts AuthOptions) transportcore.AuthMiddleware {
	if opts.Enabled && opts.Validator == nil {
		panic("validator cannot be nil when authentication is enabled")
	}
	if opts.Responder == nil {
		panic("responder cannot be nil")
	}
	if opts.Scopes == nil {
		opts.Scopes = oauth.NewScopeChecker()
	}
	if opts.Rules == nil {
		opts.Rules = DefaultBypassRules()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &authMiddleware{
		enabled:   opts.Enabled,
		validator: opts.Validator,
		scopes:    opts.Scopes,
		responder: opts.Responder,
		rules:     opts.Rules,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// Authenticate validates the bearer token of every request not covered by
// a bypass rule.
func (m *authMiddleware) Authenticate() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.bypassed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if !m.enabled {
				ctx := transportcore.ContextWithAuth(r.Context(), oauth.AnonymousAuthContext())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			header := r.Header.Get(pkgoauth.HeaderAuthorization)
			if header == "" {
				m.reject(w, r, "", oauth.NewMissingTokenError("Authenticate"))
				return
			}

			raw, ok := pkgoauth.ParseBearer(header)
			if !ok {
				m.reject(w, r, "", oauth.NewMalformedHeaderError("Authenticate"))
				return
			}

			auth, err := m.validator.ValidateToken(r.Context(), raw)
			if err != nil {
				m.reject(w, r, shortHash(oauth.HashToken(raw)), err)
				return
			}

			m.metrics.AuthAttempt(true, "")
			m.logger.Info("auth succeeded",
				"correlation_id", transportcore.CorrelationIDFromContext(r.Context()),
				"token_hash", shortHash(auth.TokenHash),
				"subject", auth.Subject,
				"path", r.URL.Path,
			)

			ctx := transportcore.ContextWithAuth(r.Context(), auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScopes rejects requests whose AuthContext lacks any of scopes.
// The anonymous context used when authentication is disabled always passes.
func (m *authMiddleware) RequireScopes(scopes ...string) transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		if len(scopes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, ok := transportcore.AuthFromContext(r.Context())
			if !ok {
				m.responder.Error(w, r, oauth.NewMissingTokenError("RequireScopes"))
				return
			}
			if auth.IsAnonymous() && !m.enabled {
				next.ServeHTTP(w, r)
				return
			}

			if err := m.scopes.RequireScopes(auth, scopes...); err != nil {
				m.logger.Warn("insufficient scope",
					"correlation_id", transportcore.CorrelationIDFromContext(r.Context()),
					"subject", auth.Subject,
					"required_scopes", scopes,
					"granted_scopes", auth.Scopes,
					"path", r.URL.Path,
				)
				m.responder.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *authMiddleware) bypassed(path string) bool {
	for _, rule := range m.rules {
		if rule.Matches(path) {
			return true
		}
	}
	return false
}

// reject logs and answers a failed authentication attempt.
func (m *authMiddleware) reject(w http.ResponseWriter, r *http.Request, tokenHash string, err error) {
	reason := oauth.FailureReason(err)
	m.metrics.AuthAttempt(false, reason)

	attrs := []any{
		"correlation_id", transportcore.CorrelationIDFromContext(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
	}
	if tokenHash != "" {
		attrs = append(attrs, "token_hash", tokenHash)
	}
	m.logger.Warn("auth failed", attrs...)

	m.responder.Error(w, r, err)
}

func shortHash(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
