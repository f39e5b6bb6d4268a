// Package oauth provides bearer token validation and discovery metadata for
// the transcript server acting as an OAuth Resource Server.
package oauth

import (
	"context"
	"time"
)

// AnonymousSubject is the subject of the placeholder context attached to
// requests when authentication is disabled.
const AnonymousSubject = "anonymous"

// AuthContext is the immutable result of a successful token validation.
// The raw token is never retained; TokenHash exists for log correlation only.
type AuthContext struct {
	// Subject is the sub claim: the user or client the token was issued to.
	Subject string

	// Issuer is the iss claim.
	Issuer string

	// ClientID is the client_id claim, falling back to azp.
	ClientID string

	// Scopes are the granted scopes, from the scope or scp claim.
	Scopes []string

	// ExpiresAt is the exp claim. A context must not be honoured past it.
	ExpiresAt time.Time

	// TokenHash is the hex SHA-256 of the raw token.
	TokenHash string
}

// AnonymousAuthContext returns the placeholder used when authentication is
// disabled. It has no scopes and no expiry.
func AnonymousAuthContext() *AuthContext {
	return &AuthContext{Subject: AnonymousSubject}
}

// IsAnonymous reports whether c is the disabled-mode placeholder.
func (c *AuthContext) IsAnonymous() bool {
	return c != nil && c.Subject == AnonymousSubject && c.TokenHash == ""
}

// Expired reports whether the context must no longer be honoured at now.
// The anonymous context never expires.
func (c *AuthContext) Expired(now time.Time) bool {
	if c == nil {
		return true
	}
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// HasScope returns true if the token has the specified scope.
func (c *AuthContext) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HasAnyScope returns true if the token has any of the specified scopes.
// Returns false if the token has none of the required scopes or if scopes is empty.
func (c *AuthContext) HasAnyScope(scopes ...string) bool {
	if c == nil || len(scopes) == 0 {
		return false
	}
	for _, required := range scopes {
		if c.HasScope(required) {
			return true
		}
	}
	return false
}

// HasAllScopes returns true if the token has all specified scopes.
// Returns true if scopes is empty (vacuous truth).
func (c *AuthContext) HasAllScopes(scopes ...string) bool {
	if c == nil {
		return len(scopes) == 0
	}
	for _, required := range scopes {
		if !c.HasScope(required) {
			return false
		}
	}
	return true
}

// TokenValidator validates bearer access tokens.
type TokenValidator interface {
	// ValidateToken verifies signature, expiry and issuer of a token and
	// returns the resulting AuthContext. Outcomes are memoised per token hash
	// for a bounded window.
	//
	// Credential failures are ErrUnauthorized with a failure reason;
	// authorization server outages are ErrUnavailable.
	ValidateToken(ctx context.Context, token string) (*AuthContext, error)
}

// KeySource resolves signing keys from the authorization server's JWKS.
type KeySource interface {
	// GetKey returns the public key for keyID, fetching the key set at most
	// once when the cached set is stale or lacks the key.
	GetKey(ctx context.Context, keyID string) (any, error)

	// RefreshKeys forces a fetch of the key set.
	RefreshKeys(ctx context.Context) error
}

// ScopeChecker validates granted scopes against required scopes.
type ScopeChecker interface {
	// RequireScopes fails with insufficient_scope unless all scopes are granted.
	RequireScopes(auth *AuthContext, required ...string) error

	// RequireAnyScope fails with insufficient_scope unless one scope is granted.
	RequireAnyScope(auth *AuthContext, scopes ...string) error
}

// MetadataService provides Protected Resource Metadata per RFC 9728.
type MetadataService interface {
	// GetMetadata returns the protected resource metadata document.
	GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error)

	// GetMetadataURL returns the canonical URL where this metadata is served.
	// Typically: {baseURL}/.well-known/oauth-protected-resource
	GetMetadataURL() string
}

// DiscoveryService proxies the authorization server's discovery metadata.
type DiscoveryService interface {
	// Metadata returns the upstream document, cached, with PKCE methods
	// filled in when upstream omits them.
	Metadata(ctx context.Context) (map[string]any, error)
}

// ProtectedResourceMetadata represents the OAuth 2.0 Protected Resource
// Metadata as defined in RFC 9728.
type ProtectedResourceMetadata struct {
	// Resource is the canonical URI for this protected resource.
	Resource string `json:"resource"`

	// AuthorizationServers lists the issuers trusted for this resource.
	AuthorizationServers []string `json:"authorization_servers"`

	// ScopesSupported is an optional array of OAuth scope values supported
	// by this protected resource.
	ScopesSupported []string `json:"scopes_supported,omitempty"`

	// BearerMethodsSupported is always ["header"].
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
}
