package errors

import (
	"fmt"
	"strings"
)

// RFC 6750 Section 3.1 error codes used in WWW-Authenticate challenges.
const (
	// OAuthErrorInvalidRequest indicates the request is missing a token or is malformed.
	OAuthErrorInvalidRequest = "invalid_request"

	// OAuthErrorInvalidToken indicates the access token is invalid, expired, or revoked.
	OAuthErrorInvalidToken = "invalid_token"

	// OAuthErrorInsufficientScope indicates the token lacks required scope(s).
	OAuthErrorInsufficientScope = "insufficient_scope"
)

// OAuthError describes a Bearer challenge for a 401 or 403 response.
type OAuthError struct {
	// ErrorCode is the RFC 6750 error code. Empty for a bare challenge
	// (RFC 6750 Section 3.1: no error when the request lacked credentials).
	ErrorCode string

	// ErrorDescription is a human-readable description of the error.
	ErrorDescription string

	// Scope is the space-separated list of scopes the resource requires.
	Scope string

	// ResourceMetadata is the URL of the protected resource metadata document (RFC 9728).
	ResourceMetadata string

	// Realm is the protection space.
	Realm string
}

// Error implements the error interface.
func (e *OAuthError) Error() string {
	if e.ErrorDescription != "" {
		return fmt.Sprintf("%s: %s", e.ErrorCode, e.ErrorDescription)
	}
	return e.ErrorCode
}

// NewOAuthError creates a new OAuthError with the given error code and description.
func NewOAuthError(errorCode, errorDescription string) *OAuthError {
	return &OAuthError{
		ErrorCode:        errorCode,
		ErrorDescription: errorDescription,
	}
}

// WithScope sets the scope field and returns the error for chaining.
func (e *OAuthError) WithScope(scope string) *OAuthError {
	e.Scope = scope
	return e
}

// WithResourceMetadata sets the resource metadata URL and returns the error for chaining.
func (e *OAuthError) WithResourceMetadata(url string) *OAuthError {
	e.ResourceMetadata = url
	return e
}

// WithRealm sets the realm and returns the error for chaining.
func (e *OAuthError) WithRealm(realm string) *OAuthError {
	e.Realm = realm
	return e
}

// WWWAuthenticate formats the challenge as a WWW-Authenticate header value.
//
// Example output:
//
//	Bearer realm="youtube-transcript", error="invalid_token", error_description="token expired", resource_metadata="https://example.com/.well-known/oauth-protected-resource"
func (e *OAuthError) WWWAuthenticate() string {
	var parts []string

	add := func(key, value string) {
		if value != "" {
			parts = append(parts, fmt.Sprintf(`%s="%s"`, key, escapeQuotes(value)))
		}
	}

	add("realm", e.Realm)
	add("error", e.ErrorCode)
	add("error_description", e.ErrorDescription)
	add("scope", e.Scope)
	add("resource_metadata", e.ResourceMetadata)

	if len(parts) == 0 {
		return "Bearer"
	}
	return "Bearer " + strings.Join(parts, ", ")
}

// escapeQuotes escapes backslashes and double quotes for use in quoted-string header values.
func escapeQuotes(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
