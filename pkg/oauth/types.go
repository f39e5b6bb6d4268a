// Package oauth holds the OAuth constants shared by the transcript server
// and its clients, plus bearer header parsing.
package oauth

import "strings"

// Scopes understood by the transcript server.
const (
	// ScopeTranscriptsRead allows fetching transcripts.
	ScopeTranscriptsRead = "transcripts:read"

	// ScopeToolsInvoke allows invoking any registered tool.
	ScopeToolsInvoke = "tools:invoke"
)

// BearerToken is the RFC 6750 authentication scheme.
const BearerToken = "Bearer"

// PKCE code challenge methods advertised through discovery when the
// authorization server does not list its own.
const (
	CodeChallengeMethodS256  = "S256"
	CodeChallengeMethodPlain = "plain"
)

// DefaultCodeChallengeMethods returns the methods added to passthrough
// authorization server metadata.
func DefaultCodeChallengeMethods() []string {
	return []string{CodeChallengeMethodS256, CodeChallengeMethodPlain}
}

// HTTP header names.
const (
	HeaderAuthorization   = "Authorization"
	HeaderWWWAuthenticate = "WWW-Authenticate"
	HeaderContentType     = "Content-Type"
	HeaderCorrelationID   = "X-Correlation-ID"
)

// ContentTypeJSON is the application/json content type.
const ContentTypeJSON = "application/json"

// ParseBearer extracts the token from an Authorization header value.
// The scheme is matched case-insensitively. It reports false when the value
// is not exactly "Bearer <token>".
func ParseBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, BearerToken) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
