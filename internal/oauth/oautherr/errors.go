// Package oautherr provides OAuth error constructors and failure reasons.
// This package is separate from internal/oauth to avoid import cycles
// when internal packages need to create OAuth errors.
package oautherr

import (
	"fmt"
	"strings"

	ierrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
)

// Domain identifier for OAuth errors.
const domainOAuth = "oauth"

// Machine-readable failure reasons attached to authentication errors.
const (
	ReasonMissingToken        = "missing_token"
	ReasonMalformedHeader     = "malformed_header"
	ReasonMalformedToken      = "malformed_token"
	ReasonBadSignature        = "bad_signature"
	ReasonUnknownKey          = "unknown_key"
	ReasonExpired             = "expired"
	ReasonBadIssuer           = "bad_issuer"
	ReasonInvalidClaims       = "invalid_claims"
	ReasonProviderUnreachable = "provider_unreachable"
	ReasonMalformedJWKS       = "malformed_jwks"
)

// IsDependencyReason reports whether reason describes an authorization
// server outage rather than a bad credential.
func IsDependencyReason(reason string) bool {
	return reason == ReasonProviderUnreachable || reason == ReasonMalformedJWKS
}

// NewMissingTokenError creates a DomainError for a request without credentials.
func NewMissingTokenError(op string) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrUnauthorized, fmt.Errorf("no bearer token")).
		WithCode(ierrors.CodeMissingToken).
		WithReason(ReasonMissingToken)
}

// NewMalformedHeaderError creates a DomainError for an Authorization header
// that is not of the form "Bearer <token>". It is reported as missing_token.
func NewMalformedHeaderError(op string) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrUnauthorized, fmt.Errorf("authorization header is not a bearer credential")).
		WithCode(ierrors.CodeMissingToken).
		WithReason(ReasonMalformedHeader)
}

// NewInvalidTokenError creates a DomainError for a rejected credential.
func NewInvalidTokenError(op, reason string, err error) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrUnauthorized, err).
		WithCode(ierrors.CodeInvalidToken).
		WithReason(reason).
		WithMessage(describe(reason))
}

// NewKeyNotFoundError creates a DomainError for a kid absent from the JWKS.
func NewKeyNotFoundError(op, keyID string) *ierrors.DomainError {
	return NewInvalidTokenError(op, ReasonUnknownKey, fmt.Errorf("key %q not found", keyID)).
		WithContext("key_id", keyID)
}

// NewProviderUnreachableError creates a DomainError for a failed fetch from
// the authorization server.
func NewProviderUnreachableError(op, serverURL string, err error) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrUnavailable, err).
		WithCode(ierrors.CodeServiceUnavailable).
		WithReason(ReasonProviderUnreachable).
		WithMessage("The authorization server is unreachable").
		WithContext("authorization_server", serverURL)
}

// NewMalformedJWKSError creates a DomainError for a JWKS document that
// cannot be used.
func NewMalformedJWKSError(op, jwksURL string, err error) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrUnavailable, err).
		WithCode(ierrors.CodeServiceUnavailable).
		WithReason(ReasonMalformedJWKS).
		WithMessage("The authorization server published an unusable key set").
		WithContext("jwks_url", jwksURL)
}

// NewInsufficientScopeError creates a DomainError for insufficient scope.
func NewInsufficientScopeError(op string, required []string) *ierrors.DomainError {
	return ierrors.New(domainOAuth, op, ierrors.ErrForbidden, fmt.Errorf("insufficient_scope")).
		WithCode(ierrors.CodeInsufficientScope).
		WithMessage("The access token lacks a required scope: "+strings.Join(required, " ")).
		WithContext("required_scopes", required)
}

// RequiredScopes returns the scopes attached by NewInsufficientScopeError.
func RequiredScopes(err error) []string {
	de, ok := ierrors.As(err)
	if !ok || de.Context == nil {
		return nil
	}
	scopes, _ := de.Context["required_scopes"].([]string)
	return scopes
}

func describe(reason string) string {
	switch reason {
	case ReasonExpired:
		return "The access token has expired"
	case ReasonBadSignature:
		return "The access token signature is invalid"
	case ReasonUnknownKey:
		return "The access token was signed with an unknown key"
	case ReasonBadIssuer:
		return "The access token was issued by an untrusted issuer"
	case ReasonMalformedToken:
		return "The access token is malformed"
	case ReasonInvalidClaims:
		return "The access token claims are invalid"
	default:
		return "The access token is invalid"
	}
}
