package oauth

import (
	ierrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth/oautherr"
)

// Failure reasons reported for rejected requests.
const (
	ReasonMissingToken        = oautherr.ReasonMissingToken
	ReasonMalformedHeader     = oautherr.ReasonMalformedHeader
	ReasonMalformedToken      = oautherr.ReasonMalformedToken
	ReasonBadSignature        = oautherr.ReasonBadSignature
	ReasonUnknownKey          = oautherr.ReasonUnknownKey
	ReasonExpired             = oautherr.ReasonExpired
	ReasonBadIssuer           = oautherr.ReasonBadIssuer
	ReasonInvalidClaims       = oautherr.ReasonInvalidClaims
	ReasonProviderUnreachable = oautherr.ReasonProviderUnreachable
	ReasonMalformedJWKS       = oautherr.ReasonMalformedJWKS
)

// FailureReason returns the reason attached to an authentication error.
func FailureReason(err error) string {
	return ierrors.Reason(err)
}

// IsDependencyFailure reports whether err is an authorization server outage
// (503) rather than a rejected credential (401).
func IsDependencyFailure(err error) bool {
	return oautherr.IsDependencyReason(ierrors.Reason(err))
}

// NewMissingTokenError returns the error for a request without credentials.
func NewMissingTokenError(op string) error {
	return oautherr.NewMissingTokenError(op)
}

// NewMalformedHeaderError returns the error for an Authorization header
// that is not a bearer credential.
func NewMalformedHeaderError(op string) error {
	return oautherr.NewMalformedHeaderError(op)
}

// RequiredScopes returns the scopes an insufficient_scope error names.
func RequiredScopes(err error) []string {
	return oautherr.RequiredScopes(err)
}
