package token

import (
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth/oautherr"
)

// ScopeChecker validates token scopes against required scopes.
type ScopeChecker struct{}

// NewScopeChecker creates a new scope checker.
func NewScopeChecker() *ScopeChecker {
	return &ScopeChecker{}
}

// RequireScopes checks that the identity has all of the specified scopes.
func (s *ScopeChecker) RequireScopes(identity *Identity, required ...string) error {
	if len(required) == 0 {
		return nil
	}
	if !identity.HasAllScopes(required...) {
		return oautherr.NewInsufficientScopeError("RequireScopes", required)
	}
	return nil
}

// RequireAnyScope checks that the identity has at least one of the specified scopes.
func (s *ScopeChecker) RequireAnyScope(identity *Identity, scopes ...string) error {
	if len(scopes) == 0 {
		return nil
	}
	if !identity.HasAnyScope(scopes...) {
		return oautherr.NewInsufficientScopeError("RequireAnyScope", scopes)
	}
	return nil
}
