// Package metadata builds the OAuth 2.0 Protected Resource Metadata
// document (RFC 9728) for the transcript server.
package metadata

import (
	"context"
	"fmt"
	"strings"
)

// WellKnownPath is where the document is served relative to the resource.
const WellKnownPath = "/.well-known/oauth-protected-resource"

// ProtectedResourceMetadata represents the OAuth 2.0 Protected Resource
// Metadata as defined in RFC 9728.
type ProtectedResourceMetadata struct {
	Resource               string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	BearerMethodsSupported []string `json:"bearer_methods_supported,omitempty"`
}

// Service provides Protected Resource Metadata per RFC 9728.
type Service struct {
	resource             string
	authorizationServers []string
	scopesSupported      []string
	metadataURL          string
}

// NewService creates a metadata service for the resource at baseURL.
func NewService(baseURL string, authorizationServers, scopesSupported []string) *Service {
	resource := normalizeBaseURL(baseURL)
	return &Service{
		resource:             resource,
		authorizationServers: authorizationServers,
		scopesSupported:      scopesSupported,
		metadataURL:          resource + WellKnownPath,
	}
}

// GetMetadata returns the protected resource metadata document.
// Bearer tokens are only accepted in the Authorization header.
func (s *Service) GetMetadata(_ context.Context) (*ProtectedResourceMetadata, error) {
	doc := &ProtectedResourceMetadata{
		Resource:               s.resource,
		AuthorizationServers:   append([]string(nil), s.authorizationServers...),
		ScopesSupported:        append([]string(nil), s.scopesSupported...),
		BearerMethodsSupported: []string{"header"},
	}
	if err := ValidateMetadata(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetMetadataURL returns the canonical URL where this metadata is served.
func (s *Service) GetMetadataURL() string {
	return s.metadataURL
}

// normalizeBaseURL strips trailing slashes. Per RFC 8707 resource
// identifiers carry no trailing slash unless it is meaningful.
func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

// ValidateMetadata checks the fields RFC 9728 requires.
func ValidateMetadata(doc *ProtectedResourceMetadata) error {
	if doc.Resource == "" {
		return fmt.Errorf("resource field is required")
	}
	if len(doc.AuthorizationServers) == 0 {
		return fmt.Errorf("authorization_servers field must contain at least one server")
	}
	for _, server := range doc.AuthorizationServers {
		if server == "" {
			return fmt.Errorf("authorization server URL cannot be empty")
		}
	}
	return nil
}
