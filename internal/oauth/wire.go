package oauth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth/internal/discovery"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth/internal/jwks"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth/internal/metadata"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth/internal/token"
)

// tokenValidatorAdapter adapts token.Validator to oauth.TokenValidator interface.
type tokenValidatorAdapter struct {
	validator *token.Validator
}

func (a *tokenValidatorAdapter) ValidateToken(ctx context.Context, raw string) (*AuthContext, error) {
	identity, err := a.validator.ValidateToken(ctx, raw)
	if err != nil {
		return nil, err
	}
	return fromIdentity(identity), nil
}

// metadataServiceAdapter adapts metadata.Service to oauth.MetadataService interface.
type metadataServiceAdapter struct {
	service *metadata.Service
}

func (a *metadataServiceAdapter) GetMetadata(ctx context.Context) (*ProtectedResourceMetadata, error) {
	meta, err := a.service.GetMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return &ProtectedResourceMetadata{
		Resource:               meta.Resource,
		AuthorizationServers:   meta.AuthorizationServers,
		ScopesSupported:        meta.ScopesSupported,
		BearerMethodsSupported: meta.BearerMethodsSupported,
	}, nil
}

func (a *metadataServiceAdapter) GetMetadataURL() string {
	return a.service.GetMetadataURL()
}

// scopeCheckerAdapter adapts token.ScopeChecker to oauth.ScopeChecker interface.
type scopeCheckerAdapter struct {
	checker *token.ScopeChecker
}

func (a *scopeCheckerAdapter) RequireScopes(auth *AuthContext, required ...string) error {
	return a.checker.RequireScopes(toIdentity(auth), required...)
}

func (a *scopeCheckerAdapter) RequireAnyScope(auth *AuthContext, scopes ...string) error {
	return a.checker.RequireAnyScope(toIdentity(auth), scopes...)
}

func fromIdentity(id *token.Identity) *AuthContext {
	return &AuthContext{
		Subject:   id.Subject,
		Issuer:    id.Issuer,
		ClientID:  id.ClientID,
		Scopes:    id.Scopes,
		ExpiresAt: id.ExpiresAt,
		TokenHash: id.TokenHash,
	}
}

func toIdentity(auth *AuthContext) *token.Identity {
	if auth == nil {
		return nil
	}
	return &token.Identity{
		Subject:   auth.Subject,
		Issuer:    auth.Issuer,
		ClientID:  auth.ClientID,
		Scopes:    auth.Scopes,
		ExpiresAt: auth.ExpiresAt,
		TokenHash: auth.TokenHash,
	}
}

// HashToken returns the hex SHA-256 of a raw token, the only form in which
// a token may be logged.
func HashToken(raw string) string {
	return token.HashToken(raw)
}

// Config holds the configuration needed to construct OAuth services.
type Config struct {
	// BaseURL is the canonical base URL for this protected resource.
	BaseURL string

	// IssuerURL is the exact iss value tokens must carry.
	IssuerURL string

	// AuthServerURL is the authorization server base URL used for discovery.
	AuthServerURL string

	// JWKSURL overrides JWKS discovery when set.
	JWKSURL string

	// Audience is the optional expected aud claim.
	Audience string

	// ScopesSupported is advertised in the resource metadata.
	ScopesSupported []string

	JWKSCacheTTL     time.Duration
	JWKSTimeout      time.Duration
	ClockSkew        time.Duration
	TokenCacheTTL    time.Duration
	TokenCacheSize   int
	DiscoveryTimeout time.Duration

	// Optional collaborators.
	HTTPClient *http.Client
	Now        func() time.Time
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// NewKeySource creates a JWKS client for the configured authorization server.
func NewKeySource(cfg *Config) KeySource {
	return jwks.NewClient(jwks.Options{
		ServerURL:  cfg.AuthServerURL,
		JWKSURL:    cfg.JWKSURL,
		CacheTTL:   cfg.JWKSCacheTTL,
		Timeout:    cfg.JWKSTimeout,
		HTTPClient: cfg.HTTPClient,
		Now:        cfg.Now,
		Logger:     cfg.Logger,
		Metrics:    cfg.Metrics,
	})
}

// NewTokenValidator creates a token validator that resolves keys from keys.
func NewTokenValidator(cfg *Config, keys KeySource) (TokenValidator, error) {
	validator, err := token.NewValidator(keys, token.Options{
		Issuer:    cfg.IssuerURL,
		Audience:  cfg.Audience,
		ClockSkew: cfg.ClockSkew,
		CacheTTL:  cfg.TokenCacheTTL,
		CacheSize: cfg.TokenCacheSize,
		Now:       cfg.Now,
		Logger:    cfg.Logger,
		Metrics:   cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &tokenValidatorAdapter{validator: validator}, nil
}

// NewMetadataService creates the RFC 9728 metadata service. The configured
// issuer is the single advertised authorization server.
func NewMetadataService(cfg *Config) MetadataService {
	var servers []string
	if cfg.IssuerURL != "" {
		servers = []string{cfg.IssuerURL}
	}
	return &metadataServiceAdapter{
		service: metadata.NewService(cfg.BaseURL, servers, cfg.ScopesSupported),
	}
}

// NewScopeChecker creates a new scope checker.
func NewScopeChecker() ScopeChecker {
	return &scopeCheckerAdapter{checker: token.NewScopeChecker()}
}

// NewDiscoveryService creates the authorization server metadata passthrough.
// Upstream documents are cached for the JWKS cache TTL.
func NewDiscoveryService(cfg *Config) DiscoveryService {
	return discovery.NewService(discovery.Options{
		ServerURL:  cfg.AuthServerURL,
		Timeout:    cfg.DiscoveryTimeout,
		CacheTTL:   cfg.JWKSCacheTTL,
		HTTPClient: cfg.HTTPClient,
		Now:        cfg.Now,
		Logger:     cfg.Logger,
		Metrics:    cfg.Metrics,
	})
}

// Services groups the OAuth services the transport layer depends on.
type Services struct {
	Keys      KeySource
	Validator TokenValidator
	Metadata  MetadataService
	Scopes    ScopeChecker
	Discovery DiscoveryService
}

// NewServices creates all OAuth services from the configuration.
// This is a convenience function for dependency injection.
func NewServices(cfg *Config) (*Services, error) {
	keys := NewKeySource(cfg)
	validator, err := NewTokenValidator(cfg, keys)
	if err != nil {
		return nil, err
	}

	return &Services{
		Keys:      keys,
		Validator: validator,
		Metadata:  NewMetadataService(cfg),
		Scopes:    NewScopeChecker(),
		Discovery: NewDiscoveryService(cfg),
	}, nil
}
