package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	ierrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth/oautherr"
)

// KeyProvider resolves signing keys by key ID.
// This avoids importing the parent oauth package.
type KeyProvider interface {
	GetKey(ctx context.Context, keyID string) (any, error)
}

// Identity is the verified identity extracted from an access token.
type Identity struct {
	Subject   string
	Issuer    string
	ClientID  string
	Scopes    []string
	ExpiresAt time.Time
	TokenHash string
}

// Expired reports whether the identity must no longer be honoured at now.
func (i *Identity) Expired(now time.Time) bool {
	return i == nil || !now.Before(i.ExpiresAt)
}

// HasScope returns true if the token has the specified scope.
func (i *Identity) HasScope(scope string) bool {
	if i == nil {
		return false
	}
	for _, s := range i.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HasAnyScope returns true if the token has any of the specified scopes.
func (i *Identity) HasAnyScope(scopes ...string) bool {
	if i == nil || len(scopes) == 0 {
		return false
	}
	for _, required := range scopes {
		if i.HasScope(required) {
			return true
		}
	}
	return false
}

// HasAllScopes returns true if the token has all specified scopes.
func (i *Identity) HasAllScopes(scopes ...string) bool {
	if i == nil {
		return len(scopes) == 0
	}
	for _, required := range scopes {
		if !i.HasScope(required) {
			return false
		}
	}
	return true
}

// Whitelisted asymmetric signing algorithms. Anything else, including
// "none" and HMAC, is rejected before a key is resolved.
var allowedAlgorithms = []string{
	"RS256", "RS384", "RS512",
	"ES256", "ES384", "ES512",
	"PS256", "PS384", "PS512",
}

// Options configures a Validator.
type Options struct {
	// Issuer must exactly equal the token's iss claim.
	Issuer string

	// Audience, when set, must be present in the token's aud claim.
	Audience string

	// ClockSkew is the leeway applied to exp and nbf.
	ClockSkew time.Duration

	// CacheTTL bounds how long a validation outcome is reused. Zero disables caching.
	CacheTTL time.Duration

	// CacheSize bounds the number of cached outcomes.
	CacheSize int

	Now     func() time.Time
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Validator validates access tokens using JWT validation and memoises the
// outcome per token hash.
type Validator struct {
	keys     KeyProvider
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
	cache    *ResultCache
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewValidator creates a new token validator.
func NewValidator(keys KeyProvider, opts Options) (*Validator, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cache, err := NewResultCache(opts.CacheSize, opts.CacheTTL, now)
	if err != nil {
		return nil, err
	}

	return &Validator{
		keys:     keys,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		leeway:   opts.ClockSkew,
		now:      now,
		cache:    cache,
		logger:   logger,
		metrics:  opts.Metrics,
	}, nil
}

// HashToken returns the hex SHA-256 of a raw token. It is the cache key and
// the only form in which a token is ever logged.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ValidateToken validates an access token and returns the verified identity.
func (v *Validator) ValidateToken(ctx context.Context, raw string) (*Identity, error) {
	hash := HashToken(raw)

	if cached, ok := v.cache.Get(hash); ok {
		v.metrics.TokenCacheLookup(true)
		if cached.err != nil {
			return nil, cached.err
		}
		if cached.identity.Expired(v.now()) {
			v.cache.Remove(hash)
			return nil, oautherr.NewInvalidTokenError("ValidateToken", oautherr.ReasonExpired,
				errors.New("cached identity has expired"))
		}
		return cached.identity, nil
	}
	v.metrics.TokenCacheLookup(false)

	identity, err := v.verify(ctx, raw, hash)
	if err != nil {
		v.logger.Debug("token verification failed", "token_hash", hash[:16], "error", err)
		if !oautherr.IsDependencyReason(ierrors.Reason(err)) {
			v.cache.StoreFailure(hash, err)
		}
		return nil, err
	}

	v.cache.StoreSuccess(hash, identity)
	return identity, nil
}

// verify performs the full signature and claims check.
func (v *Validator) verify(ctx context.Context, raw, hash string) (*Identity, error) {
	// Read the header first so unsupported algorithms and missing key IDs
	// never reach the key provider.
	unverified, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, oautherr.NewInvalidTokenError("ValidateToken", oautherr.ReasonMalformedToken,
			fmt.Errorf("failed to parse token: %w", err))
	}

	alg, _ := unverified.Header["alg"].(string)
	if !isAllowedAlgorithm(alg) {
		return nil, oautherr.NewInvalidTokenError("ValidateToken", oautherr.ReasonMalformedToken,
			fmt.Errorf("unsupported algorithm %q", alg)).WithContext("algorithm", alg)
	}

	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, oautherr.NewInvalidTokenError("ValidateToken", oautherr.ReasonMalformedToken,
			errors.New("missing kid in token header"))
	}

	key, err := v.keys.GetKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(v.issuer),
		jwt.WithTimeFunc(v.now),
	}
	if v.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.NewParser(parserOpts...).ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}); err != nil {
		return nil, oautherr.NewInvalidTokenError("ValidateToken", classify(err), err)
	}

	return v.extractIdentity(claims, hash)
}

// classify maps a jwt parse error to a failure reason.
func classify(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return oautherr.ReasonMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return oautherr.ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return oautherr.ReasonExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return oautherr.ReasonBadIssuer
	default:
		return oautherr.ReasonInvalidClaims
	}
}

// extractIdentity builds an Identity from verified claims.
func (v *Validator) extractIdentity(claims jwt.MapClaims, hash string) (*Identity, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, oautherr.NewInvalidTokenError("extractIdentity", oautherr.ReasonInvalidClaims,
			errors.New("missing sub claim"))
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, oautherr.NewInvalidTokenError("extractIdentity", oautherr.ReasonInvalidClaims,
			errors.New("missing exp claim"))
	}

	iss, _ := claims.GetIssuer()

	clientID, _ := claims["client_id"].(string)
	if clientID == "" {
		clientID, _ = claims["azp"].(string)
	}

	return &Identity{
		Subject:   sub,
		Issuer:    iss,
		ClientID:  clientID,
		Scopes:    extractScopes(claims),
		ExpiresAt: exp.Time,
		TokenHash: hash,
	}, nil
}

// extractScopes reads the space-separated "scope" claim, falling back to
// the "scp" claim as either an array or a string.
func extractScopes(claims jwt.MapClaims) []string {
	if s, ok := claims["scope"].(string); ok {
		return parseScopes(s)
	}
	switch scp := claims["scp"].(type) {
	case string:
		return parseScopes(scp)
	case []any:
		scopes := make([]string, 0, len(scp))
		for _, item := range scp {
			if s, ok := item.(string); ok && s != "" {
				scopes = append(scopes, s)
			}
		}
		return scopes
	}
	return nil
}

// parseScopes parses a space-separated scope string into a slice.
func parseScopes(scopeStr string) []string {
	fields := strings.Fields(scopeStr)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func isAllowedAlgorithm(alg string) bool {
	for _, a := range allowedAlgorithms {
		if a == alg {
			return true
		}
	}
	return false
}
