package oauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/lestrrat-go/jwx/v3/jwk"

	ierrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
)

// newAuthorizationServer serves discovery metadata and a JWKS containing pub.
func newAuthorizationServer(t *testing.T, pub *rsa.PublicKey, kid string) *httptest.Server {
	t.Helper()

	key, err := jwk.Import(pub)
	if err != nil {
		t.Fatalf("jwk.Import() error = %v", err)
	}
	if err := key.Set(jwk.KeyIDKey, kid); err != nil {
		t.Fatalf("set kid: %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		t.Fatalf("AddKey() error = %v", err)
	}
	body, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal jwks: %v", err)
	}

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/openid-configuration":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"issuer":                 srv.URL,
				"jwks_uri":               srv.URL + "/certs",
				"authorization_endpoint": srv.URL + "/auth",
			})
		case "/certs":
			_, _ = w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewServices_EndToEnd(t *testing.T) {
	t.Parallel()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey() error = %v", err)
	}
	as := newAuthorizationServer(t, &priv.PublicKey, "k1")

	svcs, err := NewServices(&Config{
		BaseURL:          "https://transcripts.example.com/",
		IssuerURL:        as.URL,
		AuthServerURL:    as.URL,
		ScopesSupported:  []string{"transcripts:read"},
		JWKSCacheTTL:     time.Hour,
		JWKSTimeout:      time.Second,
		ClockSkew:        30 * time.Second,
		TokenCacheTTL:    time.Minute,
		TokenCacheSize:   8,
		DiscoveryTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewServices() error = %v", err)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":   "user-1",
		"iss":   as.URL,
		"azp":   "claude",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"scope": "transcripts:read",
	})
	tok.Header["kid"] = "k1"
	raw, err := tok.SignedString(priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	auth, err := svcs.Validator.ValidateToken(context.Background(), raw)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if auth.Subject != "user-1" || auth.ClientID != "claude" || auth.Issuer != as.URL {
		t.Errorf("AuthContext = %+v", auth)
	}
	if len(auth.TokenHash) != 64 {
		t.Errorf("TokenHash = %q, want hex sha-256", auth.TokenHash)
	}

	if err := svcs.Scopes.RequireScopes(auth, "transcripts:read"); err != nil {
		t.Errorf("RequireScopes() error = %v", err)
	}
	if err := svcs.Scopes.RequireScopes(auth, "admin"); ierrors.HTTPStatus(err) != http.StatusForbidden {
		t.Errorf("RequireScopes(admin) = %v, want 403", err)
	}

	meta, err := svcs.Metadata.GetMetadata(context.Background())
	if err != nil {
		t.Fatalf("GetMetadata() error = %v", err)
	}
	want := &ProtectedResourceMetadata{
		Resource:               "https://transcripts.example.com",
		AuthorizationServers:   []string{as.URL},
		ScopesSupported:        []string{"transcripts:read"},
		BearerMethodsSupported: []string{"header"},
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("GetMetadata() mismatch (-want +got):\n%s", diff)
	}

	doc, err := svcs.Discovery.Metadata(context.Background())
	if err != nil {
		t.Fatalf("Discovery.Metadata() error = %v", err)
	}
	if doc["authorization_endpoint"] != as.URL+"/auth" {
		t.Errorf("authorization_endpoint = %v", doc["authorization_endpoint"])
	}
}

func TestNewServices_UnreachableProvider(t *testing.T) {
	t.Parallel()

	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey() error = %v", err)
	}

	svcs, err := NewServices(&Config{
		BaseURL:        "http://localhost:8080",
		IssuerURL:      url,
		AuthServerURL:  url,
		JWKSCacheTTL:   time.Hour,
		JWKSTimeout:    200 * time.Millisecond,
		TokenCacheTTL:  time.Minute,
		TokenCacheSize: 8,
	})
	if err != nil {
		t.Fatalf("NewServices() error = %v", err)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "user-1", "iss": url, "exp": time.Now().Add(time.Hour).Unix(),
	})
	tok.Header["kid"] = "k1"
	raw, _ := tok.SignedString(priv)

	_, err = svcs.Validator.ValidateToken(context.Background(), raw)
	if !IsDependencyFailure(err) {
		t.Fatalf("IsDependencyFailure(%v) = false", err)
	}
	if got := FailureReason(err); got != ReasonProviderUnreachable {
		t.Errorf("FailureReason() = %q, want %q", got, ReasonProviderUnreachable)
	}
	if !errors.Is(err, ierrors.ErrUnavailable) {
		t.Errorf("error does not match ErrUnavailable: %v", err)
	}
}

func TestScopeChecker_NilAuth(t *testing.T) {
	t.Parallel()

	checker := NewScopeChecker()
	if err := checker.RequireScopes(nil); err != nil {
		t.Errorf("RequireScopes(nil) with nothing required = %v", err)
	}
	if err := checker.RequireScopes(nil, "x"); err == nil {
		t.Error("RequireScopes(nil, x) expected error")
	}
	if err := checker.RequireAnyScope(AnonymousAuthContext(), "x"); err == nil {
		t.Error("RequireAnyScope(anonymous, x) expected error")
	}
}
