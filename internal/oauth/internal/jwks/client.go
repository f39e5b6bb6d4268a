// Package jwks resolves token signing keys from the authorization server's
// published JSON Web Key Set.
package jwks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"golang.org/x/sync/singleflight"

	ierrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth/oautherr"
)

// Discovery document paths tried in order when no JWKS URL is configured.
var discoveryPaths = []string{
	"/.well-known/openid-configuration",
	"/.well-known/oauth-authorization-server",
}

// maxDocumentSize bounds discovery and JWKS response bodies.
const maxDocumentSize = 1 << 20

// authorizationServerMetadata is the subset of discovery metadata needed to
// locate the key set.
type authorizationServerMetadata struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// Options configures a Client.
type Options struct {
	// ServerURL is the authorization server base URL used for discovery.
	ServerURL string

	// JWKSURL, when set, is used directly and discovery is skipped.
	JWKSURL string

	// CacheTTL is how long a fetched key set is considered fresh.
	CacheTTL time.Duration

	// Timeout bounds every network call.
	Timeout time.Duration

	HTTPClient *http.Client
	Now        func() time.Time
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Client fetches and caches the JWKS of one authorization server.
type Client struct {
	serverURL  string
	timeout    time.Duration
	httpClient *http.Client
	cache      *Cache
	group      singleflight.Group
	logger     *slog.Logger
	metrics    *metrics.Metrics

	mu      sync.RWMutex
	jwksURL string // configured or discovered
}

// NewClient creates a new JWKS client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}

	return &Client{
		serverURL:  strings.TrimRight(opts.ServerURL, "/"),
		timeout:    timeout,
		httpClient: httpClient,
		cache:      NewCache(opts.CacheTTL, opts.Now),
		logger:     logger,
		metrics:    opts.Metrics,
		jwksURL:    opts.JWKSURL,
	}
}

// GetKey returns the public key for keyID. A fresh cached set is used when
// it contains the key; otherwise the set is fetched exactly once.
func (c *Client) GetKey(ctx context.Context, keyID string) (any, error) {
	if keyID == "" {
		return nil, oautherr.NewKeyNotFoundError("GetKey", keyID)
	}

	if set, fresh := c.cache.Get(); fresh {
		if key, ok := set.LookupKeyID(keyID); ok {
			return exportKey(key, keyID)
		}
	}

	set, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	key, ok := set.LookupKeyID(keyID)
	if !ok {
		return nil, oautherr.NewKeyNotFoundError("GetKey", keyID)
	}
	return exportKey(key, keyID)
}

// RefreshKeys forces a fetch of the key set.
func (c *Client) RefreshKeys(ctx context.Context) error {
	_, err := c.fetch(ctx)
	return err
}

// fetch downloads and caches the key set. Concurrent callers share one fetch.
func (c *Client) fetch(ctx context.Context) (jwk.Set, error) {
	v, err, _ := c.group.Do("jwks", func() (any, error) {
		set, err := c.download(ctx)
		c.recordFetch(err)
		return set, err
	})
	if err != nil {
		c.logger.Warn("jwks fetch failed", "reason", ierrors.Reason(err), "error", err)
		return nil, err
	}
	return v.(jwk.Set), nil
}

func (c *Client) download(ctx context.Context) (jwk.Set, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	jwksURL, err := c.resolveJWKSURL(ctx)
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, jwksURL)
	if err != nil {
		return nil, oautherr.NewProviderUnreachableError("fetch", jwksURL, err)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return nil, oautherr.NewMalformedJWKSError("fetch", jwksURL, err)
	}
	if set.Len() == 0 {
		return nil, oautherr.NewMalformedJWKSError("fetch", jwksURL, errors.New("key set is empty"))
	}

	c.cache.Set(set)
	c.logger.Debug("jwks refreshed", "jwks_url", jwksURL, "keys", set.Len())
	return set, nil
}

// resolveJWKSURL returns the configured JWKS URL or discovers it from the
// authorization server metadata. A discovered URL is memoised.
func (c *Client) resolveJWKSURL(ctx context.Context) (string, error) {
	c.mu.RLock()
	cached := c.jwksURL
	c.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	if c.serverURL == "" {
		return "", oautherr.NewProviderUnreachableError("resolveJWKSURL", "",
			errors.New("no authorization server or JWKS URL configured"))
	}

	var lastErr error
	for _, path := range discoveryPaths {
		body, err := c.get(ctx, c.serverURL+path)
		if err != nil {
			lastErr = err
			continue
		}

		var meta authorizationServerMetadata
		if err := json.Unmarshal(body, &meta); err != nil {
			lastErr = fmt.Errorf("decode %s: %w", path, err)
			continue
		}
		if meta.JWKSURI == "" {
			lastErr = fmt.Errorf("%s has no jwks_uri", path)
			continue
		}

		c.mu.Lock()
		c.jwksURL = meta.JWKSURI
		c.mu.Unlock()
		return meta.JWKSURI, nil
	}

	return "", oautherr.NewProviderUnreachableError("resolveJWKSURL", c.serverURL, lastErr)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned status %d", url, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}

func (c *Client) recordFetch(err error) {
	if err == nil {
		c.metrics.JWKSFetch("ok")
		return
	}
	c.metrics.JWKSFetch(ierrors.Reason(err))
}

func exportKey(key jwk.Key, keyID string) (any, error) {
	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, oautherr.NewMalformedJWKSError("exportKey", keyID, err)
	}
	return raw, nil
}
