// Package discovery proxies the authorization server's discovery metadata
// so clients can start the authorization code flow from this server.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	ierrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
	oauthconst "github.com/jamesprial/mcp-youtube-transcript/pkg/oauth"
)

const (
	domainDiscovery = "discovery"

	openIDConfigurationPath = "/.well-known/openid-configuration"

	// Key added when the upstream document does not advertise PKCE methods.
	codeChallengeMethodsKey = "code_challenge_methods_supported"

	maxDocumentSize = 1 << 20
)


// Options configures a Service.
type Options struct {
	ServerURL  string
	Timeout    time.Duration
	CacheTTL   time.Duration
	HTTPClient *http.Client
	Now        func() time.Time
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Service fetches and caches the upstream discovery document.
type Service struct {
	serverURL  string
	timeout    time.Duration
	ttl        time.Duration
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
	metrics    *metrics.Metrics
	group      singleflight.Group

	mu        sync.RWMutex
	doc       map[string]any
	fetchedAt time.Time
}

// NewService creates a discovery service for the authorization server at
// opts.ServerURL.
func NewService(opts Options) *Service {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Service{
		serverURL:  strings.TrimRight(opts.ServerURL, "/"),
		timeout:    timeout,
		ttl:        opts.CacheTTL,
		httpClient: httpClient,
		now:        now,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// Metadata returns the authorization server metadata, fetching it when the
// cached copy is missing or older than the cache TTL.
func (s *Service) Metadata(ctx context.Context) (map[string]any, error) {
	if doc, ok := s.cached(); ok {
		s.logger.Debug("authorization server metadata cache hit")
		return doc, nil
	}

	v, err, _ := s.group.Do("metadata", func() (any, error) {
		doc, err := s.fetch(ctx)
		if err != nil {
			s.metrics.DiscoveryFetch("failure")
			return nil, err
		}
		s.metrics.DiscoveryFetch("ok")

		s.mu.Lock()
		s.doc = doc
		s.fetchedAt = s.now()
		s.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		s.logger.Error("authorization server metadata fetch failed",
			"url", s.serverURL+openIDConfigurationPath, "error", err)
		return nil, err
	}
	return maps.Clone(v.(map[string]any)), nil
}

func (s *Service) cached() (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.doc == nil || !s.now().Before(s.fetchedAt.Add(s.ttl)) {
		return nil, false
	}
	return maps.Clone(s.doc), true
}

func (s *Service) fetch(ctx context.Context) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := s.serverURL + openIDConfigurationPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unavailable("fetch", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, unavailable("fetch", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("fetch", fmt.Errorf("GET %s returned status %d", url, resp.StatusCode))
	}

	var doc map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentSize)).Decode(&doc); err != nil {
		return nil, unavailable("fetch", fmt.Errorf("decode metadata: %w", err))
	}
	if doc == nil {
		return nil, unavailable("fetch", fmt.Errorf("metadata document is not an object"))
	}

	if _, ok := doc[codeChallengeMethodsKey]; !ok {
		doc[codeChallengeMethodsKey] = oauthconst.DefaultCodeChallengeMethods()
		s.logger.Info("added PKCE methods to authorization server metadata")
	}

	s.logger.Info("authorization server metadata fetched", "issuer", doc["issuer"])
	return doc, nil
}

func unavailable(op string, err error) *ierrors.DomainError {
	return ierrors.New(domainDiscovery, op, ierrors.ErrUnavailable, err).
		WithCode(ierrors.CodeServiceUnavailable).
		WithMessage("Could not connect to the authentication provider")
}
