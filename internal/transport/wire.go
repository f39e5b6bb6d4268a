package transport

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jamesprial/mcp-youtube-transcript/internal/config"
	"github.com/jamesprial/mcp-youtube-transcript/internal/mcp"
	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/internal/handlers"
	transporthttp "github.com/jamesprial/mcp-youtube-transcript/internal/transport/internal/http"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/internal/middleware"
)

// Surface names used as the metrics label.
const (
	SurfaceMCP  = "mcp"
	SurfaceREST = "rest"
)

// NewServer creates an HTTP server for addr with the timeouts from cfg.
func NewServer(cfg *config.Config, addr string, handler http.Handler) Server {
	return transporthttp.NewServer(transporthttp.ServerOptions{
		Addr:         addr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, handler)
}

// NewRouter creates a new HTTP router backed by http.ServeMux.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// NewResponder creates the envelope writer. metadataURL is advertised in
// WWW-Authenticate challenges.
func NewResponder(metadataURL string, logger *slog.Logger) Responder {
	return transporthttp.NewResponder(metadataURL, logger)
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// Server is the resolved process configuration.
	Server *config.Config

	// Version is reported by the health endpoint.
	Version string

	// OAuth provides token validation, metadata and discovery.
	// Validator may be nil only when authentication is disabled.
	OAuth *oauth.Services

	// MCPHandler processes JSON-RPC requests.
	MCPHandler mcp.Handler

	// Tools is the registry behind the REST surface and health.
	Tools mcp.ToolRegistry

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Services holds both HTTP surfaces.
type Services struct {
	MCPServer  Server
	RESTServer Server
	MCPRouter  Router
	RESTRouter Router
}

// NewTransportServices wires middleware, handlers and servers for the
// protocol and REST surfaces.
//
// Both surfaces share one middleware chain: correlation, recovery, logging,
// metrics, CORS and authentication, outermost first.
func NewTransportServices(cfg *Config) (*Services, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	metadataURL := cfg.OAuth.Metadata.GetMetadataURL()
	responder := NewResponder(metadataURL, logger)

	auth := middleware.NewAuthMiddleware(middleware.AuthOptions{
		Enabled:   cfg.Server.OAuthEnabled,
		Validator: cfg.OAuth.Validator,
		Scopes:    cfg.OAuth.Scopes,
		Responder: responder,
		Logger:    logger,
		Metrics:   cfg.Metrics,
	})
	requireScopes := auth.RequireScopes(cfg.Server.RequiredScopes...)

	var discovery oauth.DiscoveryService
	if cfg.Server.OAuthEnabled && cfg.Server.AuthServerURL != "" {
		discovery = cfg.OAuth.Discovery
	}

	health := handlers.NewHealthHandler(handlers.HealthOptions{
		Version:     cfg.Version,
		Environment: cfg.Server.Environment,
		Tools:       cfg.Tools,
		Responder:   responder,
	})
	metadata := handlers.NewMetadataHandler(cfg.OAuth.Metadata, responder)
	discoveryHandler := handlers.NewDiscoveryHandler(discovery, responder)
	register := handlers.NewRegisterHandler(responder)

	newSurface := func(surface string) Router {
		r := NewRouter()
		r.Use(
			middleware.NewCorrelationMiddleware(),
			middleware.NewRecoveryMiddleware(responder, logger),
			middleware.NewLoggingMiddleware(logger.With("surface", surface)),
			middleware.NewMetricsMiddleware(cfg.Metrics, surface),
			middleware.NewCORSMiddleware(cfg.Server.CORSAllowedOrigins),
			auth.Authenticate(),
		)
		r.Handle("GET /health", health)
		r.Handle("GET /.well-known/oauth-protected-resource", metadata)
		r.Handle("GET /.well-known/oauth-authorization-server", discoveryHandler)
		r.Handle("POST /register", register)
		if cfg.Server.MetricsEnabled && cfg.Metrics != nil {
			r.Handle("GET /metrics", cfg.Metrics.Handler())
		}
		return r
	}

	mcpRouter := newSurface(SurfaceMCP)
	mcpRouter.Handle("/mcp", requireScopes(handlers.NewMCPHandler(cfg.MCPHandler, logger)))

	restRouter := newSurface(SurfaceREST)
	restRouter.Handle("GET /tools/list", handlers.NewToolsListHandler(cfg.Tools, responder))
	restRouter.Handle("POST /tools/invoke", requireScopes(handlers.NewToolsInvokeHandler(cfg.Tools, responder, logger)))

	return &Services{
		MCPServer:  NewServer(cfg.Server, cfg.Server.MCPAddr(), mcpRouter),
		RESTServer: NewServer(cfg.Server, cfg.Server.RESTAddr(), restRouter),
		MCPRouter:  mcpRouter,
		RESTRouter: restRouter,
	}, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg == nil:
		return errors.New("config cannot be nil")
	case cfg.Server == nil:
		return errors.New("server config cannot be nil")
	case cfg.OAuth == nil || cfg.OAuth.Metadata == nil:
		return errors.New("oauth metadata service cannot be nil")
	case cfg.Server.OAuthEnabled && cfg.OAuth.Validator == nil:
		return errors.New("oauth validator cannot be nil when authentication is enabled")
	case cfg.MCPHandler == nil:
		return errors.New("mcp handler cannot be nil")
	case cfg.Tools == nil:
		return errors.New("tool registry cannot be nil")
	}
	return nil
}
