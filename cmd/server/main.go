// Package main is the entry point of the YouTube transcript MCP server.
// It wires configuration, logging, OAuth, the tool registry and both HTTP
// surfaces, and shuts them down gracefully on SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamesprial/mcp-youtube-transcript/internal/config"
	"github.com/jamesprial/mcp-youtube-transcript/internal/logging"
	"github.com/jamesprial/mcp-youtube-transcript/internal/mcp"
	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
	"github.com/jamesprial/mcp-youtube-transcript/internal/oauth"
	"github.com/jamesprial/mcp-youtube-transcript/internal/tools"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport"
	"github.com/jamesprial/mcp-youtube-transcript/internal/youtube"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "youtube-transcript-server",
		Short:         "MCP server exposing YouTube transcripts behind OAuth bearer authentication",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, envFile)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file to load (defaults to .env when present)")
	return cmd
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closer, err := logging.New(logging.Options{
		Level:         cfg.LogLevel,
		Format:        cfg.LogFormat,
		File:          cfg.LogFile,
		FileMaxSizeMB: cfg.LogFileMaxSizeMB,
		FileBackups:   cfg.LogFileMaxBackups,
		FileMaxAge:    cfg.LogFileMaxAgeDays,
	})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = closer.Close() }()

	logger.Info("configuration loaded", "config", cfg.String())
	if !cfg.OAuthEnabled {
		logger.Warn("authentication is DISABLED: every request is served as the anonymous subject")
	}

	m := metrics.New()

	oauthServices, err := oauth.NewServices(&oauth.Config{
		BaseURL:          cfg.BaseURL,
		IssuerURL:        cfg.IssuerURL,
		AuthServerURL:    cfg.AuthServerURL,
		JWKSURL:          cfg.JWKSURL,
		Audience:         cfg.Audience,
		ScopesSupported:  cfg.ScopesSupported,
		JWKSCacheTTL:     cfg.JWKSCacheTTL,
		JWKSTimeout:      cfg.JWKSTimeout,
		ClockSkew:        cfg.ClockSkew,
		TokenCacheTTL:    cfg.TokenCacheTTL,
		TokenCacheSize:   cfg.TokenCacheSize,
		DiscoveryTimeout: cfg.DiscoveryTimeout,
		Logger:           logger,
		Metrics:          m,
	})
	if err != nil {
		return fmt.Errorf("create oauth services: %w", err)
	}
	if cfg.OAuthEnabled {
		warmKeys(ctx, logger, oauthServices.Keys)
	}

	fetcher := newFetcher(cfg, youtube.NewLibrarySource(nil), logger, m)

	handler, registry := mcp.NewMCPServices(&mcp.Config{
		ServerName:    mcp.DefaultServerName,
		ServerVersion: version,
		Metrics:       m,
	})
	if err := tools.RegisterAll(registry, fetcher); err != nil {
		return fmt.Errorf("register tools: %w", err)
	}
	logger.Info("tools registered", "tools", registry.Names())

	services, err := transport.NewTransportServices(&transport.Config{
		Server:     cfg,
		Version:    version,
		OAuth:      oauthServices,
		MCPHandler: handler,
		Tools:      registry,
		Metrics:    m,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("create transport services: %w", err)
	}

	return serve(ctx, logger, cfg.ShutdownTimeout,
		namedServer{name: transport.SurfaceMCP, server: services.MCPServer},
		namedServer{name: transport.SurfaceREST, server: services.RESTServer},
	)
}

// warmKeys fetches the key set before serving so the first request does not
// pay for discovery. Failure is not fatal: validation fetches on demand.
func warmKeys(ctx context.Context, logger *slog.Logger, keys oauth.KeySource) {
	if err := keys.RefreshKeys(ctx); err != nil {
		logger.Warn("initial jwks fetch failed, keys will be fetched on first use", "error", err)
		return
	}
	logger.Info("jwks loaded")
}

// newFetcher builds the transcript fetcher from validated configuration.
// The retry budget is passed through as configured, so zero disables retries.
func newFetcher(cfg *config.Config, source youtube.Source, logger *slog.Logger, m *metrics.Metrics) *youtube.Fetcher {
	return youtube.NewFetcher(source, youtube.Options{
		Timeout:    cfg.TranscriptTimeout,
		MaxRetries: cfg.TranscriptMaxRetries,
		BaseDelay:  cfg.TranscriptRetryBaseDelay,
		Language:   cfg.TranscriptLanguage,
		Logger:     logger,
		Metrics:    m,
	})
}
