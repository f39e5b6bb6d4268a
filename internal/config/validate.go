package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := validateOAuth(cfg); err != nil {
		return fmt.Errorf("invalid oauth config: %w", err)
	}

	if err := validateTranscript(cfg); err != nil {
		return fmt.Errorf("invalid transcript config: %w", err)
	}

	return nil
}

// isLocalhost returns true if the host is localhost or a loopback address.
// It handles bare hostnames and host:port combinations.
func isLocalhost(host string) bool {
	hostname := host
	if h, _, found := strings.Cut(host, ":"); found {
		hostname = h
	}
	return hostname == "localhost" || hostname == "127.0.0.1"
}

// validateHTTPURL checks that raw is an absolute http(s) URL and that plain
// http is only used against loopback hosts.
func validateHTTPURL(name, raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}

	if !parsedURL.IsAbs() {
		return fmt.Errorf("%s must be an absolute URL", name)
	}

	if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		return fmt.Errorf("%s must use http or https scheme", name)
	}

	if parsedURL.Scheme == "http" && !isLocalhost(parsedURL.Host) {
		return fmt.Errorf("%s must use https scheme for non-localhost hosts", name)
	}

	return nil
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535", name)
	}
	return nil
}

// validateServer validates the server-related fields.
func validateServer(cfg *Config) error {
	if err := validatePort("MCP_PORT", cfg.MCPPort); err != nil {
		return err
	}
	if err := validatePort("REST_API_PORT", cfg.RESTPort); err != nil {
		return err
	}
	if cfg.MCPPort == cfg.RESTPort {
		return fmt.Errorf("MCP_PORT and REST_API_PORT must differ")
	}

	if cfg.BaseURL == "" {
		return fmt.Errorf("SERVER_BASE_URL is required")
	}
	if err := validateHTTPURL("SERVER_BASE_URL", cfg.BaseURL); err != nil {
		return err
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}

	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	// 0 means no idle timeout
	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	return nil
}

var logLevels = map[string]bool{
	"DEBUG":    true,
	"INFO":     true,
	"WARN":     true,
	"WARNING":  true,
	"ERROR":    true,
	"CRITICAL": true,
}

// validateLogging validates the logging-related fields.
func validateLogging(cfg *Config) error {
	if !logLevels[cfg.LogLevel] {
		return fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARNING, ERROR, CRITICAL", cfg.LogLevel)
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text")
	}

	if cfg.LogFile != "" && cfg.LogFileMaxSizeMB <= 0 {
		return fmt.Errorf("LOG_FILE_MAX_SIZE_MB must be positive")
	}

	return nil
}

// validateOAuth validates the OAuth-related fields.
// Endpoint settings are only required while authentication is enabled.
func validateOAuth(cfg *Config) error {
	if cfg.TokenCacheTTL < 0 {
		return fmt.Errorf("OAUTH_TOKEN_CACHE_TTL must be non-negative")
	}

	if cfg.TokenCacheSize <= 0 {
		return fmt.Errorf("OAUTH_TOKEN_CACHE_SIZE must be positive")
	}

	if cfg.JWKSCacheTTL <= 0 {
		return fmt.Errorf("OAUTH_JWKS_CACHE_TTL must be positive")
	}

	if cfg.JWKSTimeout <= 0 {
		return fmt.Errorf("OAUTH_JWKS_TIMEOUT must be positive")
	}

	if cfg.ClockSkew < 0 {
		return fmt.Errorf("OAUTH_CLOCK_SKEW must be non-negative")
	}

	if cfg.DiscoveryTimeout <= 0 {
		return fmt.Errorf("OAUTH_DISCOVERY_TIMEOUT must be positive")
	}

	if !cfg.OAuthEnabled {
		return nil
	}

	if cfg.IssuerURL == "" {
		return fmt.Errorf("OAUTH_ISSUER_URL is required when OAUTH_ENABLED is true")
	}
	if err := validateHTTPURL("OAUTH_ISSUER_URL", cfg.IssuerURL); err != nil {
		return err
	}

	if err := validateHTTPURL("OAUTH_SERVER_URL", cfg.AuthServerURL); err != nil {
		return err
	}

	if cfg.JWKSURL != "" {
		if err := validateHTTPURL("OAUTH_JWKS_URL", cfg.JWKSURL); err != nil {
			return err
		}
	}

	return nil
}

// validateTranscript validates the transcript retrieval fields.
func validateTranscript(cfg *Config) error {
	if cfg.TranscriptTimeout <= 0 {
		return fmt.Errorf("TRANSCRIPT_TIMEOUT must be positive")
	}

	if cfg.TranscriptMaxRetries < 0 {
		return fmt.Errorf("TRANSCRIPT_MAX_RETRIES must be non-negative")
	}

	if cfg.TranscriptRetryBaseDelay <= 0 {
		return fmt.Errorf("TRANSCRIPT_RETRY_BASE_DELAY must be positive")
	}

	if cfg.TranscriptLanguage == "" {
		return fmt.Errorf("TRANSCRIPT_LANGUAGE is required")
	}

	return nil
}
