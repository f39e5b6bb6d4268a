// Package config provides configuration management for the YouTube transcript MCP server.
// Configuration is resolved once at startup from environment variables and an optional
// dotenv file, with sensible defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read when present and no explicit env file is given.
const DefaultEnvFile = ".env"

// Config holds the complete server configuration in a flat structure.
type Config struct {
	// Server settings
	// Host is the interface both HTTP surfaces bind to.
	Host string

	// MCPPort is the port of the protocol (JSON-RPC) surface.
	MCPPort int

	// RESTPort is the port of the REST convenience surface.
	RESTPort int

	// BaseURL is the canonical base URL of the protected resource (e.g., "https://example.com").
	// It is advertised as the resource identifier in protected resource metadata.
	BaseURL string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum duration to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown of both surfaces.
	ShutdownTimeout time.Duration

	// Environment is an informational deployment name reported by the health endpoint.
	Environment string

	// Logging settings
	LogLevel          string
	LogFormat         string
	LogFile           string
	LogFileMaxSizeMB  int
	LogFileMaxBackups int
	LogFileMaxAgeDays int

	// OAuth settings
	// OAuthEnabled toggles bearer-token authentication. It defaults to true.
	OAuthEnabled bool

	// IssuerURL is the exact issuer (iss) string access tokens must carry.
	IssuerURL string

	// AuthServerURL is the authorization server base URL used for discovery.
	// Defaults to IssuerURL.
	AuthServerURL string

	// JWKSURL overrides JWKS discovery when set.
	JWKSURL string

	// Audience is the expected audience (aud) claim. Empty disables the audience check.
	Audience string

	// TokenCacheTTL is the fixed validation cache window. Zero disables caching.
	TokenCacheTTL time.Duration

	// TokenCacheSize bounds the number of cached validation results.
	TokenCacheSize int

	// JWKSCacheTTL is how long a fetched key set stays fresh.
	JWKSCacheTTL time.Duration

	// JWKSTimeout bounds every JWKS and discovery fetch.
	JWKSTimeout time.Duration

	// ClockSkew is the allowed clock skew for token expiration validation.
	ClockSkew time.Duration

	// RequiredScopes must all be granted to invoke tools.
	RequiredScopes []string

	// ScopesSupported is advertised in protected resource metadata.
	ScopesSupported []string

	// DiscoveryTimeout bounds the authorization server metadata passthrough.
	DiscoveryTimeout time.Duration

	// Transcript settings
	TranscriptTimeout        time.Duration
	TranscriptMaxRetries     int
	TranscriptRetryBaseDelay time.Duration
	TranscriptLanguage       string

	// HTTP extras
	CORSAllowedOrigins []string
	MetricsEnabled     bool
}

// defaults mirrors the documented configuration surface.
var defaults = map[string]any{
	"server_host":             "0.0.0.0",
	"mcp_port":                8080,
	"rest_api_port":           8081,
	"server_base_url":         "http://localhost:8080",
	"server_read_timeout":     "30s",
	"server_write_timeout":    "30s",
	"server_idle_timeout":     "120s",
	"server_shutdown_timeout": "30s",
	"environment":             "development",

	"log_level":             "INFO",
	"log_format":            "json",
	"log_file":              "",
	"log_file_max_size_mb":  100,
	"log_file_max_backups":  5,
	"log_file_max_age_days": 28,

	"oauth_enabled":           true,
	"oauth_issuer_url":        "",
	"oauth_server_url":        "",
	"oauth_jwks_url":          "",
	"oauth_audience":          "",
	"oauth_token_cache_ttl":   60,
	"oauth_token_cache_size":  1024,
	"oauth_jwks_cache_ttl":    "1h",
	"oauth_jwks_timeout":      "500ms",
	"oauth_clock_skew":        "30s",
	"oauth_required_scopes":   "",
	"oauth_scopes_supported":  "",
	"oauth_discovery_timeout": "5s",

	"transcript_timeout":          "5s",
	"transcript_max_retries":      2,
	"transcript_retry_base_delay": "1s",
	"transcript_language":         "en",

	"cors_allowed_origins": "",
	"metrics_enabled":      true,
}

// Load reads configuration from the environment and returns a validated Config.
//
// envFile names a dotenv file to read. When empty, DefaultEnvFile is read if it
// exists. Real environment variables always take precedence over file values.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := readEnvFile(v, envFile); err != nil {
		return nil, err
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readEnvFile merges a dotenv file into v. A missing default file is not an error.
func readEnvFile(v *viper.Viper, envFile string) error {
	path := envFile
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		path = DefaultEnvFile
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("env file %q not found", path)
		}
		return fmt.Errorf("failed to read env file %q: %w", path, err)
	}
	return nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	var p parser
	cfg := &Config{
		Host:        v.GetString("server_host"),
		MCPPort:     p.integer(v, "mcp_port"),
		RESTPort:    p.integer(v, "rest_api_port"),
		BaseURL:     v.GetString("server_base_url"),
		Environment: v.GetString("environment"),

		ReadTimeout:     p.duration(v, "server_read_timeout"),
		WriteTimeout:    p.duration(v, "server_write_timeout"),
		IdleTimeout:     p.duration(v, "server_idle_timeout"),
		ShutdownTimeout: p.duration(v, "server_shutdown_timeout"),

		LogLevel:          strings.ToUpper(v.GetString("log_level")),
		LogFormat:         strings.ToLower(v.GetString("log_format")),
		LogFile:           v.GetString("log_file"),
		LogFileMaxSizeMB:  p.integer(v, "log_file_max_size_mb"),
		LogFileMaxBackups: p.integer(v, "log_file_max_backups"),
		LogFileMaxAgeDays: p.integer(v, "log_file_max_age_days"),

		OAuthEnabled:     p.boolean(v, "oauth_enabled"),
		IssuerURL:        v.GetString("oauth_issuer_url"),
		AuthServerURL:    v.GetString("oauth_server_url"),
		JWKSURL:          v.GetString("oauth_jwks_url"),
		Audience:         v.GetString("oauth_audience"),
		TokenCacheTTL:    time.Duration(p.integer(v, "oauth_token_cache_ttl")) * time.Second,
		TokenCacheSize:   p.integer(v, "oauth_token_cache_size"),
		JWKSCacheTTL:     p.duration(v, "oauth_jwks_cache_ttl"),
		JWKSTimeout:      p.duration(v, "oauth_jwks_timeout"),
		ClockSkew:        p.duration(v, "oauth_clock_skew"),
		RequiredScopes:   parseCommaSeparated(v.GetString("oauth_required_scopes")),
		ScopesSupported:  parseCommaSeparated(v.GetString("oauth_scopes_supported")),
		DiscoveryTimeout: p.duration(v, "oauth_discovery_timeout"),

		TranscriptTimeout:        p.duration(v, "transcript_timeout"),
		TranscriptMaxRetries:     p.integer(v, "transcript_max_retries"),
		TranscriptRetryBaseDelay: p.duration(v, "transcript_retry_base_delay"),
		TranscriptLanguage:       v.GetString("transcript_language"),

		CORSAllowedOrigins: parseCommaSeparated(v.GetString("cors_allowed_origins")),
		MetricsEnabled:     p.boolean(v, "metrics_enabled"),
	}
	if p.err != nil {
		return nil, p.err
	}

	if cfg.AuthServerURL == "" {
		cfg.AuthServerURL = cfg.IssuerURL
	}

	return cfg, nil
}

// parser converts raw viper values and keeps the first conversion error.
type parser struct {
	err error
}

func (p *parser) duration(v *viper.Viper, key string) time.Duration {
	d, err := cast.ToDurationE(v.Get(key))
	if err != nil {
		p.fail(key, err)
		return 0
	}
	return d
}

func (p *parser) integer(v *viper.Viper, key string) int {
	n, err := cast.ToIntE(v.Get(key))
	if err != nil {
		p.fail(key, err)
		return 0
	}
	return n
}

func (p *parser) boolean(v *viper.Viper, key string) bool {
	b, err := cast.ToBoolE(v.Get(key))
	if err != nil {
		p.fail(key, err)
		return false
	}
	return b
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
	}
}

// parseCommaSeparated parses a comma-separated value into a string slice.
// Empty values are filtered out. Returns nil if nothing remains.
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// MCPAddr returns the listen address of the protocol surface.
func (c *Config) MCPAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.MCPPort))
}

// RESTAddr returns the listen address of the REST surface.
func (c *Config) RESTAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.RESTPort))
}

// String returns a string representation of the configuration (for debugging).
// No secrets are held in Config, so nothing needs redaction.
func (c *Config) String() string {
	return fmt.Sprintf("Config{MCPAddr: %s, RESTAddr: %s, BaseURL: %s, Environment: %s, OAuthEnabled: %t, IssuerURL: %s, JWKSURL: %s, Audience: %s, TokenCacheTTL: %v, JWKSTimeout: %v, ClockSkew: %v, TranscriptTimeout: %v, TranscriptMaxRetries: %d}",
		c.MCPAddr(), c.RESTAddr(), c.BaseURL, c.Environment, c.OAuthEnabled,
		c.IssuerURL, c.JWKSURL, c.Audience, c.TokenCacheTTL, c.JWKSTimeout,
		c.ClockSkew, c.TranscriptTimeout, c.TranscriptMaxRetries)
}
