// Package config loads the server configuration from the process
// environment. The environment variable names are a published contract and
// carry no namespace prefix.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rgoodman/github-projects-mcp/internal/auth"
)

// Transport names accepted in MCP_TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config holds all environment-sourced settings.
type Config struct {
	// Token is resolved through the auth package, not envconfig, so the
	// gh CLI fallback applies. The server fails to start without it.
	Token string `ignored:"true"`

	MaxRetries int    `envconfig:"GITHUB_API_MAX_RETRIES" default:"3"`
	RetryDelay int    `envconfig:"GITHUB_API_RETRY_DELAY" default:"60"` // seconds
	Transport  string `envconfig:"MCP_TRANSPORT" default:"stdio"`
	Host       string `envconfig:"MCP_HOST" default:"localhost"`
	Port       int    `envconfig:"MCP_PORT" default:"8000"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the environment, resolves the GitHub token, and validates the
// result. A missing token or unknown transport is a startup failure.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	token, err := auth.GetToken()
	if err != nil {
		return nil, err
	}
	cfg.Token = token

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportSSE, TransportHTTP:
	default:
		return fmt.Errorf("invalid transport %q: must be one of stdio, sse, http", c.Transport)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("GITHUB_API_MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("GITHUB_API_RETRY_DELAY must not be negative, got %d", c.RetryDelay)
	}
	return nil
}

// RetryDelayDuration returns the configured retry delay as a duration.
func (c *Config) RetryDelayDuration() time.Duration {
	return time.Duration(c.RetryDelay) * time.Second
}

// ListenAddr returns the host:port pair for network-exposed transports.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
