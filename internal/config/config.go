// Package config loads and validates application configuration from YAML files,
// an optional .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Domains       DomainsConfig       `yaml:"domains"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Storage       StorageConfig       `yaml:"storage"`
	Sessions      SessionsConfig      `yaml:"sessions"`
	Menu          MenuConfig          `yaml:"menu"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig describes HTTP server settings.
type ServerConfig struct {
	Port            int             `yaml:"port"`
	ReadTimeout     time.Duration   `yaml:"read_timeout"`
	WriteTimeout    time.Duration   `yaml:"write_timeout"`
	HandlerTimeout  time.Duration   `yaml:"handler_timeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	CORS            CORSConfig      `yaml:"cors"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig describes Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// RateLimitConfig describes the per-device request limiter.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"`
	RequestsPerSec  float64       `yaml:"requests_per_sec"`
	Burst           int           `yaml:"burst"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
}

// AuthConfig describes how sessions are validated.
type AuthConfig struct {
	// Checker selects the implementation: http, jwt or static.
	Checker        string               `yaml:"checker"`
	ProfileURL     string               `yaml:"profile_url"`
	Timeout        time.Duration        `yaml:"timeout"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	JWT            JWTConfig            `yaml:"jwt"`
	StaticRole     string               `yaml:"static_role"`
}

// CircuitBreakerConfig describes circuit breaker settings for the auth backend.
type CircuitBreakerConfig struct {
	FailureThreshold   int           `yaml:"failure_threshold"`
	SuccessThreshold   int           `yaml:"success_threshold"`
	Timeout            time.Duration `yaml:"timeout"`
	ErrorRateThreshold float64       `yaml:"error_rate_threshold"`
	ErrorRateWindow    time.Duration `yaml:"error_rate_window"`
}

// JWTConfig describes bearer token verification settings.
type JWTConfig struct {
	Issuer       string        `yaml:"issuer"`
	Audience     string        `yaml:"audience"`
	JWKSURL      string        `yaml:"jwks_url"`
	JWKSCacheTTL time.Duration `yaml:"jwks_cache_ttl"`
	Algorithms   []string      `yaml:"algorithms"`
	RoleClaim    string        `yaml:"role_claim"`
}

// DomainsConfig describes auth-only domain detection.
type DomainsConfig struct {
	AuthOnlyHosts []string `yaml:"auth_only_hosts"`
	AppSubdomains bool     `yaml:"app_subdomains"`
	AllowedPaths  []string `yaml:"allowed_paths"`
}

// CatalogConfig describes where to find catalog override files.
type CatalogConfig struct {
	Directories []string `yaml:"directories"`
}

// StorageConfig describes device preference persistence.
type StorageConfig struct {
	// Driver selects the store: memory, redis or postgres.
	Driver          string        `yaml:"driver"`
	DSNEnv          string        `yaml:"dsn_env"`
	RedisURLEnv     string        `yaml:"redis_url_env"`
	LastPageTTL     time.Duration `yaml:"last_page_ttl"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// SessionsConfig describes the in-process navigation session registry.
type SessionsConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// MenuConfig describes the navigation menu source.
type MenuConfig struct {
	// File overrides the embedded menu definition when set.
	File string `yaml:"file"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	Tracing  TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled           bool    `yaml:"enabled"`
	Exporter          string  `yaml:"exporter"`
	Endpoint          string  `yaml:"endpoint"`
	SamplingRate      float64 `yaml:"sampling_rate"`
	ForceSampleErrors bool    `yaml:"force_sample_errors"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			HandlerTimeout:  25 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORS: CORSConfig{
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Authorization", "Content-Type", "X-Device-Id",
					"X-Correlation-Id", "X-App-Shell", "X-Session-Id"},
				MaxAge: 86400,
			},
			RateLimit: RateLimitConfig{
				Enabled:         true,
				RequestsPerSec:  20,
				Burst:           40,
				CleanupInterval: time.Minute,
				IdleTimeout:     10 * time.Minute,
			},
		},
		Auth: AuthConfig{
			Checker: "http",
			Timeout: 8 * time.Second,
			CircuitBreaker: CircuitBreakerConfig{
				FailureThreshold:   5,
				SuccessThreshold:   2,
				Timeout:            30 * time.Second,
				ErrorRateThreshold: 0.5,
				ErrorRateWindow:    time.Minute,
			},
			JWT: JWTConfig{
				JWKSCacheTTL: 1 * time.Hour,
				Algorithms:   []string{"RS256"},
				RoleClaim:    "role",
			},
		},
		Domains: DomainsConfig{
			AuthOnlyHosts: []string{
				"app.edufiliova.com",
				"www.app.edufiliova.com",
				"edufiliova.click",
				"www.edufiliova.click",
			},
			AppSubdomains: true,
		},
		Storage: StorageConfig{
			Driver:          "memory",
			DSNEnv:          "NAVIGATOR_DATABASE_URL",
			RedisURLEnv:     "NAVIGATOR_REDIS_URL",
			LastPageTTL:     30 * 24 * time.Hour,
			MaxOpenConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Sessions: SessionsConfig{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Load reads an optional .env file and a YAML config file, applies
// environment variable overrides, and validates required fields. An empty
// path skips the YAML file and uses defaults.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads variables from path into the process environment without
// overriding variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: loading %s: %w", path, err)
}

var (
	validCheckers       = map[string]bool{"http": true, "jwt": true, "static": true}
	validStorageDrivers = map[string]bool{"memory": true, "redis": true, "postgres": true}
	validExporters      = map[string]bool{"otlp": true, "stdout": true}
)

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSec <= 0 {
		errs = append(errs, "server.rate_limit.requests_per_sec must be positive")
	}

	if !validCheckers[c.Auth.Checker] {
		errs = append(errs, fmt.Sprintf("auth.checker %q must be one of http, jwt, static", c.Auth.Checker))
	}
	if c.Auth.Timeout <= 0 {
		errs = append(errs, "auth.timeout must be positive")
	}
	switch c.Auth.Checker {
	case "http":
		if c.Auth.ProfileURL == "" {
			errs = append(errs, "auth.profile_url is required for the http checker")
		}
	case "jwt":
		if c.Auth.JWT.Issuer == "" {
			errs = append(errs, "auth.jwt.issuer is required")
		}
		if c.Auth.JWT.JWKSURL == "" {
			errs = append(errs, "auth.jwt.jwks_url is required")
		}
		if c.Auth.JWT.Audience == "" {
			errs = append(errs, "auth.jwt.audience is required")
		}
	}

	if !validStorageDrivers[c.Storage.Driver] {
		errs = append(errs, fmt.Sprintf("storage.driver %q must be one of memory, redis, postgres", c.Storage.Driver))
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSNEnv == "" {
		errs = append(errs, "storage.dsn_env is required for the postgres driver")
	}
	if c.Storage.Driver == "redis" && c.Storage.RedisURLEnv == "" {
		errs = append(errs, "storage.redis_url_env is required for the redis driver")
	}

	if c.Sessions.IdleTTL <= 0 {
		errs = append(errs, "sessions.idle_ttl must be positive")
	}

	if c.Observability.Tracing.Enabled && !validExporters[c.Observability.Tracing.Exporter] {
		errs = append(errs, fmt.Sprintf("observability.tracing.exporter %q must be otlp or stdout", c.Observability.Tracing.Exporter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// applyEnvOverrides reads NAVIGATOR_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NAVIGATOR_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("NAVIGATOR_AUTH_CHECKER"); v != "" {
		cfg.Auth.Checker = v
	}
	if v := os.Getenv("NAVIGATOR_AUTH_PROFILE_URL"); v != "" {
		cfg.Auth.ProfileURL = v
	}
	if v := os.Getenv("NAVIGATOR_AUTH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.Timeout = d
		}
	}
	if v := os.Getenv("NAVIGATOR_AUTH_JWT_ISSUER"); v != "" {
		cfg.Auth.JWT.Issuer = v
	}
	if v := os.Getenv("NAVIGATOR_AUTH_JWT_JWKS_URL"); v != "" {
		cfg.Auth.JWT.JWKSURL = v
	}
	if v := os.Getenv("NAVIGATOR_AUTH_JWT_AUDIENCE"); v != "" {
		cfg.Auth.JWT.Audience = v
	}
	if v := os.Getenv("NAVIGATOR_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("NAVIGATOR_OBSERVABILITY_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
}
