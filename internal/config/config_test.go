package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_valid(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("Server.WriteTimeout = %v, want default 30s", cfg.Server.WriteTimeout)
	}
	if len(cfg.Server.CORS.AllowedOrigins) != 2 {
		t.Errorf("CORS.AllowedOrigins = %v, want 2 entries", cfg.Server.CORS.AllowedOrigins)
	}
	if cfg.Server.RateLimit.RequestsPerSec != 5 || cfg.Server.RateLimit.Burst != 10 {
		t.Errorf("RateLimit = %+v", cfg.Server.RateLimit)
	}
	if cfg.Auth.ProfileURL != "https://api.edufiliova.com/api/auth/me" {
		t.Errorf("Auth.ProfileURL = %q", cfg.Auth.ProfileURL)
	}
	if cfg.Auth.Timeout != 5*time.Second {
		t.Errorf("Auth.Timeout = %v, want 5s", cfg.Auth.Timeout)
	}
	if cfg.Auth.CircuitBreaker.FailureThreshold != 3 {
		t.Errorf("CircuitBreaker.FailureThreshold = %d, want 3", cfg.Auth.CircuitBreaker.FailureThreshold)
	}
	if cfg.Auth.CircuitBreaker.SuccessThreshold != 2 {
		t.Errorf("CircuitBreaker.SuccessThreshold = %d, want default 2", cfg.Auth.CircuitBreaker.SuccessThreshold)
	}
	if len(cfg.Domains.AuthOnlyHosts) != 2 || cfg.Domains.AppSubdomains {
		t.Errorf("Domains = %+v", cfg.Domains)
	}
	if cfg.Storage.Driver != "redis" || cfg.Storage.RedisURLEnv != "EDU_REDIS_URL" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Storage.LastPageTTL != 7*24*time.Hour {
		t.Errorf("Storage.LastPageTTL = %v, want 168h", cfg.Storage.LastPageTTL)
	}
	if cfg.Sessions.IdleTTL != 45*time.Minute {
		t.Errorf("Sessions.IdleTTL = %v, want 45m", cfg.Sessions.IdleTTL)
	}
	if cfg.Menu.File != "./menu.yaml" {
		t.Errorf("Menu.File = %q", cfg.Menu.File)
	}
	if !cfg.Observability.Tracing.Enabled || cfg.Observability.Tracing.Exporter != "stdout" {
		t.Errorf("Tracing = %+v", cfg.Observability.Tracing)
	}
}

func TestLoad_jwt(t *testing.T) {
	cfg, err := Load("testdata/jwt.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.Checker != "jwt" {
		t.Errorf("Auth.Checker = %q, want jwt", cfg.Auth.Checker)
	}
	if got := cfg.Auth.JWT.Algorithms; len(got) != 2 || got[1] != "ES256" {
		t.Errorf("JWT.Algorithms = %v", got)
	}
	if cfg.Auth.JWT.RoleClaim != "https://edufiliova.com/role" {
		t.Errorf("JWT.RoleClaim = %q", cfg.Auth.JWT.RoleClaim)
	}
	if cfg.Auth.JWT.JWKSCacheTTL != time.Hour {
		t.Errorf("JWT.JWKSCacheTTL = %v, want default 1h", cfg.Auth.JWT.JWKSCacheTTL)
	}
}

func TestLoad_errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{"missing file", "testdata/nonexistent.yaml", []string{"reading"}},
		{"malformed", "testdata/malformed.yaml", []string{"parsing"}},
		{
			name: "invalid values",
			path: "testdata/invalid.yaml",
			want: []string{
				"server.port",
				"auth.jwt.issuer",
				"auth.jwt.jwks_url",
				"auth.jwt.audience",
				"storage.driver",
				"sessions.idle_ttl",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("Load() should return an error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestLoad_noFileUsesDefaults(t *testing.T) {
	t.Setenv("NAVIGATOR_AUTH_CHECKER", "static")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Storage.Driver != "memory" {
		t.Errorf("expected defaults, got port %d driver %q", cfg.Server.Port, cfg.Storage.Driver)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("default Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.Timeout != 8*time.Second {
		t.Errorf("default Auth.Timeout = %v, want 8s", cfg.Auth.Timeout)
	}
	if len(cfg.Domains.AuthOnlyHosts) != 4 || !cfg.Domains.AppSubdomains {
		t.Errorf("default Domains = %+v", cfg.Domains)
	}
	if cfg.Storage.LastPageTTL != 30*24*time.Hour {
		t.Errorf("default LastPageTTL = %v, want 720h", cfg.Storage.LastPageTTL)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("default LogLevel = %q, want info", cfg.Observability.LogLevel)
	}

	// The http checker has no default profile URL.
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "auth.profile_url") {
		t.Errorf("Validate() = %v, want profile_url error", err)
	}
	cfg.Auth.ProfileURL = "http://localhost:5000/api/auth/me"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NAVIGATOR_SERVER_PORT", "3000")
	t.Setenv("NAVIGATOR_AUTH_CHECKER", "jwt")
	t.Setenv("NAVIGATOR_AUTH_TIMEOUT", "2s")
	t.Setenv("NAVIGATOR_AUTH_JWT_ISSUER", "https://env-issuer.com")
	t.Setenv("NAVIGATOR_AUTH_JWT_JWKS_URL", "https://env-issuer.com/.well-known/jwks.json")
	t.Setenv("NAVIGATOR_AUTH_JWT_AUDIENCE", "env-audience")
	t.Setenv("NAVIGATOR_STORAGE_DRIVER", "memory")
	t.Setenv("NAVIGATOR_OBSERVABILITY_LOG_LEVEL", "error")

	cfg, err := Load("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000 (env beats file)", cfg.Server.Port)
	}
	if cfg.Auth.Checker != "jwt" || cfg.Auth.JWT.Audience != "env-audience" {
		t.Errorf("Auth = %+v, want env overrides", cfg.Auth)
	}
	if cfg.Auth.Timeout != 2*time.Second {
		t.Errorf("Auth.Timeout = %v, want 2s", cfg.Auth.Timeout)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
	if cfg.Observability.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", cfg.Observability.LogLevel)
	}
}

func TestEnvOverrides_ignoresMalformed(t *testing.T) {
	t.Setenv("NAVIGATOR_SERVER_PORT", "not-a-port")
	t.Setenv("NAVIGATOR_AUTH_TIMEOUT", "soon")

	cfg, err := Load("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want file value 9090", cfg.Server.Port)
	}
	if cfg.Auth.Timeout != 5*time.Second {
		t.Errorf("Auth.Timeout = %v, want file value 5s", cfg.Auth.Timeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("NAVIGATOR_DOTENV_PROBE=from-file\nNAVIGATOR_DOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NAVIGATOR_DOTENV_SET", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("NAVIGATOR_DOTENV_PROBE") })

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
	if got := os.Getenv("NAVIGATOR_DOTENV_PROBE"); got != "from-file" {
		t.Errorf("probe = %q, want from-file", got)
	}
	if got := os.Getenv("NAVIGATOR_DOTENV_SET"); got != "from-env" {
		t.Errorf("set = %q, want existing env to win", got)
	}

	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestValidate_rateLimit(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.Checker = "static"
	cfg.Server.RateLimit.RequestsPerSec = 0

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "requests_per_sec") {
		t.Fatalf("Validate() = %v, want rate limit error", err)
	}

	cfg.Server.RateLimit.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled limiter should not be validated: %v", err)
	}
}
