// Package session resolves a client's session token into the auth facts the
// access gate consults. Checkers never decide navigation; a failed or
// timed-out check is reported as an error and callers treat it as signed out.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/edufiliova/navigator/internal/config"
	"github.com/edufiliova/navigator/model"
)

// AuthState is the outcome of a session check.
type AuthState struct {
	Authenticated bool
	Role          model.Role
	SubjectID     string
}

// AuthChecker resolves a session token. An empty token is always
// unauthenticated. A non-nil error means the backend could not answer.
type AuthChecker interface {
	Check(ctx context.Context, token string) (AuthState, error)
}

// HealthChecker is implemented by checkers that depend on a remote backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// New builds the checker selected by cfg.Checker.
func New(cfg config.AuthConfig, logger *zap.Logger) (AuthChecker, error) {
	switch cfg.Checker {
	case "http":
		return NewHTTPChecker(cfg, logger), nil
	case "jwt":
		jwks := NewJWKSClient(cfg.JWT.JWKSURL, cfg.JWT.JWKSCacheTTL, logger)
		return NewJWTChecker(cfg.JWT, jwks, logger), nil
	case "static":
		role := model.ParseRole(cfg.StaticRole)
		if cfg.StaticRole != "" && role == model.RoleNone {
			return nil, fmt.Errorf("session: unknown static role %q", cfg.StaticRole)
		}
		return &StaticChecker{Role: role}, nil
	default:
		return nil, fmt.Errorf("session: unknown checker %q", cfg.Checker)
	}
}
