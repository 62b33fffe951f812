package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/edufiliova/navigator/internal/config"
	"github.com/edufiliova/navigator/model"
)

// JWTChecker treats the session token as a bearer JWT signed by a key from
// the configured JWKS endpoint.
type JWTChecker struct {
	cfg    config.JWTConfig
	jwks   *JWKSClient
	logger *zap.Logger
}

// NewJWTChecker creates a checker. An empty RoleClaim reads "role".
func NewJWTChecker(cfg config.JWTConfig, jwks *JWKSClient, logger *zap.Logger) *JWTChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RoleClaim == "" {
		cfg.RoleClaim = "role"
	}
	if len(cfg.Algorithms) == 0 {
		cfg.Algorithms = []string{"RS256"}
	}
	return &JWTChecker{cfg: cfg, jwks: jwks, logger: logger}
}

// errKeyFetch wraps failures to reach the JWKS endpoint so they can be told
// apart from bad tokens after jwt.Parse wraps them.
type errKeyFetch struct{ err error }

func (e *errKeyFetch) Error() string { return e.err.Error() }
func (e *errKeyFetch) Unwrap() error { return e.err }

// Check implements AuthChecker. An invalid or expired token is signed out
// without error; only an unreachable key set returns an error.
func (c *JWTChecker) Check(ctx context.Context, token string) (AuthState, error) {
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return AuthState{}, nil
	}

	parsed, err := jwt.Parse(token,
		func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, fmt.Errorf("missing kid in token header")
			}
			key, err := c.jwks.GetKey(ctx, kid)
			if err != nil {
				var unknown *unknownKeyError
				if errors.As(err, &unknown) {
					return nil, err
				}
				return nil, &errKeyFetch{err: err}
			}
			return key, nil
		},
		jwt.WithValidMethods(c.cfg.Algorithms),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithAudience(c.cfg.Audience),
		jwt.WithLeeway(30*time.Second),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		var fetch *errKeyFetch
		if errors.As(err, &fetch) {
			return AuthState{}, fmt.Errorf("session: %w", fetch.err)
		}
		c.logger.Debug("session token rejected", zap.String("reason", classifyJWTError(err)))
		return AuthState{}, nil
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return AuthState{}, nil
	}

	sub, _ := claims.GetSubject()
	return AuthState{
		Authenticated: true,
		Role:          roleFromClaim(claims[c.cfg.RoleClaim]),
		SubjectID:     sub,
	}, nil
}

// roleFromClaim accepts a single role string or a list, taking the first
// recognised entry.
func roleFromClaim(v any) model.Role {
	switch r := v.(type) {
	case string:
		return model.ParseRole(r)
	case []any:
		for _, item := range r {
			if s, ok := item.(string); ok {
				if role := model.ParseRole(s); role != model.RoleNone {
					return role
				}
			}
		}
	}
	return model.RoleNone
}

func classifyJWTError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "invalid issuer"
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return "invalid audience"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "invalid signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed token"
	case strings.Contains(err.Error(), "signing method"):
		return "disallowed signing algorithm"
	case strings.Contains(err.Error(), "kid"), strings.Contains(err.Error(), "signing key"):
		return "unknown signing key"
	default:
		return "invalid token"
	}
}
