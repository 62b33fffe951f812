package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/edufiliova/navigator/internal/config"
	"github.com/edufiliova/navigator/internal/observability"
	"github.com/edufiliova/navigator/model"
)

// profileResponse is the body of the auth backend's profile endpoint.
type profileResponse struct {
	Success bool `json:"success"`
	User    *struct {
		ID any `json:"id"`
	} `json:"user"`
	Profile *struct {
		Role string `json:"role"`
	} `json:"profile"`
}

// HTTPChecker asks the auth backend's profile endpoint whether a session is
// valid, behind a circuit breaker.
type HTTPChecker struct {
	url     string
	client  *http.Client
	breaker *Breaker
	logger  *zap.Logger
}

// NewHTTPChecker creates a checker for cfg.ProfileURL. The HTTP client has
// no timeout of its own; callers bound each check with their context.
func NewHTTPChecker(cfg config.AuthConfig, logger *zap.Logger) *HTTPChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPChecker{
		url:     cfg.ProfileURL,
		client:  &http.Client{},
		breaker: NewBreaker(cfg.CircuitBreaker),
		logger:  logger,
	}
}

// Breaker exposes the checker's circuit breaker for metrics and readiness.
func (c *HTTPChecker) Breaker() *Breaker {
	return c.breaker
}

// Check implements AuthChecker. 401 and 403 mean signed out and count as a
// healthy answer; server errors and transport failures trip the breaker.
func (c *HTTPChecker) Check(ctx context.Context, token string) (AuthState, error) {
	if token == "" {
		return AuthState{}, nil
	}
	if err := c.breaker.Allow(); err != nil {
		return AuthState{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return AuthState{}, fmt.Errorf("session: building profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	observability.InjectTraceHeaders(ctx, req.Header)

	resp, err := c.client.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return AuthState{}, fmt.Errorf("session: profile request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.breaker.RecordSuccess()
		return AuthState{}, nil
	case resp.StatusCode >= 500:
		c.breaker.RecordFailure()
		return AuthState{}, fmt.Errorf("session: profile endpoint returned %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.breaker.RecordSuccess()
		return AuthState{}, fmt.Errorf("session: profile endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.breaker.RecordFailure()
		return AuthState{}, fmt.Errorf("session: reading profile: %w", err)
	}
	c.breaker.RecordSuccess()

	var p profileResponse
	if err := json.Unmarshal(body, &p); err != nil {
		return AuthState{}, fmt.Errorf("session: decoding profile: %w", err)
	}
	if !p.Success || p.User == nil || p.Profile == nil {
		return AuthState{}, nil
	}

	st := AuthState{Authenticated: true, Role: model.ParseRole(p.Profile.Role)}
	if p.User.ID != nil {
		st.SubjectID = strings.TrimSpace(fmt.Sprint(p.User.ID))
	}
	if st.Role == model.RoleNone {
		c.logger.Debug("profile has no recognised role", zap.String("role", p.Profile.Role))
	}
	return st, nil
}

// HealthCheck reports an error while the breaker is open.
func (c *HTTPChecker) HealthCheck(_ context.Context) error {
	if c.breaker.State() == BreakerOpen {
		return ErrBreakerOpen
	}
	return nil
}
