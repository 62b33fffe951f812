package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edufiliova/navigator/internal/config"
	"github.com/edufiliova/navigator/model"
)

func newProfileServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sess-1" {
			t.Errorf("Authorization = %q, want Bearer sess-1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testAuthCfg(url string) config.AuthConfig {
	cfg := config.Defaults().Auth
	cfg.ProfileURL = url
	cfg.CircuitBreaker.FailureThreshold = 2
	return cfg
}

func TestHTTPChecker_Check(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantAuth bool
		wantRole model.Role
		wantSub  string
		wantErr  bool
	}{
		{"teacher", 200, `{"success":true,"user":{"id":42},"profile":{"role":"Teacher"}}`, true, model.RoleTeacher, "42", false},
		{"legacy user role", 200, `{"success":true,"user":{"id":"u-1"},"profile":{"role":"user"}}`, true, model.RoleStudent, "u-1", false},
		{"missing profile", 200, `{"success":true,"user":{"id":"u-1"}}`, false, model.RoleNone, "", false},
		{"not successful", 200, `{"success":false}`, false, model.RoleNone, "", false},
		{"unknown role", 200, `{"success":true,"user":{},"profile":{"role":"wizard"}}`, true, model.RoleNone, "", false},
		{"unauthorized", 401, `{"message":"no session"}`, false, model.RoleNone, "", false},
		{"forbidden", 403, ``, false, model.RoleNone, "", false},
		{"server error", 502, ``, false, model.RoleNone, "", true},
		{"not found", 404, ``, false, model.RoleNone, "", true},
		{"bad json", 200, `{`, false, model.RoleNone, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newProfileServer(t, tt.status, tt.body)
			c := NewHTTPChecker(testAuthCfg(srv.URL), nil)

			st, err := c.Check(context.Background(), "sess-1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
			if st.Authenticated != tt.wantAuth {
				t.Errorf("Authenticated = %v, want %v", st.Authenticated, tt.wantAuth)
			}
			if st.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", st.Role, tt.wantRole)
			}
			if st.SubjectID != tt.wantSub {
				t.Errorf("SubjectID = %q, want %q", st.SubjectID, tt.wantSub)
			}
		})
	}
}

func TestHTTPChecker_emptyTokenSkipsBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend called for empty token")
	}))
	defer srv.Close()

	st, err := NewHTTPChecker(testAuthCfg(srv.URL), nil).Check(context.Background(), "")
	if err != nil || st.Authenticated {
		t.Errorf("Check(\"\") = %+v, %v", st, err)
	}
}

func TestHTTPChecker_breakerOpens(t *testing.T) {
	srv := newProfileServer(t, 500, ``)
	c := NewHTTPChecker(testAuthCfg(srv.URL), nil)

	for i := 0; i < 2; i++ {
		if _, err := c.Check(context.Background(), "sess-1"); err == nil {
			t.Fatalf("Check() #%d error = nil, want server error", i)
		}
	}
	if s := c.Breaker().State(); s != BreakerOpen {
		t.Fatalf("breaker state = %v, want open", s)
	}
	if _, err := c.Check(context.Background(), "sess-1"); !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("Check() error = %v, want ErrBreakerOpen", err)
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("HealthCheck() error = %v, want ErrBreakerOpen", err)
	}
}

func TestHTTPChecker_contextTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPChecker(testAuthCfg(srv.URL), nil).Check(ctx, "sess-1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Check() error = %v, want deadline exceeded", err)
	}
}

func TestNew(t *testing.T) {
	cfg := testAuthCfg("http://auth.invalid/api/auth/profile")

	if c, err := New(cfg, nil); err != nil {
		t.Fatalf("New(http) error = %v", err)
	} else if _, ok := c.(*HTTPChecker); !ok {
		t.Errorf("New(http) = %T", c)
	}

	cfg.Checker = "static"
	cfg.StaticRole = "freelancer"
	c, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New(static) error = %v", err)
	}
	if st, _ := c.Check(context.Background(), "tok"); st.Role != model.RoleFreelancer {
		t.Errorf("static role = %q, want freelancer", st.Role)
	}

	cfg.StaticRole = "wizard"
	if _, err := New(cfg, nil); err == nil {
		t.Error("New(static, wizard) error = nil")
	}

	cfg.Checker = "ldap"
	if _, err := New(cfg, nil); err == nil {
		t.Error("New(ldap) error = nil")
	}
}

func TestStaticChecker(t *testing.T) {
	s := &StaticChecker{
		Role:   model.RoleStudent,
		Tokens: map[string]AuthState{"expired": {}},
	}
	ctx := context.Background()

	if st, _ := s.Check(ctx, "abc"); !st.Authenticated || st.Role != model.RoleStudent {
		t.Errorf("Check(abc) = %+v", st)
	}
	if st, _ := s.Check(ctx, "expired"); st.Authenticated {
		t.Errorf("Check(expired) = %+v, want signed out", st)
	}

	s.Delay = time.Second
	tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if _, err := s.Check(tctx, "abc"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("delayed Check() error = %v", err)
	}
	if got := s.Calls(); got != 3 {
		t.Errorf("Calls() = %d, want 3", got)
	}
}
