package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHandleHealth_returnsOK(t *testing.T) {
	origVersion, origCommit := Version, Commit
	Version = "1.2.3"
	Commit = "abc1234"
	t.Cleanup(func() {
		Version = origVersion
		Commit = origCommit
	})

	rec := httptest.NewRecorder()
	HandleHealth().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("version = %q, want 1.2.3", resp.Version)
	}
	if resp.Commit != "abc1234" {
		t.Errorf("commit = %q, want abc1234", resp.Commit)
	}
}

type mockHealthChecker struct {
	err   error
	delay time.Duration
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.err
}

func serveReady(t *testing.T, checks ReadinessChecks) (int, ReadinessResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	HandleReady(checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp ReadinessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return rec.Code, resp
}

func TestHandleReady_catalogOnly(t *testing.T) {
	code, resp := serveReady(t, ReadinessChecks{CatalogLoaded: func() bool { return true }})

	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if resp.Status != "ready" {
		t.Errorf("status = %q, want ready", resp.Status)
	}
	if len(resp.Checks) != 1 {
		t.Errorf("checks count = %d, want 1 (optional checks omitted)", len(resp.Checks))
	}
	if resp.Checks["catalog"].LatencyMs < 0 {
		t.Error("latency should be non-negative")
	}
}

func TestHandleReady_catalogNotLoaded(t *testing.T) {
	for name, checks := range map[string]ReadinessChecks{
		"false": {CatalogLoaded: func() bool { return false }},
		"nil":   {},
	} {
		t.Run(name, func(t *testing.T) {
			code, resp := serveReady(t, checks)
			if code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", code)
			}
			if resp.Status != "not_ready" {
				t.Errorf("status = %q, want not_ready", resp.Status)
			}
			if resp.Checks["catalog"].Error == "" {
				t.Error("catalog error should have a message")
			}
		})
	}
}

func TestHandleReady_optionalChecks(t *testing.T) {
	tests := []struct {
		name       string
		checks     ReadinessChecks
		wantCode   int
		wantFailed map[string]string
	}{
		{
			name: "all healthy",
			checks: ReadinessChecks{
				CatalogLoaded:   func() bool { return true },
				PreferenceStore: &mockHealthChecker{},
				AuthBackend:     &mockHealthChecker{},
			},
			wantCode: http.StatusOK,
		},
		{
			name: "redis down",
			checks: ReadinessChecks{
				CatalogLoaded:   func() bool { return true },
				PreferenceStore: &mockHealthChecker{err: errors.New("dial tcp: connection refused")},
				AuthBackend:     &mockHealthChecker{},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantFailed: map[string]string{"preference_store": "dial tcp: connection refused"},
		},
		{
			name: "breaker open",
			checks: ReadinessChecks{
				CatalogLoaded: func() bool { return true },
				AuthBackend:   &mockHealthChecker{err: errors.New("session: auth backend circuit open")},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantFailed: map[string]string{"auth_backend": "session: auth backend circuit open"},
		},
		{
			name: "everything down",
			checks: ReadinessChecks{
				CatalogLoaded:   func() bool { return false },
				PreferenceStore: &mockHealthChecker{err: errors.New("pg down")},
				AuthBackend:     &mockHealthChecker{err: errors.New("timeout")},
			},
			wantCode: http.StatusServiceUnavailable,
			wantFailed: map[string]string{
				"catalog":          "page catalog not loaded",
				"preference_store": "pg down",
				"auth_backend":     "timeout",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := serveReady(t, tt.checks)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d", code, tt.wantCode)
			}
			failed := 0
			for name, check := range resp.Checks {
				want, shouldFail := tt.wantFailed[name]
				switch {
				case shouldFail && check.Error != want:
					t.Errorf("%s error = %q, want %q", name, check.Error, want)
				case !shouldFail && check.Status != "ok":
					t.Errorf("%s = %q, want ok", name, check.Status)
				}
				if check.Status == "error" {
					failed++
				}
			}
			if failed != len(tt.wantFailed) {
				t.Errorf("failed checks = %d, want %d", failed, len(tt.wantFailed))
			}
		})
	}
}

func TestRunCheck_timesOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res := runCheck(ctx, &mockHealthChecker{delay: time.Second})
	if res.Status != "error" {
		t.Errorf("status = %q, want error", res.Status)
	}
	if res.Error != context.DeadlineExceeded.Error() {
		t.Errorf("error = %q, want %q", res.Error, context.DeadlineExceeded.Error())
	}
}
