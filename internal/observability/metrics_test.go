package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := InitMetrics(reg)
	return m, reg
}

func TestInitMetrics_registersAllMetrics(t *testing.T) {
	m, reg := newTestMetrics(t)
	if m == nil {
		t.Fatal("InitMetrics returned nil")
	}

	// Record a value for each vector so it appears in Gather.
	m.RecordHTTPRequest("GET", "/test", 200, time.Millisecond, 0, 100)
	m.RecordRateLimited()
	m.RecordGateDecision("allow")
	m.RecordRedirect("settings", "auth")
	m.RecordRedirectLimit("about")
	m.RecordCommit("home", "instant")
	m.RecordDeferral()
	m.SetActiveSessions(3)
	m.RecordSessionsEvicted(1)
	m.RecordAuthCheck("authenticated", time.Millisecond)
	m.SetAuthCircuitBreakerState(0)
	m.RecordCatalogLoad("success", 120)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	expected := []string{
		"navigator_http_requests_total",
		"navigator_http_request_duration_seconds",
		"navigator_http_request_size_bytes",
		"navigator_http_response_size_bytes",
		"navigator_rate_limited_total",
		"navigator_gate_decisions_total",
		"navigator_redirects_total",
		"navigator_redirect_limit_total",
		"navigator_commits_total",
		"navigator_deferrals_total",
		"navigator_active_sessions",
		"navigator_sessions_evicted_total",
		"navigator_auth_checks_total",
		"navigator_auth_check_duration_seconds",
		"navigator_auth_circuit_breaker_state",
		"navigator_catalog_states_loaded",
		"navigator_catalog_load_total",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("metric %q not registered", name)
		}
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordHTTPRequest("POST", "/v1/sessions/{deviceId}/navigate", 200, 50*time.Millisecond, 64, 512)
	m.RecordHTTPRequest("POST", "/v1/sessions/{deviceId}/navigate", 200, 80*time.Millisecond, 64, 512)
	m.RecordHTTPRequest("GET", "/v1/resolve", 400, time.Millisecond, 0, 128)

	val := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/v1/sessions/{deviceId}/navigate", "200"))
	if val != 2 {
		t.Errorf("navigate requests = %v, want 2", val)
	}
	val = testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/resolve", "400"))
	if val != 1 {
		t.Errorf("resolve requests = %v, want 1", val)
	}
}

func TestNavigationRecorders(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordGateDecision("redirect")
	m.RecordGateDecision("redirect")
	m.RecordGateDecision("pending")
	m.RecordRedirect("student-dashboard", "teacher-dashboard")
	m.RecordRedirectLimit("about")
	m.RecordCommit("settings", "fade")
	m.RecordDeferral()
	m.RecordDeferral()

	if got := testutil.ToFloat64(m.GateDecisionsTotal.WithLabelValues("redirect")); got != 2 {
		t.Errorf("redirect decisions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.GateDecisionsTotal.WithLabelValues("pending")); got != 1 {
		t.Errorf("pending decisions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RedirectsTotal.WithLabelValues("student-dashboard", "teacher-dashboard")); got != 1 {
		t.Errorf("redirect hops = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RedirectLimitTotal.WithLabelValues("about")); got != 1 {
		t.Errorf("redirect limit = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CommitsTotal.WithLabelValues("settings", "fade")); got != 1 {
		t.Errorf("commits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DeferralsTotal); got != 2 {
		t.Errorf("deferrals = %v, want 2", got)
	}
}

func TestRecordAuthCheck(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordAuthCheck("timeout", 8*time.Second)
	m.RecordAuthCheck("anonymous", 20*time.Millisecond)

	if got := testutil.ToFloat64(m.AuthChecksTotal.WithLabelValues("timeout")); got != 1 {
		t.Errorf("timeouts = %v, want 1", got)
	}
	if count := testutil.CollectAndCount(m.AuthCheckDuration); count != 2 {
		t.Errorf("duration series = %d, want 2", count)
	}
}

func TestGauges(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.SetActiveSessions(7)
	m.SetAuthCircuitBreakerState(2)
	m.RecordCatalogLoad("success", 118)
	m.RecordCatalogLoad("failure", 0)

	if got := testutil.ToFloat64(m.ActiveSessions); got != 7 {
		t.Errorf("active sessions = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.AuthCircuitBreakerState); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CatalogStatesLoaded); got != 118 {
		t.Errorf("catalog states = %v, want 118 (failures keep the last size)", got)
	}
	if got := testutil.ToFloat64(m.CatalogLoadTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("catalog failures = %v, want 1", got)
	}
}

func TestMetricsMiddleware_recordsRoutePattern(t *testing.T) {
	m, _ := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(m.MetricsMiddleware)
	r.Get("/v1/sessions/{deviceId}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/v1/sessions/{deviceId}/navigate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/sessions/dev-1"},
		{http.MethodGet, "/v1/sessions/dev-2"},
		{http.MethodPost, "/v1/sessions/dev-1/navigate"},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
	}

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/sessions/{deviceId}", "200")); got != 2 {
		t.Errorf("GET requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/v1/sessions/{deviceId}/navigate", "409")); got != 1 {
		t.Errorf("409 requests = %v, want 1", got)
	}
	if count := testutil.CollectAndCount(m.HTTPResponseSizeBytes); count == 0 {
		t.Error("expected response size histogram to have observations")
	}
}

func TestMetricsMiddleware_fallsBackToPath(t *testing.T) {
	m, _ := newTestMetrics(t)

	handler := m.MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/raw/path", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/raw/path", "200")); got != 1 {
		t.Errorf("raw path requests = %v, want 1", got)
	}
}

func TestHandler_servesMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_") {
		t.Error("metrics response should contain go runtime metrics")
	}
}

func TestHistogramBuckets(t *testing.T) {
	for name, buckets := range map[string][]float64{
		"http": httpDurationBuckets,
		"auth": authDurationBuckets,
		"body": bodySizeBuckets,
	} {
		for i := 1; i < len(buckets); i++ {
			if buckets[i] <= buckets[i-1] {
				t.Errorf("%s buckets not sorted at index %d", name, i)
			}
		}
	}
	if last := authDurationBuckets[len(authDurationBuckets)-1]; last < 8 {
		t.Errorf("auth buckets end at %v, want at least the 8s default timeout", last)
	}
}
