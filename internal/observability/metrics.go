package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	authDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8}
	bodySizeBuckets     = []float64{100, 1024, 10240, 102400, 1048576}
)

// Metrics holds all Prometheus metric instruments for the navigator.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestSizeBytes  *prometheus.HistogramVec
	HTTPResponseSizeBytes *prometheus.HistogramVec
	RateLimitedTotal      prometheus.Counter

	// Navigation metrics
	GateDecisionsTotal   *prometheus.CounterVec
	RedirectsTotal       *prometheus.CounterVec
	RedirectLimitTotal   *prometheus.CounterVec
	CommitsTotal         *prometheus.CounterVec
	DeferralsTotal       prometheus.Counter
	ActiveSessions       prometheus.Gauge
	SessionsEvictedTotal prometheus.Counter

	// Auth backend metrics
	AuthChecksTotal         *prometheus.CounterVec
	AuthCheckDuration       *prometheus.HistogramVec
	AuthCircuitBreakerState prometheus.Gauge

	// Catalog metrics
	CatalogStatesLoaded prometheus.Gauge
	CatalogLoadTotal    *prometheus.CounterVec
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// HTTP
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navigator_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "navigator_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPRequestSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "navigator_http_request_size_bytes",
			Help:    "HTTP request body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPResponseSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "navigator_http_response_size_bytes",
			Help:    "HTTP response body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "navigator_rate_limited_total",
			Help: "Total number of requests rejected by the per-device rate limiter.",
		}),

		// Navigation
		GateDecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navigator_gate_decisions_total",
			Help: "Total number of final access gate decisions by kind.",
		}, []string{"kind"}),
		RedirectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navigator_redirects_total",
			Help: "Total number of redirect hops followed.",
		}, []string{"from", "to"}),
		RedirectLimitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navigator_redirect_limit_total",
			Help: "Total number of redirect chains that exceeded the hop limit.",
		}, []string{"requested"}),
		CommitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navigator_commits_total",
			Help: "Total number of committed navigations.",
		}, []string{"state", "style"}),
		DeferralsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "navigator_deferrals_total",
			Help: "Total number of intents deferred while the session check was pending.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "navigator_active_sessions",
			Help: "Number of live navigation coordinators.",
		}),
		SessionsEvictedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "navigator_sessions_evicted_total",
			Help: "Total number of idle navigation coordinators evicted.",
		}),

		// Auth backend
		AuthChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navigator_auth_checks_total",
			Help: "Total number of session checks by result.",
		}, []string{"result"}),
		AuthCheckDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "navigator_auth_check_duration_seconds",
			Help:    "Session check duration in seconds.",
			Buckets: authDurationBuckets,
		}, []string{"result"}),
		AuthCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "navigator_auth_circuit_breaker_state",
			Help: "Auth backend circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),

		// Catalog
		CatalogStatesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "navigator_catalog_states_loaded",
			Help: "Number of page states in the active catalog.",
		}),
		CatalogLoadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "navigator_catalog_load_total",
			Help: "Total catalog loads by status.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSizeBytes,
		m.HTTPResponseSizeBytes,
		m.RateLimitedTotal,
		m.GateDecisionsTotal,
		m.RedirectsTotal,
		m.RedirectLimitTotal,
		m.CommitsTotal,
		m.DeferralsTotal,
		m.ActiveSessions,
		m.SessionsEvictedTotal,
		m.AuthChecksTotal,
		m.AuthCheckDuration,
		m.AuthCircuitBreakerState,
		m.CatalogStatesLoaded,
		m.CatalogLoadTotal,
	)

	return m
}

// --- Recording helpers ---

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration, reqSize, respSize int) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
	m.HTTPRequestSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(reqSize))
	m.HTTPResponseSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(respSize))
}

// RecordRateLimited records a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}

// RecordGateDecision records the final decision of a redirect chain.
func (m *Metrics) RecordGateDecision(kind string) {
	m.GateDecisionsTotal.WithLabelValues(kind).Inc()
}

// RecordRedirect records one redirect hop.
func (m *Metrics) RecordRedirect(from, to string) {
	m.RedirectsTotal.WithLabelValues(from, to).Inc()
}

// RecordRedirectLimit records a chain cut off at the hop limit.
func (m *Metrics) RecordRedirectLimit(requested string) {
	m.RedirectLimitTotal.WithLabelValues(requested).Inc()
}

// RecordCommit records a committed navigation.
func (m *Metrics) RecordCommit(state, style string) {
	m.CommitsTotal.WithLabelValues(state, style).Inc()
}

// RecordDeferral records an intent deferred behind the session check.
func (m *Metrics) RecordDeferral() {
	m.DeferralsTotal.Inc()
}

// RecordAuthCheck records a session check. Result is one of authenticated,
// anonymous, error or timeout.
func (m *Metrics) RecordAuthCheck(result string, duration time.Duration) {
	m.AuthChecksTotal.WithLabelValues(result).Inc()
	m.AuthCheckDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// SetActiveSessions sets the number of live coordinators.
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// RecordSessionsEvicted adds n evicted coordinators.
func (m *Metrics) RecordSessionsEvicted(n int) {
	m.SessionsEvictedTotal.Add(float64(n))
}

// SetAuthCircuitBreakerState sets the breaker state.
// State: 0=closed, 1=half-open, 2=open.
func (m *Metrics) SetAuthCircuitBreakerState(state float64) {
	m.AuthCircuitBreakerState.Set(state)
}

// RecordCatalogLoad records a catalog load and, on success, its size.
func (m *Metrics) RecordCatalogLoad(status string, states int) {
	m.CatalogLoadTotal.WithLabelValues(status).Inc()
	if status == "success" {
		m.CatalogStatesLoaded.Set(float64(states))
	}
}

// --- HTTP Middleware ---

// MetricsMiddleware returns HTTP middleware that records request metrics using
// chi's route pattern (not the actual URL path) to avoid label cardinality
// explosion.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		reqSize := 0
		if r.ContentLength > 0 {
			reqSize = int(r.ContentLength)
		}
		m.RecordHTTPRequest(r.Method, routePattern(r), sw.status, time.Since(start), reqSize, sw.bytes)
	})
}

// Handler returns the Prometheus HTTP handler for the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// routePattern extracts chi's route pattern from the request context.
// Falls back to the raw URL path if no pattern is found.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	pattern = strings.TrimSuffix(pattern, "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// metricsResponseWriter wraps http.ResponseWriter to capture status and bytes.
type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}
