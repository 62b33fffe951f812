package transport

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/edufiliova/navigator/internal/config"
	"github.com/edufiliova/navigator/internal/observability"
	"github.com/edufiliova/navigator/model"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter applies a token bucket per device. Requests without a device
// context are keyed by client IP.
type RateLimiter struct {
	limit     rate.Limit
	burst     int
	idle      time.Duration
	interval  time.Duration
	onLimited func()
	now       func() time.Time

	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

// NewRateLimiter creates a limiter from cfg. onLimited, when non-nil, is
// called for every rejected request.
func NewRateLimiter(cfg config.RateLimitConfig, onLimited func()) *RateLimiter {
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = 2 * interval
	}
	return &RateLimiter{
		limit:     rate.Limit(cfg.RequestsPerSec),
		burst:     cfg.Burst,
		idle:      idle,
		interval:  interval,
		onLimited: onLimited,
		now:       time.Now,
		limiters:  make(map[string]*clientLimiter),
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header.
func (rl *RateLimiter) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiterKey(r)
			if !rl.get(key).AllowN(rl.now(), 1) {
				if rl.onLimited != nil {
					rl.onLimited()
				}
				observability.RequestLogger(r.Context(), logger).Warn("rate limit exceeded",
					zap.String("key", key),
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
				WriteError(w, r, model.NewRateLimitedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Run removes idle entries every cleanup interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if cl, ok := rl.limiters[key]; ok {
		cl.lastAccess = now
		return cl.limiter
	}
	cl := &clientLimiter{
		limiter:    rate.NewLimiter(rl.limit, rl.burst),
		lastAccess: now,
	}
	rl.limiters[key] = cl
	return cl.limiter
}

func (rl *RateLimiter) cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.idle)
	removed := 0
	for key, cl := range rl.limiters {
		if cl.lastAccess.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// retryAfter is the number of seconds until one token is replenished.
func (rl *RateLimiter) retryAfter() int {
	if rl.limit <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/float64(rl.limit))))
}

func limiterKey(r *http.Request) string {
	if rctx := model.RequestContextFrom(r.Context()); rctx != nil && rctx.DeviceID != "" {
		return "device:" + rctx.DeviceID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
