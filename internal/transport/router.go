package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/edufiliova/navigator/internal/config"
	"github.com/edufiliova/navigator/internal/gate"
	"github.com/edufiliova/navigator/internal/menu"
	"github.com/edufiliova/navigator/internal/navigator"
	"github.com/edufiliova/navigator/internal/observability"
	"github.com/edufiliova/navigator/internal/openapi"
	"github.com/edufiliova/navigator/internal/route"
	"github.com/edufiliova/navigator/model"
)

// Dependencies holds all injected dependencies for the HTTP transport layer.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Metrics
	Limiter  *RateLimiter
	Mapper   *route.Mapper
	Gate     *gate.Gate
	Detector *gate.Detector
	Sessions *navigator.Registry
	Menu     *menu.Provider
	API      *openapi.Index

	HealthHandler  http.Handler
	ReadyHandler   http.Handler
	MetricsHandler http.Handler
}

// NewRouter creates a chi.Router with the full middleware pipeline and all
// route registrations. Health, readiness, and metrics endpoints skip
// logging, rate limiting, and the device context.
func NewRouter(deps Dependencies) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(Recovery(logger))
	r.Use(CORS(deps.Config.Server.CORS))
	r.Use(RequestID)
	r.Use(SecurityHeaders)
	r.Use(observability.TracingMiddleware)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.MetricsMiddleware)
	}

	health := deps.HealthHandler
	if health == nil {
		health = observability.HandleHealth()
	}
	r.Method(http.MethodGet, "/ui/health", health)
	if deps.ReadyHandler != nil {
		r.Method(http.MethodGet, "/ui/ready", deps.ReadyHandler)
	}
	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = observability.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	if deps.API != nil {
		r.Get("/openapi.json", handleOpenAPI(deps.API))
	}

	decoder := newRequestDecoder(deps.API)
	nav := &navigationHandlers{
		sessions: deps.Sessions,
		detector: deps.Detector,
		menu:     deps.Menu,
		decoder:  decoder,
		logger:   logger,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(RequestLogging(logger))
		r.Use(HandlerTimeout(deps.Config.Server.HandlerTimeout))

		// Stateless lookups, limited per client IP.
		r.Group(func(r chi.Router) {
			if deps.Limiter != nil {
				r.Use(deps.Limiter.Middleware(logger))
			}
			r.Get("/routes/resolve", handleResolve(deps.Mapper))
			r.Get("/routes/path", handlePath(deps.Mapper))
			r.Post("/gate/authorize", handleAuthorize(deps.Gate, deps.Mapper, decoder))
		})

		// Device sessions, limited per device.
		r.Route("/navigation", func(r chi.Router) {
			r.Use(DeviceContext(deps.Detector))
			if deps.Limiter != nil {
				r.Use(deps.Limiter.Middleware(logger))
			}
			r.Post("/start", nav.start)
			r.Post("/navigate", nav.navigate)
			r.Post("/popstate", nav.popState)
			r.Post("/auth/refresh", nav.refreshAuth)
			r.Post("/logout", nav.logout)
			r.Post("/onboarding/complete", nav.completeOnboarding)
			r.Get("/state", nav.state)
			r.Get("/menu", nav.getMenu)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, model.NewNotFoundError("no route for "+r.Method+" "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: &model.ErrorEnvelope{
			Code:    "METHOD_NOT_ALLOWED",
			Message: r.Method + " is not allowed on " + r.URL.Path,
		}})
	})

	return r
}
