// Package main is the entry point for the navigator server.
// It wires all dependencies together and starts the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/edufiliova/navigator/internal/catalog"
	"github.com/edufiliova/navigator/internal/config"
	"github.com/edufiliova/navigator/internal/gate"
	"github.com/edufiliova/navigator/internal/menu"
	"github.com/edufiliova/navigator/internal/navigator"
	"github.com/edufiliova/navigator/internal/observability"
	"github.com/edufiliova/navigator/internal/openapi"
	"github.com/edufiliova/navigator/internal/route"
	"github.com/edufiliova/navigator/internal/session"
	"github.com/edufiliova/navigator/internal/storage"
	"github.com/edufiliova/navigator/internal/transport"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Step 1: Parse CLI flags.
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	// Step 2: Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	// Step 3: Initialize telemetry (logger, tracer, metrics).
	observability.Version = version
	observability.Commit = commit

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "navigator", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}

	metrics := observability.InitMetrics(prometheus.DefaultRegisterer)

	// Step 4: Build the page catalog and check it for redirect loops.
	mapper := route.NewMapper()
	files, err := catalog.NewLoader().LoadAll(cfg.Catalog.Directories)
	if err != nil {
		metrics.RecordCatalogLoad("failure", 0)
		logger.Error("catalog override loading failed", zap.Error(err))
		return 1
	}
	descs, verrs := catalog.Build(mapper, files)
	if len(verrs) > 0 {
		for _, ve := range verrs {
			logger.Error("catalog validation error", zap.String("error", ve.Error()))
		}
		metrics.RecordCatalogLoad("failure", 0)
		logger.Error("catalog validation failed", zap.Int("errors", len(verrs)))
		return 1
	}
	pages := catalog.NewRegistry(descs)
	accessGate := gate.New(pages, cfg.Domains.AllowedPaths)
	if loops := accessGate.VerifyNoRedirectLoops(); len(loops) > 0 {
		for _, l := range loops {
			logger.Error("redirect chain too long", zap.String("chain", l.String()))
		}
		metrics.RecordCatalogLoad("failure", 0)
		return 1
	}
	metrics.RecordCatalogLoad("success", pages.Len())

	// Step 5: Open the preference store.
	prefs, prefsCloser, err := buildPreferenceStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("preference store initialization failed", zap.Error(err))
		return 1
	}

	// Step 6: Build the session checker.
	auth, err := session.New(cfg.Auth, logger)
	if err != nil {
		logger.Error("session checker initialization failed", zap.Error(err))
		return 1
	}
	if hc, ok := auth.(*session.HTTPChecker); ok {
		hc.Breaker().OnStateChange(func(s session.BreakerState) {
			metrics.SetAuthCircuitBreakerState(breakerGauge(s))
			logger.Warn("auth circuit breaker changed state", zap.String("state", s.String()))
		})
	}

	// Step 7: Build the navigation engine and session registry.
	engine := navigator.NewEngine(navigator.Options{
		Mapper:      mapper,
		Gate:        accessGate,
		Auth:        auth,
		Prefs:       prefs,
		Logger:      logger,
		Recorder:    metrics,
		CheckerName: cfg.Auth.Checker,
		AuthTimeout: cfg.Auth.Timeout,
	})
	sessions := navigator.NewRegistry(engine, cfg.Sessions.IdleTTL)
	sessions.OnSizeChange(metrics.SetActiveSessions)
	sessions.OnEvict(metrics.RecordSessionsEvicted)

	sections, err := menu.LoadFile(cfg.Menu.File)
	if err != nil {
		logger.Error("menu loading failed", zap.Error(err))
		return 1
	}

	api, err := openapi.Load()
	if err != nil {
		logger.Error("OpenAPI document load failed", zap.Error(err))
		return 1
	}

	var limiter *transport.RateLimiter
	if cfg.Server.RateLimit.Enabled {
		limiter = transport.NewRateLimiter(cfg.Server.RateLimit, metrics.RecordRateLimited)
	}

	// Step 8: Build HTTP router.
	readinessChecks := observability.ReadinessChecks{
		CatalogLoaded:   func() bool { return pages.Len() > 0 },
		PreferenceStore: prefs,
	}
	if hc, ok := auth.(session.HealthChecker); ok {
		readinessChecks.AuthBackend = hc
	}

	router := transport.NewRouter(transport.Dependencies{
		Config:         cfg,
		Logger:         logger,
		Metrics:        metrics,
		Limiter:        limiter,
		Mapper:         mapper,
		Gate:           accessGate,
		Detector:       gate.NewDetector(cfg.Domains.AuthOnlyHosts, cfg.Domains.AppSubdomains),
		Sessions:       sessions,
		Menu:           menu.NewProvider(sections, mapper),
		API:            api,
		HealthHandler:  observability.HandleHealth(),
		ReadyHandler:   observability.HandleReady(readinessChecks),
		MetricsHandler: observability.Handler(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Step 9: Start background tasks.
	bgCtx, bgCancel := context.WithCancel(ctx)
	defer bgCancel()

	go sessions.Run(bgCtx, cfg.Sessions.SweepInterval)
	if limiter != nil {
		go limiter.Run(bgCtx)
	}

	// Step 10: Start HTTP server.
	logger.Info("server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version),
		zap.String("commit", commit),
		zap.Int("page_states", pages.Len()),
		zap.String("catalog_checksum", pages.Checksum()),
		zap.String("auth_checker", cfg.Auth.Checker),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	// Graceful shutdown sequence.
	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new connections and drain in-flight requests.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	bgCancel()

	if prefsCloser != nil {
		prefsCloser()
	}

	// Flush telemetry.
	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return 0
}

// buildPreferenceStore creates the preference store selected by cfg.Driver.
// The returned closer may be nil.
func buildPreferenceStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.PreferenceStore, func(), error) {
	switch cfg.Driver {
	case "memory", "":
		logger.Info("using in-memory preference store")
		return storage.NewMemoryStore(cfg.LastPageTTL), nil, nil
	case "redis":
		url := os.Getenv(cfg.RedisURLEnv)
		if url == "" {
			return nil, nil, fmt.Errorf("preference store: %s environment variable not set", cfg.RedisURLEnv)
		}
		client, err := storage.DialRedis(ctx, url)
		if err != nil {
			return nil, nil, fmt.Errorf("preference store: %w", err)
		}
		return storage.NewRedisStore(client, cfg.LastPageTTL), func() { _ = client.Close() }, nil
	case "postgres":
		dsn := os.Getenv(cfg.DSNEnv)
		if dsn == "" {
			return nil, nil, fmt.Errorf("preference store: %s environment variable not set", cfg.DSNEnv)
		}
		if cfg.MigrateOnStart {
			if err := storage.RunMigrations(dsn); err != nil {
				return nil, nil, fmt.Errorf("preference store: %w", err)
			}
			logger.Info("preference store migrations applied")
		}
		pool, err := storage.OpenPool(ctx, dsn, int32(cfg.MaxOpenConns), cfg.ConnMaxLifetime)
		if err != nil {
			return nil, nil, fmt.Errorf("preference store: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("preference store: ping: %w", err)
		}
		return storage.NewPgStore(pool, cfg.LastPageTTL), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported preference store driver: %q", cfg.Driver)
	}
}

// breakerGauge maps a breaker state onto the gauge's 0=closed, 1=half-open,
// 2=open scale.
func breakerGauge(s session.BreakerState) float64 {
	switch s {
	case session.BreakerHalfOpen:
		return 1
	case session.BreakerOpen:
		return 2
	default:
		return 0
	}
}
