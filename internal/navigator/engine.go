// Package navigator sequences page transitions for one client device at a
// time. A Coordinator owns the device's current page state, runs every
// intent through the access gate, commits allowed states with a history
// entry and transition style, and replays at most one intent deferred while
// the session check was in flight.
package navigator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/edufiliova/navigator/internal/gate"
	"github.com/edufiliova/navigator/internal/observability"
	"github.com/edufiliova/navigator/internal/route"
	"github.com/edufiliova/navigator/internal/session"
	"github.com/edufiliova/navigator/internal/storage"
)

const defaultAuthTimeout = 8 * time.Second

// Recorder receives navigation events. observability.Metrics implements it.
type Recorder interface {
	RecordGateDecision(kind string)
	RecordRedirect(from, to string)
	RecordRedirectLimit(requested string)
	RecordCommit(state, style string)
	RecordDeferral()
	RecordAuthCheck(result string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordGateDecision(string)              {}
func (nopRecorder) RecordRedirect(string, string)          {}
func (nopRecorder) RecordRedirectLimit(string)             {}
func (nopRecorder) RecordCommit(string, string)            {}
func (nopRecorder) RecordDeferral()                        {}
func (nopRecorder) RecordAuthCheck(string, time.Duration) {}

// Options configures an Engine. Mapper, Gate, Auth and Prefs are required.
type Options struct {
	Mapper   *route.Mapper
	Gate     *gate.Gate
	Auth     session.AuthChecker
	Prefs    storage.PreferenceStore
	Logger   *zap.Logger
	Recorder Recorder

	// CheckerName labels session check spans. Empty uses "default".
	CheckerName string

	// AuthTimeout bounds each session check. Zero uses 8s.
	AuthTimeout time.Duration
}

// Engine holds the collaborators shared by every coordinator.
type Engine struct {
	mapper      *route.Mapper
	gate        *gate.Gate
	auth        session.AuthChecker
	prefs       storage.PreferenceStore
	logger      *zap.Logger
	rec         Recorder
	checkerName string
	authTimeout time.Duration
	now         func() time.Time
}

// NewEngine creates an engine from opts.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		mapper:      opts.Mapper,
		gate:        opts.Gate,
		auth:        opts.Auth,
		prefs:       opts.Prefs,
		logger:      opts.Logger,
		rec:         opts.Recorder,
		checkerName: opts.CheckerName,
		authTimeout: opts.AuthTimeout,
		now:         time.Now,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.rec == nil {
		e.rec = nopRecorder{}
	}
	if e.checkerName == "" {
		e.checkerName = "default"
	}
	if e.authTimeout <= 0 {
		e.authTimeout = defaultAuthTimeout
	}
	return e
}

// Mapper returns the engine's path mapper.
func (e *Engine) Mapper() *route.Mapper { return e.mapper }

// Gate returns the engine's access gate.
func (e *Engine) Gate() *gate.Gate { return e.gate }

// checkAuth resolves token with the configured timeout. The check outlives a
// cancelled caller. Any failure is logged and reported as signed out.
func (e *Engine) checkAuth(ctx context.Context, deviceID, token string) session.AuthState {
	ctx, span := observability.StartSpan(ctx, "navigator.auth_check",
		observability.AttrDeviceID.String(deviceID),
		observability.AttrChecker.String(e.checkerName),
	)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.authTimeout)
	defer cancel()

	start := e.now()
	st, err := e.auth.Check(ctx, token)
	elapsed := e.now().Sub(start)
	observability.EndSpanWithError(span, err)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.rec.RecordAuthCheck("timeout", elapsed)
		e.logger.Warn("auth check timed out",
			zap.String("device_id", deviceID),
			zap.Duration("timeout", e.authTimeout),
		)
		return session.AuthState{}
	case err != nil:
		e.rec.RecordAuthCheck("error", elapsed)
		e.logger.Warn("auth check failed", zap.String("device_id", deviceID), zap.Error(err))
		return session.AuthState{}
	case st.Authenticated:
		e.rec.RecordAuthCheck("authenticated", elapsed)
	default:
		e.rec.RecordAuthCheck("anonymous", elapsed)
	}
	return st
}
