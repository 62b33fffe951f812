package navigator

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/edufiliova/navigator/internal/gate"
	"github.com/edufiliova/navigator/internal/session"
	"github.com/edufiliova/navigator/internal/storage"
	"github.com/edufiliova/navigator/model"
)

// Phase is the coordinator's meta-state alongside its current page.
type Phase string

const (
	// PhaseInitializing lasts until the first session check resolves.
	PhaseInitializing Phase = "initializing"
	// PhaseTransitioningOut spans a commit, between the gate's decision and
	// the new state becoming current.
	PhaseTransitioningOut Phase = "transitioning-out"
	// PhaseReady accepts intents with resolved auth facts.
	PhaseReady Phase = "ready"
)

// Reasons reported by the coordinator in addition to the gate's.
const (
	ReasonRedirectLimit   = "redirect-limit"
	ReasonAuthResultStale = "auth-result-stale"
	ReasonRestarted       = "restarted"
)

// Outcome is what the client applies after an operation: the page to
// render, the history operation and the transition style.
type Outcome struct {
	State     model.PageState       `json:"state"`
	Path      string                `json:"path"`
	EntityID  string                `json:"entity_id,omitempty"`
	Aux       map[string]string     `json:"aux,omitempty"`
	Decision  model.AuthDecision    `json:"decision"`
	Redirects []model.PageState     `json:"redirects,omitempty"`
	Committed bool                  `json:"committed"`
	History   HistoryOp             `json:"history"`
	Style     model.TransitionStyle `json:"style,omitempty"`
	// Deferred is set when the intent waits for the session check.
	Deferred bool `json:"deferred,omitempty"`
	// Loading asks the client for a placeholder instead of the previous page.
	Loading bool  `json:"loading,omitempty"`
	Phase   Phase `json:"phase"`
}

// Snapshot is a point-in-time copy of a coordinator.
type Snapshot struct {
	DeviceID     string                  `json:"device_id"`
	State        model.PageState         `json:"state"`
	Path         string                  `json:"path"`
	EntityID     string                  `json:"entity_id,omitempty"`
	Aux          map[string]string       `json:"aux,omitempty"`
	Phase        Phase                   `json:"phase"`
	Context      model.NavigationContext `json:"context"`
	History      []HistoryEntry          `json:"history"`
	Deferred     *model.NavigationIntent `json:"deferred,omitempty"`
	AuthInFlight bool                    `json:"auth_in_flight"`
	LastActive   time.Time               `json:"last_active"`
}

// Coordinator is the navigation state machine of one device. It is safe for
// concurrent use; the session check runs without holding the lock.
type Coordinator struct {
	engine     *Engine
	deviceID   string
	lastActive atomic.Int64

	mu           sync.Mutex
	started      bool
	epoch        uint64
	token        string
	phase        Phase
	current      model.PageState
	path         string
	entityID     string
	aux          map[string]string
	nav          model.NavigationContext
	deferred     *model.NavigationIntent
	superseded   *model.NavigationIntent
	authInFlight bool
	journal      journal
}

// NewCoordinator creates an unstarted coordinator for deviceID.
func (e *Engine) NewCoordinator(deviceID string) *Coordinator {
	c := &Coordinator{
		engine:   e,
		deviceID: deviceID,
		phase:    PhaseInitializing,
		current:  model.StateHome,
		path:     e.mapper.ResolvePathFromState(model.StateHome, nil),
	}
	c.touch()
	return c
}

// DeviceID returns the device the coordinator belongs to.
func (c *Coordinator) DeviceID() string { return c.deviceID }

// LastActive returns when the coordinator last handled an operation.
func (c *Coordinator) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

// idleSince reports whether the coordinator has been inactive since cutoff
// with no session check in flight.
func (c *Coordinator) idleSince(cutoff time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.authInFlight && c.LastActive().Before(cutoff)
}

func (c *Coordinator) touch() {
	c.lastActive.Store(c.engine.now().UnixNano())
}

// Start (re)initialises the coordinator for a page load of rawURL. The
// initial state comes from the mapper alone. Without a session token auth
// is resolved at once and the state is validated with a replace; otherwise
// the provisional state is returned and RefreshAuth completes it.
func (c *Coordinator) Start(ctx context.Context, rawURL string, env model.Environment) Outcome {
	e := c.engine
	c.touch()

	prefs, err := storage.Load(ctx, e.prefs, c.deviceID)
	if err != nil {
		e.logger.Warn("loading device preferences failed", zap.String("device_id", c.deviceID), zap.Error(err))
		prefs = storage.Preferences{}
	}
	res := e.mapper.Resolve(rawURL)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.started = true
	c.epoch++
	c.authInFlight = false
	c.token = env.SessionToken
	c.deferred = nil
	c.superseded = nil
	c.journal.reset()
	c.phase = PhaseInitializing
	c.nav = model.NavigationContext{
		IsLoadingAuth:    env.SessionToken != "",
		IsMobileAppShell: env.IsMobileAppShell,
		IsAuthOnlyDomain: env.IsAuthOnlyDomain,
		HasOnboarded:     prefs.Onboarded,
		LastVisited:      prefs.LastVisited,
	}
	c.setCurrent(res.State, res.Aux)

	e.logger.Debug("navigation session started",
		zap.String("device_id", c.deviceID),
		zap.String("state", string(res.State)),
		zap.Bool("mobile_app_shell", env.IsMobileAppShell),
		zap.Bool("auth_only_domain", env.IsAuthOnlyDomain),
	)

	if c.token == "" {
		c.phase = PhaseReady
		return c.revalidateLocked(ctx)
	}
	out := c.outcomeLocked(model.Pending(gate.ReasonAuthLoading), HistoryNone, "")
	out.Loading = c.protected(c.current)
	return out
}

// Navigate runs intent through the gate and commits the result.
func (c *Coordinator) Navigate(ctx context.Context, intent model.NavigationIntent) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return Outcome{}, model.NewSessionNotStartedError(c.deviceID)
	}
	c.touch()
	return c.navigateLocked(ctx, intent, HistoryPush), nil
}

// HandlePopState feeds a back/forward move through the same path as any
// other intent, replacing the history entry the browser already moved to.
func (c *Coordinator) HandlePopState(ctx context.Context, rawURL string) (Outcome, error) {
	res := c.engine.mapper.Resolve(rawURL)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return Outcome{}, model.NewSessionNotStartedError(c.deviceID)
	}
	c.touch()
	intent := model.NavigationIntent{
		Target: res.State,
		Style:  model.TransitionSlideRight,
		Aux:    res.Aux,
	}
	return c.navigateLocked(ctx, intent, HistoryReplace), nil
}

// RefreshAuth re-runs the session check. A non-empty token replaces the
// stored one. Only one check may be in flight; a second call fails with
// AUTH_CHECK_IN_FLIGHT. Failures and timeouts count as signed out.
func (c *Coordinator) RefreshAuth(ctx context.Context, token string) (Outcome, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return Outcome{}, model.NewSessionNotStartedError(c.deviceID)
	}
	if c.authInFlight {
		c.mu.Unlock()
		return Outcome{}, model.NewAuthCheckInFlightError()
	}
	if token != "" {
		c.token = token
	}
	c.authInFlight = true
	c.nav.IsLoadingAuth = true
	epoch := c.epoch
	captured := c.current
	tok := c.token
	c.mu.Unlock()

	c.touch()
	st := c.engine.checkAuth(ctx, c.deviceID, tok)

	c.touch()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		c.engine.logger.Debug("discarding auth result from a previous session",
			zap.String("device_id", c.deviceID),
		)
		return c.outcomeLocked(model.AuthDecision{Kind: model.DecisionAllow, Reason: ReasonRestarted}, HistoryNone, ""), nil
	}
	c.authInFlight = false
	return c.applyAuthLocked(ctx, st, captured), nil
}

// CompleteOnboarding records the write-once onboarding flag and resumes the
// intent onboarding interrupted, or home.
func (c *Coordinator) CompleteOnboarding(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return Outcome{}, model.NewSessionNotStartedError(c.deviceID)
	}
	c.touch()
	c.markOnboardedLocked(ctx)

	intent := model.NavigationIntent{Target: model.StateHome}
	if c.superseded != nil {
		intent = *c.superseded
		c.superseded = nil
	}
	return c.navigateLocked(ctx, intent, HistoryReplace), nil
}

// Logout drops the auth facts and re-validates the current state. A check
// still in flight is discarded when it completes.
func (c *Coordinator) Logout(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return Outcome{}, model.NewSessionNotStartedError(c.deviceID)
	}
	c.touch()
	c.epoch++
	c.authInFlight = false
	c.token = ""
	c.deferred = nil
	c.nav.IsAuthenticated = false
	c.nav.Role = model.RoleNone
	c.nav.IsLoadingAuth = false
	if c.phase == PhaseInitializing {
		c.phase = PhaseReady
	}
	return c.revalidateLocked(ctx), nil
}

// Snapshot returns a copy of the coordinator's state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		DeviceID:     c.deviceID,
		State:        c.current,
		Path:         c.path,
		EntityID:     c.entityID,
		Aux:          maps.Clone(c.aux),
		Phase:        c.phase,
		Context:      c.nav,
		History:      c.journal.snapshot(),
		AuthInFlight: c.authInFlight,
		LastActive:   c.LastActive(),
	}
	if c.deferred != nil {
		d := cloneIntent(*c.deferred)
		s.Deferred = &d
	}
	return s
}

// Context returns the coordinator's current navigation context.
func (c *Coordinator) Context() model.NavigationContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nav
}

// The methods below must be called with c.mu held.

func (c *Coordinator) navigateLocked(ctx context.Context, intent model.NavigationIntent, op HistoryOp) Outcome {
	e := c.engine
	target := intent.Target
	trail := e.gate.Follow(target, c.nav)

	from := target
	for _, hop := range trail.Redirects {
		e.rec.RecordRedirect(string(from), string(hop))
		from = hop
	}
	e.rec.RecordGateDecision(string(trail.Decision.Kind))
	e.logger.Debug("gate decision",
		zap.String("device_id", c.deviceID),
		zap.String("requested", string(target)),
		zap.String("chain", trail.String()),
		zap.String("kind", string(trail.Decision.Kind)),
		zap.String("reason", trail.Decision.Reason),
	)

	if trail.Exhausted {
		e.rec.RecordRedirectLimit(string(target))
		e.logger.Warn("redirect chain exceeded hop limit, falling back to home",
			zap.String("device_id", c.deviceID),
			zap.String("chain", trail.String()+" -> "+string(trail.Decision.Target)),
		)
		return c.commitLocked(ctx, model.StateHome, nil, intent.Style, op,
			model.Redirect(model.StateHome, ReasonRedirectLimit), trail.Redirects)
	}

	switch trail.Decision.Kind {
	case model.DecisionPending:
		d := cloneIntent(intent)
		c.deferred = &d
		e.rec.RecordDeferral()
		out := c.outcomeLocked(trail.Decision, HistoryNone, "")
		out.Redirects = trail.Redirects
		out.Deferred = true
		out.Loading = c.protected(trail.Final)
		return out

	case model.DecisionOnboarding:
		superseded := c.superseded
		if target != model.StateGetStarted {
			s := cloneIntent(intent)
			superseded = &s
		}
		out := c.commitLocked(ctx, model.StateGetStarted, nil, intent.Style, op, trail.Decision, trail.Redirects)
		c.superseded = superseded
		return out

	default:
		var aux map[string]string
		if trail.Final == target {
			aux = intent.Aux
		}
		return c.commitLocked(ctx, trail.Final, aux, intent.Style, op, trail.Decision, trail.Redirects)
	}
}

func (c *Coordinator) commitLocked(
	ctx context.Context,
	state model.PageState,
	aux map[string]string,
	explicit model.TransitionStyle,
	op HistoryOp,
	decision model.AuthDecision,
	redirects []model.PageState,
) Outcome {
	e := c.engine
	fromDesc, _ := e.gate.Classify(c.current)
	toDesc, _ := e.gate.Classify(state)
	style := PickStyle(explicit, fromDesc, toDesc)

	prev := c.phase
	c.phase = PhaseTransitioningOut

	path := e.mapper.ResolvePathFromState(state, aux)
	if op == HistoryPush && state == c.current && path == c.path {
		op = HistoryReplace
	}
	c.setCurrent(state, aux)
	// A committed state replaces any intent still waiting on auth or onboarding.
	c.deferred = nil
	c.superseded = nil
	c.journal.append(HistoryEntry{
		State: state,
		Path:  path,
		Op:    op,
		Style: style,
		At:    e.now(),
	})

	if c.nav.IsMobileAppShell && c.nav.IsAuthenticated && !toDesc.LandingOnly() {
		c.nav.LastVisited = state
		if err := e.prefs.SetLastVisited(ctx, c.deviceID, state); err != nil {
			e.logger.Warn("persisting last visited page failed",
				zap.String("device_id", c.deviceID),
				zap.Error(err),
			)
		}
	}

	if prev == PhaseInitializing {
		c.phase = PhaseInitializing
	} else {
		c.phase = PhaseReady
	}

	e.rec.RecordCommit(string(state), string(style))
	e.logger.Info("navigation committed",
		zap.String("device_id", c.deviceID),
		zap.String("state", string(state)),
		zap.String("path", path),
		zap.String("history", string(op)),
		zap.String("style", string(style)),
	)

	out := c.outcomeLocked(decision, op, style)
	out.Committed = true
	out.Redirects = redirects
	return out
}

func (c *Coordinator) applyAuthLocked(ctx context.Context, st session.AuthState, captured model.PageState) Outcome {
	c.nav.IsLoadingAuth = false
	c.nav.IsAuthenticated = st.Authenticated
	c.nav.Role = model.RoleNone
	if st.Authenticated {
		c.nav.Role = st.Role
	}
	if st.Authenticated && c.nav.IsAuthOnlyDomain {
		c.markOnboardedLocked(ctx)
	}
	if c.phase == PhaseInitializing {
		c.phase = PhaseReady
	}

	if c.deferred != nil {
		intent := *c.deferred
		c.deferred = nil
		return c.navigateLocked(ctx, intent, HistoryPush)
	}
	if c.current != captured {
		c.engine.logger.Debug("auth result not applied to a page the user left",
			zap.String("device_id", c.deviceID),
			zap.String("captured", string(captured)),
			zap.String("current", string(c.current)),
		)
		return c.outcomeLocked(model.AuthDecision{Kind: model.DecisionAllow, Reason: ReasonAuthResultStale}, HistoryNone, "")
	}
	return c.revalidateLocked(ctx)
}

func (c *Coordinator) revalidateLocked(ctx context.Context) Outcome {
	return c.navigateLocked(ctx, model.NavigationIntent{Target: c.current, Aux: c.aux}, HistoryReplace)
}

func (c *Coordinator) markOnboardedLocked(ctx context.Context) {
	if c.nav.HasOnboarded {
		return
	}
	c.nav.HasOnboarded = true
	if err := c.engine.prefs.MarkOnboarded(ctx, c.deviceID); err != nil {
		c.engine.logger.Warn("persisting onboarding flag failed",
			zap.String("device_id", c.deviceID),
			zap.Error(err),
		)
	}
}

func (c *Coordinator) setCurrent(state model.PageState, aux map[string]string) {
	c.current = state
	c.aux = maps.Clone(aux)
	c.entityID = c.engine.mapper.EntityID(state, aux)
	c.path = c.engine.mapper.ResolvePathFromState(state, aux)
}

func (c *Coordinator) outcomeLocked(decision model.AuthDecision, op HistoryOp, style model.TransitionStyle) Outcome {
	return Outcome{
		State:    c.current,
		Path:     c.path,
		EntityID: c.entityID,
		Aux:      maps.Clone(c.aux),
		Decision: decision,
		History:  op,
		Style:    style,
		Phase:    c.phase,
	}
}

func (c *Coordinator) protected(state model.PageState) bool {
	desc, ok := c.engine.gate.Classify(state)
	return ok && desc.Access.Protected()
}

func cloneIntent(in model.NavigationIntent) model.NavigationIntent {
	in.Aux = maps.Clone(in.Aux)
	return in
}
