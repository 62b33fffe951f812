package transport

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/edufiliova/navigator/internal/gate"
	"github.com/edufiliova/navigator/internal/menu"
	"github.com/edufiliova/navigator/internal/navigator"
	"github.com/edufiliova/navigator/internal/observability"
	"github.com/edufiliova/navigator/model"
)

type startRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

type navigateRequest struct {
	Target string            `json:"target" validate:"required,max=64"`
	Style  string            `json:"style" validate:"omitempty,transition_style"`
	Aux    map[string]string `json:"aux" validate:"max=16,dive,keys,max=64,endkeys,max=512"`
}

type popStateRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

type navigationHandlers struct {
	sessions *navigator.Registry
	detector *gate.Detector
	menu     *menu.Provider
	decoder  *requestDecoder
	logger   *zap.Logger
}

// coordinator returns the started coordinator of the calling device.
func (h *navigationHandlers) coordinator(ctx context.Context) (*navigator.Coordinator, error) {
	rctx := model.MustRequestContext(ctx)
	c, ok := h.sessions.Get(rctx.DeviceID)
	if !ok {
		return nil, model.NewSessionNotStartedError(rctx.DeviceID)
	}
	return c, nil
}

func (h *navigationHandlers) start(w http.ResponseWriter, r *http.Request) {
	rctx := model.MustRequestContext(r.Context())

	var req startRequest
	if err := h.decoder.decode(r, "startNavigation", &req); err != nil {
		WriteError(w, r, err)
		return
	}

	env := h.detector.Detect(pageHost(req.URL, rctx.Host), req.URL, r.Header.Get("X-App-Shell"))
	env.SessionToken = rctx.SessionToken

	ctx, span := observability.StartSpan(r.Context(), "navigator.start",
		observability.AttrDeviceID.String(rctx.DeviceID),
		observability.AttrAppShell.Bool(env.IsMobileAppShell),
	)
	defer span.End()

	c := h.sessions.Acquire(rctx.DeviceID)
	out := c.Start(ctx, req.URL, env)
	if rctx.HasSession() {
		var err error
		out, err = c.RefreshAuth(ctx, "")
		if err != nil {
			span.RecordError(err)
			WriteError(w, r, err)
			return
		}
	}
	annotate(span, out)
	WriteJSON(w, http.StatusOK, out)
}

func (h *navigationHandlers) navigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := h.decoder.decode(r, "navigate", &req); err != nil {
		WriteError(w, r, err)
		return
	}

	h.run(w, r, "navigator.navigate", func(ctx context.Context, c *navigator.Coordinator) (navigator.Outcome, error) {
		trace.SpanFromContext(ctx).SetAttributes(observability.AttrTarget.String(req.Target))
		return c.Navigate(ctx, model.NavigationIntent{
			Target: model.PageState(req.Target),
			Style:  model.TransitionStyle(req.Style),
			Aux:    req.Aux,
		})
	})
}

func (h *navigationHandlers) popState(w http.ResponseWriter, r *http.Request) {
	var req popStateRequest
	if err := h.decoder.decode(r, "popState", &req); err != nil {
		WriteError(w, r, err)
		return
	}

	h.run(w, r, "navigator.popstate", func(ctx context.Context, c *navigator.Coordinator) (navigator.Outcome, error) {
		return c.HandlePopState(ctx, req.URL)
	})
}

func (h *navigationHandlers) refreshAuth(w http.ResponseWriter, r *http.Request) {
	token := model.MustRequestContext(r.Context()).SessionToken
	h.run(w, r, "navigator.refresh_auth", func(ctx context.Context, c *navigator.Coordinator) (navigator.Outcome, error) {
		return c.RefreshAuth(ctx, token)
	})
}

func (h *navigationHandlers) logout(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "navigator.logout", func(ctx context.Context, c *navigator.Coordinator) (navigator.Outcome, error) {
		return c.Logout(ctx)
	})
}

func (h *navigationHandlers) completeOnboarding(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "navigator.complete_onboarding", func(ctx context.Context, c *navigator.Coordinator) (navigator.Outcome, error) {
		return c.CompleteOnboarding(ctx)
	})
}

func (h *navigationHandlers) state(w http.ResponseWriter, r *http.Request) {
	c, err := h.coordinator(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, c.Snapshot())
}

// getMenu serves the guest menu to devices without a session.
func (h *navigationHandlers) getMenu(w http.ResponseWriter, r *http.Request) {
	var nav model.NavigationContext
	if c, err := h.coordinator(r.Context()); err == nil {
		nav = c.Context()
	}
	WriteJSON(w, http.StatusOK, h.menu.Menu(nav.Role, nav.IsAuthenticated))
}

// run resolves the device's coordinator and applies op inside a span.
func (h *navigationHandlers) run(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	op func(context.Context, *navigator.Coordinator) (navigator.Outcome, error),
) {
	rctx := model.MustRequestContext(r.Context())
	ctx, span := observability.StartSpan(r.Context(), spanName,
		observability.AttrDeviceID.String(rctx.DeviceID),
	)
	defer span.End()

	c, err := h.coordinator(ctx)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	out, err := op(ctx, c)
	if err != nil {
		span.RecordError(err)
		observability.RequestLogger(r.Context(), h.logger).Debug("navigation operation rejected",
			zap.String("operation", spanName),
			zap.Error(err),
		)
		WriteError(w, r, err)
		return
	}
	annotate(span, out)
	WriteJSON(w, http.StatusOK, out)
}

func annotate(span trace.Span, out navigator.Outcome) {
	attrs := []attribute.KeyValue{
		observability.AttrState.String(string(out.State)),
		observability.AttrDecision.String(string(out.Decision.Kind)),
		observability.AttrRedirects.Int(len(out.Redirects)),
	}
	if out.Decision.Reason != "" {
		attrs = append(attrs, observability.AttrReason.String(out.Decision.Reason))
	}
	span.SetAttributes(attrs...)
}

// pageHost prefers the host of an absolute page URL over the request's.
func pageHost(rawURL, fallback string) string {
	if !strings.Contains(rawURL, "://") {
		return fallback
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return fallback
	}
	return u.Host
}
