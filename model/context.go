package model

import (
	"context"
	"errors"
	"fmt"
)

// RequestContext carries the device, session and tracing information for the
// lifetime of a navigator API request. It is immutable after construction and
// safe for concurrent reads.
type RequestContext struct {
	DeviceID      string
	SessionToken  string
	Host          string
	AppShell      bool
	CorrelationID string
	TraceID       string
	SpanID        string
}

// Validate checks that all mandatory fields are present.
// DeviceID must be non-empty.
func (rc *RequestContext) Validate() error {
	var errs []error
	if rc.DeviceID == "" {
		errs = append(errs, fmt.Errorf("DeviceID is required"))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasSession reports whether the request carried a session token.
func (rc *RequestContext) HasSession() bool {
	return rc.SessionToken != ""
}

type contextKey struct{}

// WithRequestContext attaches a RequestContext to the given context.
func WithRequestContext(ctx context.Context, rctx *RequestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rctx)
}

// RequestContextFrom extracts the RequestContext from the context, or returns nil
// if not present.
func RequestContextFrom(ctx context.Context) *RequestContext {
	rctx, _ := ctx.Value(contextKey{}).(*RequestContext)
	return rctx
}

// MustRequestContext extracts the RequestContext from the context, panicking if
// it is not present. This is safe to call in handlers that are guaranteed to run
// behind the device middleware.
func MustRequestContext(ctx context.Context) *RequestContext {
	rctx := RequestContextFrom(ctx)
	if rctx == nil {
		panic("model: RequestContext not found in context")
	}
	return rctx
}
