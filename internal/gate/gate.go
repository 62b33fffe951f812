// Package gate decides whether a page state may render for a navigation
// context. Authorize is pure and idempotent: identical inputs always yield
// the identical decision.
package gate

import (
	"strings"

	"github.com/edufiliova/navigator/internal/catalog"
	"github.com/edufiliova/navigator/model"
)

// Decision reasons.
const (
	ReasonUnknownState    = "unknown-state"
	ReasonAuthOnlyDomain  = "auth-only-domain"
	ReasonOnboarding      = "onboarding"
	ReasonAuthLoading     = "auth-loading"
	ReasonForwarded       = "forwarded"
	ReasonMobileLanding   = "mobile-landing"
	ReasonMobileWebsite   = "mobile-website-page"
	ReasonAlreadySignedIn = "already-signed-in"
	ReasonAuthRequired    = "auth-required"
	ReasonRoleMismatch    = "role-mismatch"
)

// DefaultAuthOnlyPaths are the paths reachable on an auth-only domain. A path
// is allowed when it equals an entry or starts with the entry plus "/".
var DefaultAuthOnlyPaths = []string{
	"/",
	"/app",
	"/login",
	"/signup",
	"/teacher-login",
	"/teacher-signup",
	"/teacher-signup-basic",
	"/teacher-verify-email",
	"/teacher-application-status",
	"/freelancer-login",
	"/freelancer-signup",
	"/freelancer-signup-basic",
	"/freelancer-verify-email",
	"/freelancer-application-status",
	"/auth-modern",
	"/reset-password",
	"/verify-email",
	"/privacy-policy",
	"/terms",
	"/student-terms",
	"/teacher-terms",
}

// Catalog is the read side of the page catalog.
type Catalog interface {
	Get(state model.PageState) (catalog.PageDescriptor, bool)
}

// Gate evaluates access decisions.
type Gate struct {
	catalog      Catalog
	authOnlyPath []string
}

// New creates a Gate. A nil or empty allow-list uses DefaultAuthOnlyPaths.
func New(cat Catalog, authOnlyPaths []string) *Gate {
	if len(authOnlyPaths) == 0 {
		authOnlyPaths = DefaultAuthOnlyPaths
	}
	return &Gate{catalog: cat, authOnlyPath: authOnlyPaths}
}

// PathAllowedOnAuthOnlyDomain reports whether path is on the auth-only
// allow-list.
func (g *Gate) PathAllowedOnAuthOnlyDomain(path string) bool {
	for _, allowed := range g.authOnlyPath {
		if path == allowed || strings.HasPrefix(path, allowed+"/") {
			return true
		}
	}
	return false
}

// Authorize decides whether state may render under ctx. Gates are evaluated
// in a fixed order; the first that applies wins.
func (g *Gate) Authorize(state model.PageState, ctx model.NavigationContext) model.AuthDecision {
	desc, ok := g.catalog.Get(state)
	if !ok {
		return model.Redirect(model.StateNotFound, ReasonUnknownState)
	}

	if ctx.IsAuthOnlyDomain && !g.PathAllowedOnAuthOnlyDomain(desc.Path) {
		return model.Redirect(model.StateAuth, ReasonAuthOnlyDomain)
	}

	if (ctx.IsAuthOnlyDomain || ctx.IsMobileAppShell) && !ctx.HasOnboarded && !ctx.IsAuthenticated {
		if ctx.IsLoadingAuth {
			return model.Pending(ReasonAuthLoading)
		}
		return model.Onboarding()
	}

	if desc.Forward != "" {
		return model.Redirect(desc.Forward, ReasonForwarded)
	}

	if ctx.IsLoadingAuth && (desc.Access.Protected() || (desc.LandingOnly() && ctx.IsMobileAppShell)) {
		return model.Pending(ReasonAuthLoading)
	}

	dashboard := model.DashboardFor(ctx.Role)

	if desc.LandingOnly() && ctx.IsMobileAppShell && ctx.SignedIn() {
		if g.resumable(ctx.LastVisited, state, ctx) {
			return model.Redirect(ctx.LastVisited, ReasonMobileLanding)
		}
		return model.Redirect(dashboard, ReasonMobileLanding)
	}

	if ctx.IsMobileAppShell && desc.WebsiteOnly && ctx.SignedIn() {
		return model.Redirect(dashboard, ReasonMobileWebsite)
	}

	if state == model.StateAuth && ctx.SignedIn() {
		return model.Redirect(dashboard, ReasonAlreadySignedIn)
	}

	switch desc.Access {
	case model.AccessAuthRequired:
		if !ctx.IsAuthenticated {
			return model.Redirect(model.StateAuth, ReasonAuthRequired)
		}
	case model.AccessRoleRestricted:
		if !ctx.IsAuthenticated {
			return model.Redirect(model.StateAuth, ReasonAuthRequired)
		}
		if !desc.Allows(ctx.Role) {
			return model.Redirect(dashboard, ReasonRoleMismatch)
		}
	}

	return model.Allow()
}

// Classify returns the static access classification of state.
func (g *Gate) Classify(state model.PageState) (catalog.PageDescriptor, bool) {
	return g.catalog.Get(state)
}

// resumable reports whether the mobile shell may resume at last instead of
// the role dashboard: it must be a different, non-landing state that is
// itself allowed.
func (g *Gate) resumable(last, current model.PageState, ctx model.NavigationContext) bool {
	if last == "" || last == current {
		return false
	}
	desc, ok := g.catalog.Get(last)
	if !ok || desc.LandingOnly() {
		return false
	}
	return g.Authorize(last, ctx).Kind == model.DecisionAllow
}
