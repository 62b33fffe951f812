package model

// NavigationContext holds the session facts the gate consults. It is a
// value type; coordinators replace it wholesale on every change.
type NavigationContext struct {
	IsAuthenticated  bool      `json:"is_authenticated"`
	Role             Role      `json:"role,omitempty"`
	IsLoadingAuth    bool      `json:"is_loading_auth"`
	IsMobileAppShell bool      `json:"is_mobile_app_shell"`
	IsAuthOnlyDomain bool      `json:"is_auth_only_domain"`
	HasOnboarded     bool      `json:"has_onboarded"`
	LastVisited      PageState `json:"last_visited,omitempty"`
}

// SignedIn reports whether the context carries a session with a known role.
func (c NavigationContext) SignedIn() bool {
	return c.IsAuthenticated && c.Role != RoleNone
}

// TransitionStyle is the cosmetic animation hint emitted with every commit.
type TransitionStyle string

const (
	TransitionInstant    TransitionStyle = "instant"
	TransitionFade       TransitionStyle = "fade"
	TransitionSlideLeft  TransitionStyle = "slide-left"
	TransitionSlideRight TransitionStyle = "slide-right"
	TransitionScale      TransitionStyle = "scale"
)

// IsValid reports whether s is a known style. The empty style is not valid.
func (s TransitionStyle) IsValid() bool {
	switch s {
	case TransitionInstant, TransitionFade, TransitionSlideLeft, TransitionSlideRight, TransitionScale:
		return true
	}
	return false
}

// NavigationIntent is a request to move to Target. Style may be empty, in
// which case the coordinator picks one.
type NavigationIntent struct {
	Target PageState         `json:"target"`
	Style  TransitionStyle   `json:"style,omitempty"`
	Aux    map[string]string `json:"aux,omitempty"`
}

// DecisionKind enumerates the outcomes of the access gate.
type DecisionKind string

const (
	DecisionAllow      DecisionKind = "allow"
	DecisionRedirect   DecisionKind = "redirect"
	DecisionPending    DecisionKind = "pending"
	DecisionOnboarding DecisionKind = "onboarding"
)

// AuthDecision is the result of gating a PageState against a context.
// Target is set only for redirects.
type AuthDecision struct {
	Kind   DecisionKind `json:"kind"`
	Target PageState    `json:"target,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// Allow returns an allow decision.
func Allow() AuthDecision {
	return AuthDecision{Kind: DecisionAllow}
}

// Redirect returns a redirect decision to target.
func Redirect(target PageState, reason string) AuthDecision {
	return AuthDecision{Kind: DecisionRedirect, Target: target, Reason: reason}
}

// Pending returns a pending decision.
func Pending(reason string) AuthDecision {
	return AuthDecision{Kind: DecisionPending, Reason: reason}
}

// Onboarding returns an onboarding decision.
func Onboarding() AuthDecision {
	return AuthDecision{Kind: DecisionOnboarding, Reason: "onboarding"}
}

// Access is the static classification of a PageState.
type Access string

const (
	AccessPublic         Access = "public"
	AccessAuthRequired   Access = "auth-required"
	AccessRoleRestricted Access = "role-restricted"
	AccessLandingOnly    Access = "landing-only"
)

// IsValid reports whether a is a known classification.
func (a Access) IsValid() bool {
	switch a {
	case AccessPublic, AccessAuthRequired, AccessRoleRestricted, AccessLandingOnly:
		return true
	}
	return false
}

// Protected reports whether the classification needs a session.
func (a Access) Protected() bool {
	return a == AccessAuthRequired || a == AccessRoleRestricted
}

// Environment describes the runtime a client reports on start.
type Environment struct {
	Host             string `json:"host,omitempty"`
	IsMobileAppShell bool   `json:"is_mobile_app_shell"`
	IsAuthOnlyDomain bool   `json:"is_auth_only_domain"`
	SessionToken     string `json:"-"`
}
