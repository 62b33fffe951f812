package gate

import (
	"fmt"
	"strings"

	"github.com/edufiliova/navigator/model"
)

// MaxRedirectHops is the longest redirect chain a correct catalog produces.
const MaxRedirectHops = 2

// Trail is the outcome of following redirects from a requested state.
type Trail struct {
	Requested model.PageState
	Final     model.PageState
	Decision  model.AuthDecision
	Redirects []model.PageState
	Exhausted bool
}

// Follow authorizes state and follows redirects up to MaxRedirectHops. When
// the chain is longer, Exhausted is set and Decision is the pending redirect.
func (g *Gate) Follow(state model.PageState, ctx model.NavigationContext) Trail {
	t := Trail{Requested: state, Final: state}
	for {
		d := g.Authorize(t.Final, ctx)
		t.Decision = d
		if d.Kind != model.DecisionRedirect {
			return t
		}
		if len(t.Redirects) == MaxRedirectHops {
			t.Exhausted = true
			return t
		}
		t.Redirects = append(t.Redirects, d.Target)
		t.Final = d.Target
	}
}

// String renders the chain as "a -> b -> c".
func (t Trail) String() string {
	parts := make([]string, 0, len(t.Redirects)+1)
	parts = append(parts, string(t.Requested))
	for _, s := range t.Redirects {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, " -> ")
}

// LoopReport describes a chain that did not settle.
type LoopReport struct {
	Context model.NavigationContext
	Trail   Trail
}

func (r LoopReport) String() string {
	return fmt.Sprintf("%s (ctx %+v)", r.Trail, r.Context)
}

// lastVisitedSamples exercises the mobile resume path with allowed,
// role-restricted, landing-only and empty values.
var lastVisitedSamples = []model.PageState{
	"",
	model.StateStudentDashboard,
	model.StateCourseBrowse,
	model.StateAdminDashboard,
	model.StateAuth,
}

// Contexts enumerates every reachable navigation context used by
// VerifyNoRedirectLoops. A role is only present with a session.
func Contexts() []model.NavigationContext {
	type identity struct {
		auth bool
		role model.Role
	}
	ids := []identity{{false, model.RoleNone}, {true, model.RoleNone}}
	for _, r := range model.AllRoles {
		ids = append(ids, identity{true, r})
	}

	bools := []bool{false, true}
	var out []model.NavigationContext
	for _, id := range ids {
		for _, loading := range bools {
			for _, mobile := range bools {
				for _, authOnly := range bools {
					for _, onboarded := range bools {
						for _, last := range lastVisitedSamples {
							out = append(out, model.NavigationContext{
								IsAuthenticated:  id.auth,
								Role:             id.role,
								IsLoadingAuth:    loading,
								IsMobileAppShell: mobile,
								IsAuthOnlyDomain: authOnly,
								HasOnboarded:     onboarded,
								LastVisited:      last,
							})
						}
					}
				}
			}
		}
	}
	return out
}

// VerifyNoRedirectLoops follows redirects from every page state under every
// reachable context and returns the chains that need more than
// MaxRedirectHops hops. A correct catalog returns none.
func (g *Gate) VerifyNoRedirectLoops() []LoopReport {
	var reports []LoopReport
	for _, ctx := range Contexts() {
		for _, s := range model.AllStates {
			t := g.Follow(s, ctx)
			if t.Exhausted {
				reports = append(reports, LoopReport{Context: ctx, Trail: t})
			}
		}
	}
	return reports
}
