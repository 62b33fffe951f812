// Package catalog holds the static access metadata of every page state: its
// classification, role policy, website-only flag, section and forward
// target. The builtin table can be overridden from YAML files and is served
// from a registry with atomic snapshot swap.
package catalog

import (
	"slices"

	"github.com/edufiliova/navigator/model"
)

// Section groups related pages. Moves within a section animate instantly.
type Section string

const (
	SectionMarketing Section = "marketing"
	SectionLegal     Section = "legal"
	SectionAuth      Section = "auth"
	SectionLearning  Section = "learning"
	SectionDashboard Section = "dashboard"
	SectionAdmin     Section = "admin"
	SectionCreator   Section = "creator"
	SectionCommerce  Section = "commerce"
	SectionPortfolio Section = "portfolio"
	SectionMeetings  Section = "meetings"
	SectionSystem    Section = "system"
)

var knownSections = map[Section]bool{
	SectionMarketing: true, SectionLegal: true, SectionAuth: true, SectionLearning: true,
	SectionDashboard: true, SectionAdmin: true, SectionCreator: true, SectionCommerce: true,
	SectionPortfolio: true, SectionMeetings: true, SectionSystem: true,
}

// IsValid reports whether s is a known section.
func (s Section) IsValid() bool {
	return knownSections[s]
}

// PageDescriptor is the catalog entry for one page state.
type PageDescriptor struct {
	State         model.PageState `json:"state"`
	Path          string          `json:"path"`
	Aliases       []string        `json:"aliases,omitempty"`
	QueryRoutable bool            `json:"query_routable"`
	Dynamic       bool            `json:"dynamic"`
	Access        model.Access    `json:"access"`
	Policy        string          `json:"policy,omitempty"`
	Roles         []model.Role    `json:"roles,omitempty"`
	WebsiteOnly   bool            `json:"website_only"`
	Section       Section         `json:"section"`
	Forward       model.PageState `json:"forward,omitempty"`
}

// Allows reports whether role satisfies the descriptor's role policy.
// Descriptors that are not role-restricted allow every role.
func (d PageDescriptor) Allows(role model.Role) bool {
	if d.Access != model.AccessRoleRestricted {
		return true
	}
	return slices.Contains(d.Roles, role)
}

// LandingOnly reports whether the state is a landing page.
func (d PageDescriptor) LandingOnly() bool {
	return d.Access == model.AccessLandingOnly
}
