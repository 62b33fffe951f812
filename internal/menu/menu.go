// Package menu builds the role-filtered navigation menu.
package menu

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/edufiliova/navigator/internal/route"
	"github.com/edufiliova/navigator/model"
)

//go:embed menu.yaml
var builtinMenu []byte

// NavRole is the coarse role used for menu visibility.
type NavRole string

// Menu roles. Staff accounts share the admin menu.
const (
	NavGuest      NavRole = "guest"
	NavStudent    NavRole = "student"
	NavTeacher    NavRole = "teacher"
	NavFreelancer NavRole = "freelancer"
	NavGeneral    NavRole = "general"
	NavAdmin      NavRole = "admin"
)

var navRoles = []NavRole{NavGuest, NavStudent, NavTeacher, NavFreelancer, NavGeneral, NavAdmin}

// NavRoleFor collapses an account role to its menu role. Signed-out callers
// are guests; a signed-in caller without a recognised role sees the general
// menu.
func NavRoleFor(role model.Role, authenticated bool) NavRole {
	switch {
	case !authenticated:
		return NavGuest
	case role.IsStaff():
		return NavAdmin
	case role == model.RoleTeacher:
		return NavTeacher
	case role == model.RoleFreelancer:
		return NavFreelancer
	case role == model.RoleStudent:
		return NavStudent
	default:
		return NavGeneral
	}
}

// Section is one top-level group of menu entries.
type Section struct {
	ID    string    `yaml:"id"`
	Label string    `yaml:"label"`
	Icon  string    `yaml:"icon"`
	Order int       `yaml:"order"`
	Roles []NavRole `yaml:"roles"`
	Items []Item    `yaml:"items"`
}

// Item is a single menu entry opening a page state.
type Item struct {
	State        model.PageState `yaml:"state"`
	Label        string          `yaml:"label"`
	Description  string          `yaml:"description"`
	Icon         string          `yaml:"icon"`
	Order        int             `yaml:"order"`
	Roles        []NavRole       `yaml:"roles"`
	RequiresAuth bool            `yaml:"requires_auth"`
	HideWhenAuth bool            `yaml:"hide_when_auth"`
}

type document struct {
	Sections []Section `yaml:"sections"`
}

// Parse decodes and validates a menu document.
func Parse(data []byte) ([]Section, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("menu: parsing: %w", err)
	}
	if err := validate(doc.Sections); err != nil {
		return nil, err
	}
	return doc.Sections, nil
}

// Builtin returns the embedded menu.
func Builtin() []Section {
	sections, err := Parse(builtinMenu)
	if err != nil {
		panic(err)
	}
	return sections
}

// LoadFile reads a menu document from disk. An empty path yields the
// embedded menu.
func LoadFile(path string) ([]Section, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("menu: reading %s: %w", path, err)
	}
	return Parse(data)
}

func validate(sections []Section) error {
	var errs []error
	seen := make(map[string]bool, len(sections))
	for i, s := range sections {
		prefix := fmt.Sprintf("sections[%d]", i)
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if seen[s.ID] {
			errs = append(errs, fmt.Errorf("%s.id %q is duplicated", prefix, s.ID))
		}
		seen[s.ID] = true
		errs = append(errs, validateRoles(prefix, s.Roles)...)

		for j, it := range s.Items {
			itemPrefix := fmt.Sprintf("%s.items[%d]", prefix, j)
			if !it.State.IsValid() {
				errs = append(errs, fmt.Errorf("%s.state %q is not a known page state", itemPrefix, it.State))
			}
			if it.Label == "" {
				errs = append(errs, fmt.Errorf("%s.label is required", itemPrefix))
			}
			if it.RequiresAuth && it.HideWhenAuth {
				errs = append(errs, fmt.Errorf("%s: requires_auth and hide_when_auth are exclusive", itemPrefix))
			}
			errs = append(errs, validateRoles(itemPrefix, it.Roles)...)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("menu: invalid definition: %w", err)
	}
	return nil
}

func validateRoles(prefix string, roles []NavRole) []error {
	if len(roles) == 0 {
		return []error{fmt.Errorf("%s.roles must not be empty", prefix)}
	}
	var errs []error
	for _, r := range roles {
		if !slices.Contains(navRoles, r) {
			errs = append(errs, fmt.Errorf("%s.roles: unknown role %q", prefix, r))
		}
	}
	return errs
}

// Provider builds NavigationTrees from a fixed set of sections.
type Provider struct {
	sections []Section
	mapper   *route.Mapper
}

// NewProvider creates a Provider. Entry routes are resolved through mapper.
func NewProvider(sections []Section, mapper *route.Mapper) *Provider {
	sorted := slices.Clone(sections)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return &Provider{sections: sorted, mapper: mapper}
}

// Menu returns the sections and entries visible to the caller, sorted by
// order. Sections left without visible entries are omitted.
func (p *Provider) Menu(role model.Role, authenticated bool) model.NavigationTree {
	nav := NavRoleFor(role, authenticated)
	tree := model.NavigationTree{Role: string(nav), Items: []model.NavigationNode{}}

	for _, s := range p.sections {
		if !visible(s.Roles, nav) {
			continue
		}

		var items []Item
		for _, it := range s.Items {
			if canSee(it, nav, authenticated) {
				items = append(items, it)
			}
		}
		if len(items) == 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })

		node := model.NavigationNode{
			ID:       s.ID,
			Label:    s.Label,
			Icon:     s.Icon,
			Children: make([]model.NavigationNode, len(items)),
		}
		for i, it := range items {
			node.Children[i] = model.NavigationNode{
				ID:          string(it.State),
				Label:       it.Label,
				Icon:        it.Icon,
				Description: it.Description,
				State:       it.State,
				Route:       p.mapper.ResolvePathFromState(it.State, nil),
			}
		}
		tree.Items = append(tree.Items, node)
	}
	return tree
}

func canSee(it Item, nav NavRole, authenticated bool) bool {
	if it.HideWhenAuth && authenticated {
		return false
	}
	if it.RequiresAuth && !authenticated {
		return false
	}
	return visible(it.Roles, nav)
}

// visible applies the role list: guest entries are public and admins see
// everything.
func visible(roles []NavRole, nav NavRole) bool {
	if slices.Contains(roles, NavGuest) || nav == NavAdmin {
		return true
	}
	return slices.Contains(roles, nav)
}
