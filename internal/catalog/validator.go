package catalog

import (
	"fmt"

	"github.com/edufiliova/navigator/internal/route"
	"github.com/edufiliova/navigator/model"
)

// VError describes a single validation error in the catalog.
type VError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e VError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// landingStates are the only states that may be classified landing-only.
var landingStates = map[model.PageState]bool{
	model.StateHome: true,
	model.StateAuth: true,
}

// Validator checks a catalog structurally and against the route tables.
type Validator struct {
	mapper *route.Mapper
}

// NewValidator creates a new Validator. The mapper may be nil to skip
// routing checks.
func NewValidator(mapper *route.Mapper) *Validator {
	return &Validator{mapper: mapper}
}

// Validate checks every descriptor and that the catalog covers the whole
// PageState enumeration exactly once.
func (v *Validator) Validate(descs []PageDescriptor) []VError {
	var errs []VError

	seen := make(map[model.PageState]int, len(descs))
	paths := make(map[string]model.PageState)

	for i, d := range descs {
		prefix := fmt.Sprintf("pages[%d]", i)
		errs = append(errs, v.validateDescriptor(prefix, d)...)

		if j, dup := seen[d.State]; dup {
			errs = append(errs, VError{
				Path:    prefix + ".state",
				Code:    "DUPLICATE_STATE",
				Message: fmt.Sprintf("state %q already described at pages[%d]", d.State, j),
			})
		}
		seen[d.State] = i

		if d.Path != "" && !d.QueryRoutable {
			if other, dup := paths[d.Path]; dup && other != d.State {
				errs = append(errs, VError{
					Path:    prefix + ".path",
					Code:    "DUPLICATE_PATH",
					Message: fmt.Sprintf("path %q already used by %q", d.Path, other),
				})
			}
			paths[d.Path] = d.State
		}
	}

	for _, s := range model.AllStates {
		if _, ok := seen[s]; !ok {
			errs = append(errs, VError{
				Path:    "pages",
				Code:    "MISSING_STATE",
				Message: fmt.Sprintf("state %q has no catalog entry", s),
			})
		}
	}

	for i, d := range descs {
		if d.Forward == "" {
			continue
		}
		target, ok := seen[d.Forward]
		if !ok {
			continue
		}
		if descs[target].Forward != "" {
			errs = append(errs, VError{
				Path:    fmt.Sprintf("pages[%d].forward", i),
				Code:    "FORWARD_CHAIN",
				Message: fmt.Sprintf("forward target %q forwards again", d.Forward),
			})
		}
	}

	return errs
}

func (v *Validator) validateDescriptor(prefix string, d PageDescriptor) []VError {
	var errs []VError

	if !d.State.IsValid() {
		errs = append(errs, VError{Path: prefix + ".state", Code: "UNKNOWN_STATE", Message: fmt.Sprintf("unknown state %q", d.State)})
	}
	if !d.Access.IsValid() {
		errs = append(errs, VError{Path: prefix + ".access", Code: "INVALID_ENUM", Message: fmt.Sprintf("invalid access %q", d.Access)})
	}
	if !d.Section.IsValid() {
		errs = append(errs, VError{Path: prefix + ".section", Code: "INVALID_ENUM", Message: fmt.Sprintf("invalid section %q", d.Section)})
	}

	switch d.Access {
	case model.AccessRoleRestricted:
		if _, ok := Policies[d.Policy]; !ok {
			errs = append(errs, VError{Path: prefix + ".policy", Code: "UNKNOWN_POLICY", Message: fmt.Sprintf("unknown policy %q", d.Policy)})
		}
		if len(d.Roles) == 0 {
			errs = append(errs, VError{Path: prefix + ".roles", Code: "REQUIRED", Message: "role-restricted state needs at least one role"})
		}
	case model.AccessLandingOnly:
		if !landingStates[d.State] {
			errs = append(errs, VError{Path: prefix + ".access", Code: "LANDING_ONLY", Message: fmt.Sprintf("state %q may not be landing-only", d.State)})
		}
	}

	if d.Forward != "" {
		switch {
		case !d.Forward.IsValid():
			errs = append(errs, VError{Path: prefix + ".forward", Code: "UNKNOWN_STATE", Message: fmt.Sprintf("forward to unknown state %q", d.Forward)})
		case d.Forward == d.State:
			errs = append(errs, VError{Path: prefix + ".forward", Code: "FORWARD_CHAIN", Message: "state forwards to itself"})
		}
	}

	if v.mapper != nil && d.State.IsValid() {
		if d.Dynamic != v.mapper.IsDynamic(d.State) {
			errs = append(errs, VError{Path: prefix + ".dynamic", Code: "MATCHER_MISMATCH", Message: fmt.Sprintf("state %q dynamic flag disagrees with the route matchers", d.State)})
		}
		if d.Path != v.mapper.CanonicalPath(d.State) {
			errs = append(errs, VError{Path: prefix + ".path", Code: "PATH_MISMATCH", Message: fmt.Sprintf("path %q disagrees with the route tables", d.Path)})
		}
	}

	return errs
}
