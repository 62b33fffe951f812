package menu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edufiliova/navigator/internal/route"
	"github.com/edufiliova/navigator/model"
)

func newProvider(t *testing.T) *Provider {
	t.Helper()
	return NewProvider(Builtin(), route.NewMapper())
}

func sectionIDs(tree model.NavigationTree) []string {
	ids := make([]string, len(tree.Items))
	for i, n := range tree.Items {
		ids[i] = n.ID
	}
	return ids
}

func section(t *testing.T, tree model.NavigationTree, id string) model.NavigationNode {
	t.Helper()
	for _, n := range tree.Items {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("section %q not in menu %v", id, sectionIDs(tree))
	return model.NavigationNode{}
}

func childStates(n model.NavigationNode) []model.PageState {
	out := make([]model.PageState, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.State
	}
	return out
}

func TestNavRoleFor(t *testing.T) {
	tests := []struct {
		role          model.Role
		authenticated bool
		want          NavRole
	}{
		{model.RoleTeacher, false, NavGuest},
		{model.RoleNone, false, NavGuest},
		{model.RoleAdmin, true, NavAdmin},
		{model.RoleAccountant, true, NavAdmin},
		{model.RoleCustomerService, true, NavAdmin},
		{model.RoleModerator, true, NavAdmin},
		{model.RoleTeacher, true, NavTeacher},
		{model.RoleFreelancer, true, NavFreelancer},
		{model.RoleStudent, true, NavStudent},
		{model.RoleGeneral, true, NavGeneral},
		{model.RoleNone, true, NavGeneral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NavRoleFor(tt.role, tt.authenticated), "role=%q auth=%v", tt.role, tt.authenticated)
	}
}

func TestMenu_guest(t *testing.T) {
	tree := newProvider(t).Menu(model.RoleNone, false)

	assert.Equal(t, "guest", tree.Role)
	assert.Equal(t, []string{"learn", "teachers", "freelancers", "shop", "pricing", "pages"}, sectionIDs(tree))

	learn := section(t, tree, "learn")
	assert.Equal(t, []model.PageState{
		model.StateCourseBrowse, model.StateStudentSignup, model.StateMyCertificates, model.StateClaimCertificate,
	}, childStates(learn))
	assert.Equal(t, "/courses", learn.Children[0].Route)
	assert.Equal(t, "course-browse", learn.Children[0].ID)
	assert.Equal(t, "Explore our course catalog", learn.Children[0].Description)

	assert.Equal(t, []model.PageState{
		model.StateTeacherApplication, model.StateTeacherPricing, model.StateTeacherApplicationStatus,
	}, childStates(section(t, tree, "teachers")))
}

func TestMenu_student(t *testing.T) {
	tree := newProvider(t).Menu(model.RoleStudent, true)

	assert.Equal(t, "student", tree.Role)
	assert.Equal(t, []string{"learn", "students", "teachers", "freelancers", "shop", "pricing", "pages"}, sectionIDs(tree))

	learn := section(t, tree, "learn")
	assert.NotContains(t, childStates(learn), model.StateStudentSignup, "signup is hidden once signed in")
	assert.Contains(t, childStates(learn), model.StateStudentDashboard)
	assert.Equal(t, "/?page=student-dashboard", learn.Children[1].Route)

	shop := section(t, tree, "shop")
	assert.Equal(t, []model.PageState{model.StateProductShop, model.StateCart, model.StateCustomerDashboard}, childStates(shop))

	teachers := section(t, tree, "teachers")
	assert.NotContains(t, childStates(teachers), model.StateTeacherDashboard)
}

func TestMenu_teacher(t *testing.T) {
	tree := newProvider(t).Menu(model.RoleTeacher, true)

	assert.NotContains(t, sectionIDs(tree), "students")
	assert.NotContains(t, sectionIDs(tree), "admin")

	teachers := section(t, tree, "teachers")
	states := childStates(teachers)
	assert.Contains(t, states, model.StateTeacherDashboard)
	assert.Contains(t, states, model.StateCreatorEarningsDashboard)
	assert.NotContains(t, states, model.StateAdminSubjectApproval)
}

func TestMenu_staffSeeEverything(t *testing.T) {
	p := newProvider(t)
	for _, role := range []model.Role{model.RoleAdmin, model.RoleModerator, model.RoleAccountant} {
		tree := p.Menu(role, true)
		assert.Equal(t, "admin", tree.Role)
		assert.Equal(t, []string{"learn", "students", "teachers", "freelancers", "shop", "pricing", "pages", "admin"}, sectionIDs(tree), "role %s", role)
		assert.Len(t, section(t, tree, "teachers").Children, 9)
		assert.Len(t, section(t, tree, "admin").Children, 5)
		assert.Len(t, section(t, tree, "learn").Children, 4)
	}
}

func TestMenu_roleIgnoredWhenSignedOut(t *testing.T) {
	p := newProvider(t)
	assert.Equal(t, p.Menu(model.RoleNone, false), p.Menu(model.RoleAdmin, false))
}

func TestMenu_sortsByOrder(t *testing.T) {
	sections := []Section{
		{ID: "b", Label: "B", Order: 2, Roles: []NavRole{NavGuest}, Items: []Item{
			{State: model.StateHelp, Label: "Help", Order: 2, Roles: []NavRole{NavGuest}},
			{State: model.StateAbout, Label: "About", Order: 1, Roles: []NavRole{NavGuest}},
		}},
		{ID: "a", Label: "A", Order: 1, Roles: []NavRole{NavGuest}, Items: []Item{
			{State: model.StateContact, Label: "Contact", Roles: []NavRole{NavGuest}},
		}},
		{ID: "empty", Label: "Empty", Order: 0, Roles: []NavRole{NavGuest}, Items: []Item{
			{State: model.StateAdminDashboard, Label: "Admin", Roles: []NavRole{NavAdmin}, RequiresAuth: true},
		}},
	}

	tree := NewProvider(sections, route.NewMapper()).Menu(model.RoleNone, false)

	assert.Equal(t, []string{"a", "b"}, sectionIDs(tree), "sections without visible entries are dropped")
	assert.Equal(t, []model.PageState{model.StateAbout, model.StateHelp}, childStates(tree.Items[1]))
	assert.Equal(t, "/about", tree.Items[1].Children[0].Route)
}

func TestParse_errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{"malformed", "sections: [", []string{"parsing"}},
		{
			name: "invalid entries",
			doc: `
sections:
  - id: learn
    label: Learn
    roles: [guest, superuser]
    items:
      - state: nowhere
        roles: []
      - state: about
        label: About
        roles: [guest]
        requires_auth: true
        hide_when_auth: true
  - id: learn
    label: Again
    roles: [guest]
`,
			want: []string{
				`unknown role "superuser"`,
				`"nowhere" is not a known page state`,
				"items[0].label is required",
				"items[0].roles must not be empty",
				"exclusive",
				`"learn" is duplicated`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	builtin, err := LoadFile("")
	require.NoError(t, err)
	assert.Len(t, builtin, 8)

	path := filepath.Join(t.TempDir(), "menu.yaml")
	doc := `
sections:
  - id: pages
    label: Pages
    roles: [guest]
    items:
      - {state: about, label: About Us, roles: [guest]}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	sections, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, model.StateAbout, sections[0].Items[0].State)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading")
}
