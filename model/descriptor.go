package model

// NavigationTree is the role-filtered menu returned to the frontend.
type NavigationTree struct {
	Role  string           `json:"role"`
	Items []NavigationNode `json:"items"`
}

// NavigationNode is a menu section or one of its entries. Sections carry
// children; entries carry the state they open and its canonical URL.
type NavigationNode struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Icon        string           `json:"icon,omitempty"`
	Description string           `json:"description,omitempty"`
	State       PageState        `json:"state,omitempty"`
	Route       string           `json:"route,omitempty"`
	Children    []NavigationNode `json:"children,omitempty"`
}
