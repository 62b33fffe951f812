// Package route translates between URLs and page states. It is pure: it has
// no knowledge of authentication and never fails, degrading unknown input to
// the not-found state.
package route

import (
	"net/url"
	"slices"
	"strings"

	"github.com/edufiliova/navigator/model"
)

// Resolution is the result of resolving a URL. EntityID is set when a dynamic
// matcher fired; Aux carries the entity id under the matcher's key plus any
// whitelisted query parameters.
type Resolution struct {
	State    model.PageState   `json:"state"`
	EntityID string            `json:"entity_id,omitempty"`
	Aux      map[string]string `json:"aux,omitempty"`
}

// DynamicMatcher recognises paths with an embedded identifier.
type DynamicMatcher struct {
	State  model.PageState
	Prefix string
	AuxKey string
}

// Test reports whether path starts with the matcher prefix and carries a
// non-empty identifier.
func (m DynamicMatcher) Test(path string) bool {
	return m.Extract(path) != ""
}

// Extract returns the unescaped identifier following the prefix, or "" when
// the path does not match.
func (m DynamicMatcher) Extract(path string) string {
	if !strings.HasPrefix(path, m.Prefix) {
		return ""
	}
	raw := strings.TrimRight(path[len(m.Prefix):], "/")
	if raw == "" {
		return ""
	}
	id, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return id
}

// Build returns the path for the given identifier.
func (m DynamicMatcher) Build(id string) string {
	return m.Prefix + url.PathEscape(id)
}

// Mapper holds the forward, reverse and query tables. It is immutable after
// construction and safe for concurrent use.
type Mapper struct {
	forward  map[string]model.PageState
	reverse  map[model.PageState]string
	matchers []DynamicMatcher
	byState  map[model.PageState]DynamicMatcher
	auxKeys  map[string]bool
}

// NewMapper creates a Mapper over the builtin tables.
func NewMapper() *Mapper {
	m := &Mapper{
		forward:  make(map[string]model.PageState, len(forwardEntries)),
		reverse:  make(map[model.PageState]string, len(reverseEntries)),
		matchers: slices.Clone(builtinMatchers),
		byState:  make(map[model.PageState]DynamicMatcher, len(builtinMatchers)),
		auxKeys:  make(map[string]bool, len(QueryAuxKeys)),
	}
	for _, e := range forwardEntries {
		m.forward[e.Path] = e.State
	}
	for _, e := range reverseEntries {
		m.reverse[e.State] = e.Path
	}
	for _, dm := range m.matchers {
		m.byState[dm.State] = dm
	}
	for _, k := range QueryAuxKeys {
		m.auxKeys[k] = true
	}
	return m
}

// Resolve parses a raw URL (path plus optional query) and resolves it.
func (m *Mapper) Resolve(rawURL string) Resolution {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Resolution{State: model.StateNotFound}
	}
	return m.ResolveStateFromURL(u.EscapedPath(), u.Query())
}

// ResolveStateFromURL maps an escaped path and its query to a page state.
// Resolution is total and deterministic.
func (m *Mapper) ResolveStateFromURL(path string, query url.Values) Resolution {
	res := Resolution{Aux: m.whitelisted(query)}

	for _, dm := range m.matchers {
		if id := dm.Extract(path); id != "" {
			res.State = dm.State
			res.EntityID = id
			if res.Aux == nil {
				res.Aux = make(map[string]string, 1)
			}
			res.Aux[dm.AuxKey] = id
			return res
		}
	}

	if s, ok := m.forward[normalizePath(path)]; ok {
		res.State = s
		return res
	}

	if page := query.Get("page"); page != "" {
		if s, ok := queryAliases[page]; ok {
			res.State = s
			return res
		}
		if s, ok := model.ParsePageState(page); ok {
			res.State = s
			return res
		}
	}

	if isHomePath(path) {
		res.State = model.StateHome
		return res
	}
	res.State = model.StateNotFound
	return res
}

// ResolvePathFromState returns the canonical URL for a state. Dynamic states
// with an identifier in aux get a clean path; otherwise the reverse table is
// used, then the query form. Unknown states resolve to /404.
func (m *Mapper) ResolvePathFromState(state model.PageState, aux map[string]string) string {
	if !state.IsValid() {
		return m.reverse[model.StateNotFound]
	}
	if dm, ok := m.byState[state]; ok {
		if id := dynamicID(dm, aux); id != "" {
			return dm.Build(id)
		}
	}
	if p, ok := m.reverse[state]; ok {
		return p
	}
	return m.queryPath(state, aux)
}

// CanonicalPath returns the path a state is served under, ignoring query and
// identifiers: the clean path, the dynamic prefix, or "/" for query-routed
// states.
func (m *Mapper) CanonicalPath(state model.PageState) string {
	if p, ok := m.reverse[state]; ok {
		return p
	}
	if dm, ok := m.byState[state]; ok {
		return dm.Prefix
	}
	return "/"
}

// EntityID returns the identifier aux carries for a dynamic state, or "".
func (m *Mapper) EntityID(state model.PageState, aux map[string]string) string {
	dm, ok := m.byState[state]
	if !ok {
		return ""
	}
	return dynamicID(dm, aux)
}

// IsDynamic reports whether the state has a dynamic matcher.
func (m *Mapper) IsDynamic(state model.PageState) bool {
	_, ok := m.byState[state]
	return ok
}

// HasCleanPath reports whether the state has an entry in the reverse table.
func (m *Mapper) HasCleanPath(state model.PageState) bool {
	_, ok := m.reverse[state]
	return ok
}

// Aliases returns the forward-only paths that resolve to state, sorted.
func (m *Mapper) Aliases(state model.PageState) []string {
	canonical := m.reverse[state]
	var out []string
	for p, s := range m.forward {
		if s == state && p != canonical {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

// Matchers returns the dynamic matchers in priority order.
func (m *Mapper) Matchers() []DynamicMatcher {
	return slices.Clone(m.matchers)
}

func (m *Mapper) queryPath(state model.PageState, aux map[string]string) string {
	var b strings.Builder
	b.WriteString("/?page=")
	b.WriteString(url.QueryEscape(string(state)))
	for _, k := range QueryAuxKeys {
		v, ok := aux[k]
		if !ok || v == "" {
			continue
		}
		b.WriteByte('&')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	return b.String()
}

func (m *Mapper) whitelisted(query url.Values) map[string]string {
	var aux map[string]string
	for _, k := range QueryAuxKeys {
		v := query.Get(k)
		if v == "" {
			continue
		}
		if aux == nil {
			aux = make(map[string]string)
		}
		aux[k] = v
	}
	return aux
}

func dynamicID(dm DynamicMatcher, aux map[string]string) string {
	if id := aux[dm.AuxKey]; id != "" {
		return id
	}
	return aux["id"]
}

func normalizePath(path string) string {
	if len(path) > 1 {
		return strings.TrimRight(path, "/")
	}
	return path
}

func isHomePath(path string) bool {
	p := normalizePath(path)
	return p == "" || p == "/" || p == "/app" || strings.HasPrefix(path, "/app/")
}
