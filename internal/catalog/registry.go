package catalog

import (
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/edufiliova/navigator/model"
)

// snapshot is an immutable view of the catalog indexed by state.
type snapshot struct {
	byState  map[model.PageState]PageDescriptor
	ordered  []PageDescriptor
	checksum string
}

// Registry is a read-optimized, thread-safe store of page descriptors.
// It uses atomic pointer swap for lock-free concurrent reads.
type Registry struct {
	snap atomic.Pointer[snapshot]
}

// NewRegistry creates a Registry from the given descriptors.
func NewRegistry(descs []PageDescriptor) *Registry {
	r := &Registry{}
	r.Replace(descs)
	return r
}

// Replace atomically swaps the registry contents with a new snapshot built
// from the given descriptors.
func (r *Registry) Replace(descs []PageDescriptor) {
	s := &snapshot{
		byState: make(map[model.PageState]PageDescriptor, len(descs)),
		ordered: make([]PageDescriptor, 0, len(descs)),
	}

	parts := make([]string, 0, len(descs))
	for _, d := range descs {
		s.byState[d.State] = d
		s.ordered = append(s.ordered, d)
		parts = append(parts, fingerprint(d))
	}

	slices.Sort(parts)
	combined := strings.Join(parts, "\n")
	s.checksum = fmt.Sprintf("%x", sha256.Sum256([]byte(combined)))

	r.snap.Store(s)
}

func (r *Registry) current() *snapshot {
	return r.snap.Load()
}

// Get returns the descriptor for state.
func (r *Registry) Get(state model.PageState) (PageDescriptor, bool) {
	d, ok := r.current().byState[state]
	return d, ok
}

// All returns every descriptor in load order.
func (r *Registry) All() []PageDescriptor {
	return slices.Clone(r.current().ordered)
}

// Len returns the number of descriptors loaded.
func (r *Registry) Len() int {
	return len(r.current().ordered)
}

// Checksum returns the checksum of the loaded catalog.
func (r *Registry) Checksum() string {
	return r.current().checksum
}

func fingerprint(d PageDescriptor) string {
	roles := make([]string, len(d.Roles))
	for i, role := range d.Roles {
		roles[i] = string(role)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%t|%s|%s|%s",
		d.State, d.Path, d.Access, d.Policy, d.WebsiteOnly, d.Section, d.Forward, strings.Join(roles, ","))
}
