package navigator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry holds one coordinator per device and evicts idle ones.
type Registry struct {
	engine  *Engine
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*Coordinator
	onSize   func(int)
	onEvict  func(int)
}

// NewRegistry creates a registry. Coordinators idle for longer than idleTTL
// are removed by Sweep.
func NewRegistry(engine *Engine, idleTTL time.Duration) *Registry {
	return &Registry{
		engine:   engine,
		idleTTL:  idleTTL,
		sessions: make(map[string]*Coordinator),
	}
}

// OnSizeChange registers fn to receive the number of coordinators after
// every insertion or removal.
func (r *Registry) OnSizeChange(fn func(int)) {
	r.mu.Lock()
	r.onSize = fn
	r.mu.Unlock()
}

// OnEvict registers fn to receive the number of coordinators removed by
// each sweep that removed any.
func (r *Registry) OnEvict(fn func(int)) {
	r.mu.Lock()
	r.onEvict = fn
	r.mu.Unlock()
}

// Acquire returns the coordinator for deviceID, creating it if needed.
func (r *Registry) Acquire(deviceID string) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.sessions[deviceID]; ok {
		return c
	}
	c := r.engine.NewCoordinator(deviceID)
	r.sessions[deviceID] = c
	r.notify()
	return c
}

// Get returns the coordinator for deviceID if one exists.
func (r *Registry) Get(deviceID string) (*Coordinator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[deviceID]
	return c, ok
}

// Remove drops the coordinator for deviceID.
func (r *Registry) Remove(deviceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[deviceID]; !ok {
		return false
	}
	delete(r.sessions, deviceID)
	r.notify()
	return true
}

// Len returns the number of coordinators.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes coordinators idle for longer than the TTL and returns how
// many were removed. Coordinators waiting on a session check are kept.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.engine.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, c := range r.sessions {
		if c.idleSince(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.notify()
		if r.onEvict != nil {
			r.onEvict(removed)
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.engine.logger.Info("evicted idle navigation sessions", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) notify() {
	if r.onSize != nil {
		r.onSize(len(r.sessions))
	}
}
