package storage

import (
	"context"
	"sync"
	"time"

	"github.com/edufiliova/navigator/model"
)

// MemoryStore is an in-memory PreferenceStore. Suitable for testing and
// single-instance deployments.
type MemoryStore struct {
	mu        sync.RWMutex
	last      map[string]lastEntry
	onboarded map[string]bool
	ttl       time.Duration
}

type lastEntry struct {
	state     model.PageState
	expiresAt time.Time
}

// NewMemoryStore creates an empty store. A zero ttl uses the default.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultLastPageTTL
	}
	return &MemoryStore{
		last:      make(map[string]lastEntry),
		onboarded: make(map[string]bool),
		ttl:       ttl,
	}
}

// LastVisited implements PreferenceStore.
func (s *MemoryStore) LastVisited(_ context.Context, deviceID string) (model.PageState, error) {
	s.mu.RLock()
	e, ok := s.last[deviceID]
	s.mu.RUnlock()

	if !ok {
		return "", nil
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.last, deviceID)
		s.mu.Unlock()
		return "", nil
	}
	return e.state, nil
}

// SetLastVisited implements PreferenceStore.
func (s *MemoryStore) SetLastVisited(_ context.Context, deviceID string, state model.PageState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[deviceID] = lastEntry{state: state, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

// Onboarded implements PreferenceStore.
func (s *MemoryStore) Onboarded(_ context.Context, deviceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onboarded[deviceID], nil
}

// MarkOnboarded implements PreferenceStore.
func (s *MemoryStore) MarkOnboarded(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onboarded[deviceID] = true
	return nil
}

// HealthCheck always succeeds.
func (s *MemoryStore) HealthCheck(context.Context) error {
	return nil
}

// Len returns the number of devices with a remembered page. For testing.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.last)
}
