// Package storage persists the per-device navigation preferences: the last
// page visited inside the mobile shell and the onboarding flag.
package storage

import (
	"context"
	"time"

	"github.com/edufiliova/navigator/model"
)

// PreferenceStore persists device preferences. A missing record is not an
// error: LastVisited returns "" and Onboarded returns false.
type PreferenceStore interface {
	// LastVisited returns the last page committed on the device, if any.
	LastVisited(ctx context.Context, deviceID string) (model.PageState, error)

	// SetLastVisited records state as the device's last page.
	SetLastVisited(ctx context.Context, deviceID string, state model.PageState) error

	// Onboarded reports whether the device has completed onboarding.
	Onboarded(ctx context.Context, deviceID string) (bool, error)

	// MarkOnboarded sets the onboarding flag. The flag is never cleared.
	MarkOnboarded(ctx context.Context, deviceID string) error

	// HealthCheck reports whether the backing store is reachable.
	HealthCheck(ctx context.Context) error
}

// Preferences is a device's stored preferences.
type Preferences struct {
	LastVisited model.PageState
	Onboarded   bool
}

// Load reads both preferences for deviceID.
func Load(ctx context.Context, s PreferenceStore, deviceID string) (Preferences, error) {
	last, err := s.LastVisited(ctx, deviceID)
	if err != nil {
		return Preferences{}, err
	}
	onboarded, err := s.Onboarded(ctx, deviceID)
	if err != nil {
		return Preferences{}, err
	}
	if last != "" && !last.IsValid() {
		last = ""
	}
	return Preferences{LastVisited: last, Onboarded: onboarded}, nil
}

// defaultLastPageTTL bounds how long a last-visited page is remembered when
// no TTL is configured.
const defaultLastPageTTL = 30 * 24 * time.Hour
