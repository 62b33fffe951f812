package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/redis/go-redis/v9"

	"github.com/edufiliova/navigator/model"
)

// exerciseStore runs the behaviour every PreferenceStore shares.
func exerciseStore(t *testing.T, s PreferenceStore) {
	t.Helper()
	ctx := context.Background()

	last, err := s.LastVisited(ctx, "dev-1")
	if err != nil {
		t.Fatalf("LastVisited() error = %v", err)
	}
	if last != "" {
		t.Errorf("LastVisited() on empty store = %q, want empty", last)
	}
	onboarded, err := s.Onboarded(ctx, "dev-1")
	if err != nil {
		t.Fatalf("Onboarded() error = %v", err)
	}
	if onboarded {
		t.Error("Onboarded() on empty store = true")
	}

	if err := s.SetLastVisited(ctx, "dev-1", model.StateCourseBrowse); err != nil {
		t.Fatalf("SetLastVisited() error = %v", err)
	}
	if err := s.SetLastVisited(ctx, "dev-1", model.StateStudentDashboard); err != nil {
		t.Fatalf("SetLastVisited() error = %v", err)
	}
	if err := s.MarkOnboarded(ctx, "dev-1"); err != nil {
		t.Fatalf("MarkOnboarded() error = %v", err)
	}
	if err := s.MarkOnboarded(ctx, "dev-1"); err != nil {
		t.Fatalf("MarkOnboarded() twice error = %v", err)
	}

	prefs, err := Load(ctx, s, "dev-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if prefs.LastVisited != model.StateStudentDashboard {
		t.Errorf("LastVisited = %q, want student-dashboard", prefs.LastVisited)
	}
	if !prefs.Onboarded {
		t.Error("Onboarded = false after MarkOnboarded")
	}

	other, err := Load(ctx, s, "dev-2")
	if err != nil {
		t.Fatalf("Load(dev-2) error = %v", err)
	}
	if other != (Preferences{}) {
		t.Errorf("Load(dev-2) = %+v, want zero", other)
	}

	if err := s.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStore_lastPageExpires(t *testing.T) {
	s := NewMemoryStore(time.Millisecond)
	ctx := context.Background()
	_ = s.SetLastVisited(ctx, "dev-1", model.StateCourseBrowse)
	time.Sleep(5 * time.Millisecond)

	if got, _ := s.LastVisited(ctx, "dev-1"); got != "" {
		t.Errorf("LastVisited() after TTL = %q, want empty", got)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want expired entry removed", s.Len())
	}
}

func TestLoad_dropsUnknownState(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()
	_ = s.SetLastVisited(ctx, "dev-1", model.PageState("retired-page"))

	prefs, err := Load(ctx, s, "dev-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if prefs.LastVisited != "" {
		t.Errorf("LastVisited = %q, want unknown state dropped", prefs.LastVisited)
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	_, client := newTestRedis(t)
	exerciseStore(t, NewRedisStore(client, time.Hour))
}

func TestRedisStore_keysAndTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	_ = s.SetLastVisited(ctx, "dev-9", model.StateCourseBrowse)
	_ = s.MarkOnboarded(ctx, "dev-9")

	if got, err := mr.Get("nav:last_page:dev-9"); err != nil || got != "course-browse" {
		t.Errorf("last page key = %q, %v", got, err)
	}
	if ttl := mr.TTL("nav:last_page:dev-9"); ttl != time.Hour {
		t.Errorf("last page TTL = %v, want 1h", ttl)
	}
	if ttl := mr.TTL("nav:onboarded:dev-9"); ttl != 0 {
		t.Errorf("onboarded TTL = %v, want none", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if got, _ := s.LastVisited(ctx, "dev-9"); got != "" {
		t.Errorf("LastVisited() after TTL = %q, want empty", got)
	}
	if ok, _ := s.Onboarded(ctx, "dev-9"); !ok {
		t.Error("Onboarded() = false after last page expired")
	}
}

func TestRedisStore_unavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	s := NewRedisStore(client, time.Hour)
	mr.Close()

	ctx := context.Background()
	if _, err := s.LastVisited(ctx, "dev-1"); err == nil {
		t.Error("LastVisited() error = nil with server down")
	}
	if err := s.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() error = nil with server down")
	}
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := DialRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("DialRedis() error = %v", err)
	}
	_ = client.Close()

	if _, err := DialRedis(context.Background(), "not a url"); err == nil {
		t.Error("DialRedis(bad url) error = nil")
	}
}

func TestMigrations_embedded(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("iofs.New() error = %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if first != 1 {
		t.Errorf("first migration = %d, want 1", first)
	}
	up, _, err := src.ReadUp(first)
	if err != nil {
		t.Fatalf("ReadUp() error = %v", err)
	}
	_ = up.Close()
	down, _, err := src.ReadDown(first)
	if err != nil {
		t.Fatalf("ReadDown() error = %v", err)
	}
	_ = down.Close()
}

// TestPgStore runs against a real database when NAVIGATOR_TEST_DATABASE_URL
// is set.
func TestPgStore(t *testing.T) {
	dsn := os.Getenv("NAVIGATOR_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("NAVIGATOR_TEST_DATABASE_URL not set")
	}
	if err := RunMigrations(dsn); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	ctx := context.Background()
	pool, err := OpenPool(ctx, dsn, 2, time.Minute)
	if err != nil {
		t.Fatalf("OpenPool() error = %v", err)
	}
	defer pool.Close()
	if _, err := pool.Exec(ctx, `DELETE FROM device_preferences WHERE device_id IN ('dev-1', 'dev-2')`); err != nil {
		t.Fatalf("cleanup error = %v", err)
	}

	exerciseStore(t, NewPgStore(pool, time.Hour))
}
