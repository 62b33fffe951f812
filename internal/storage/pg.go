package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edufiliova/navigator/model"
)

// PgStore is a PostgreSQL-backed PreferenceStore over the device_preferences
// table.
type PgStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPgStore creates a store over pool.
func NewPgStore(pool *pgxpool.Pool, ttl time.Duration) *PgStore {
	if ttl <= 0 {
		ttl = defaultLastPageTTL
	}
	return &PgStore{pool: pool, ttl: ttl}
}

// OpenPool connects to dsn with the given pool limits.
func OpenPool(ctx context.Context, dsn string, maxConns int32, maxLifetime time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if maxLifetime > 0 {
		cfg.MaxConnLifetime = maxLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

// LastVisited implements PreferenceStore. Entries older than the TTL are
// ignored.
func (s *PgStore) LastVisited(ctx context.Context, deviceID string) (model.PageState, error) {
	var state *string
	err := s.pool.QueryRow(ctx, `
		SELECT last_page
		FROM device_preferences
		WHERE device_id = $1 AND last_page_at > $2`,
		deviceID, time.Now().UTC().Add(-s.ttl),
	).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last page: %w", err)
	}
	if state == nil {
		return "", nil
	}
	return model.PageState(*state), nil
}

// SetLastVisited implements PreferenceStore.
func (s *PgStore) SetLastVisited(ctx context.Context, deviceID string, state model.PageState) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO device_preferences (device_id, last_page, last_page_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (device_id) DO UPDATE SET
			last_page = EXCLUDED.last_page,
			last_page_at = EXCLUDED.last_page_at,
			updated_at = EXCLUDED.updated_at`,
		deviceID, string(state), now,
	)
	if err != nil {
		return fmt.Errorf("upsert last page: %w", err)
	}
	return nil
}

// Onboarded implements PreferenceStore.
func (s *PgStore) Onboarded(ctx context.Context, deviceID string) (bool, error) {
	var onboarded bool
	err := s.pool.QueryRow(ctx, `
		SELECT onboarded FROM device_preferences WHERE device_id = $1`,
		deviceID,
	).Scan(&onboarded)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query onboarded: %w", err)
	}
	return onboarded, nil
}

// MarkOnboarded implements PreferenceStore.
func (s *PgStore) MarkOnboarded(ctx context.Context, deviceID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO device_preferences (device_id, onboarded, onboarded_at, updated_at)
		VALUES ($1, TRUE, $2, $2)
		ON CONFLICT (device_id) DO UPDATE SET
			onboarded = TRUE,
			onboarded_at = COALESCE(device_preferences.onboarded_at, EXCLUDED.onboarded_at),
			updated_at = EXCLUDED.updated_at`,
		deviceID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert onboarded: %w", err)
	}
	return nil
}

// HealthCheck pings the database.
func (s *PgStore) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
