package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// KVRepository handles database operations for profile key-value pairs
type KVRepository struct {
	db *sqlx.DB
}

// NewKVRepository creates a new repository instance
func NewKVRepository(db *sqlx.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key for a profile
func (r *KVRepository) Get(ctx context.Context, profileID int64, key string) (string, bool, error) {
	var value string
	query := r.db.Rebind("SELECT value FROM kv_store WHERE profile_id = ? AND key = ?")
	err := r.db.GetContext(ctx, &value, query, profileID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

// Set creates or replaces the value stored under key
func (r *KVRepository) Set(ctx context.Context, profileID int64, key, value string) error {
	// Both sqlite and postgres understand ON CONFLICT ... DO UPDATE
	query := r.db.Rebind(`
		INSERT INTO kv_store (profile_id, key, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (profile_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`)
	if _, err := r.db.ExecContext(ctx, query, profileID, key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes a single key
func (r *KVRepository) Delete(ctx context.Context, profileID int64, key string) error {
	query := r.db.Rebind("DELETE FROM kv_store WHERE profile_id = ? AND key = ?")
	if _, err := r.db.ExecContext(ctx, query, profileID, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// DeleteProfile removes every key of a profile
func (r *KVRepository) DeleteProfile(ctx context.Context, profileID int64) error {
	query := r.db.Rebind("DELETE FROM kv_store WHERE profile_id = ?")
	if _, err := r.db.ExecContext(ctx, query, profileID); err != nil {
		return fmt.Errorf("failed to delete profile %d: %w", profileID, err)
	}
	return nil
}

// Profiles returns the ids of all profiles that have at least one key
func (r *KVRepository) Profiles(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, "SELECT DISTINCT profile_id FROM kv_store ORDER BY profile_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return ids, nil
}
