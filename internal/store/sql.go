package store

import (
	"context"

	"github.com/example/verbadiem/internal/database"
	"github.com/jmoiron/sqlx"
)

// SQLBackend stores profiles in the kv_store table of sqlite or postgres
type SQLBackend struct {
	db   *sqlx.DB
	repo *database.KVRepository
}

// NewSQLBackend wraps an open database connection
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db, repo: database.NewKVRepository(db)}
}

// Profile returns the store of a profile
func (b *SQLBackend) Profile(id int64) Store {
	return &sqlStore{repo: b.repo, profile: id}
}

// Profiles lists profiles with stored keys
func (b *SQLBackend) Profiles(ctx context.Context) ([]int64, error) {
	return b.repo.Profiles(ctx)
}

// Close closes the database connection
func (b *SQLBackend) Close() error {
	return b.db.Close()
}

type sqlStore struct {
	repo    *database.KVRepository
	profile int64
}

func (s *sqlStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.repo.Get(ctx, s.profile, key)
}

func (s *sqlStore) Set(ctx context.Context, key, value string) error {
	return s.repo.Set(ctx, s.profile, key, value)
}

func (s *sqlStore) Remove(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, s.profile, key)
}

func (s *sqlStore) Clear(ctx context.Context) error {
	return s.repo.DeleteProfile(ctx, s.profile)
}
