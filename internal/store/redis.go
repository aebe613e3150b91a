package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	redisProfileKeyPrefix = "verbadiem:profile:"
	redisProfileIndexKey  = "verbadiem:profiles"
)

// RedisBackend keeps one hash per profile plus a set indexing the profiles
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to redis and verifies the connection
func NewRedisBackend(ctx context.Context, opts *redis.Options) (*RedisBackend, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisBackend{client: client}, nil
}

// NewRedisBackendWithClient wraps an existing client
func NewRedisBackendWithClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// Profile returns the store of a profile
func (b *RedisBackend) Profile(id int64) Store {
	return &redisStore{client: b.client, profile: id}
}

// Profiles lists indexed profiles
func (b *RedisBackend) Profiles(ctx context.Context) ([]int64, error) {
	members, err := b.client.SMembers(ctx, redisProfileIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Close closes the client
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

type redisStore struct {
	client  *redis.Client
	profile int64
}

func (s *redisStore) hashKey() string {
	return redisProfileKeyPrefix + strconv.FormatInt(s.profile, 10)
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.hashKey(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.hashKey(), key, value)
	pipe.SAdd(ctx, redisProfileIndexKey, strconv.FormatInt(s.profile, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.hashKey(), key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.hashKey())
	pipe.SRem(ctx, redisProfileIndexKey, strconv.FormatInt(s.profile, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear profile %d: %w", s.profile, err)
	}
	return nil
}
