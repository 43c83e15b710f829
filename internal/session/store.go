package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/boddenberg/netbank-bfa-go/internal/port"
)

// Record is what a store keeps per session id.
type Record struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists session records until they expire.
type Store interface {
	Get(ctx context.Context, id string) (Record, bool, error)
	Put(ctx context.Context, id string, rec Record, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in a process-local TTL cache.
type MemoryStore struct {
	cache port.Cache[Record]
}

// NewMemoryStore creates a MemoryStore over c.
func NewMemoryStore(c port.Cache[Record]) *MemoryStore {
	return &MemoryStore{cache: c}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, bool, error) {
	rec, ok := s.cache.Get(id)
	return rec, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, rec Record, ttl time.Duration) error {
	s.cache.SetWithTTL(id, rec, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

const redisKeyPrefix = "bfa:session:"

// RedisStore keeps sessions in Redis so several BFA replicas share them.
type RedisStore struct {
	rdb redis.UniversalClient
}

// NewRedisStore creates a RedisStore over rdb.
func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, id string) (Record, bool, error) {
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("redis get session: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decoding session record: %w", err)
	}
	return rec, true, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, rec Record, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session record: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
