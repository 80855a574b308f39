package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"warbler/internal/cache"

	"github.com/redis/go-redis/v9"
)

// Store binds session IDs (JWT jti) to user IDs with an expiry.
type Store interface {
	Bind(ctx context.Context, jti string, userID uint, ttl time.Duration) error
	// Lookup returns ok=false when the binding is absent or expired.
	Lookup(ctx context.Context, jti string) (userID uint, ok bool, err error)
	Revoke(ctx context.Context, jti string) error
	Ping(ctx context.Context) error
}

// RedisStore keeps bindings under session:<jti> keys with a Redis TTL.
type RedisStore struct {
	rdb redis.Cmdable
}

// NewRedisStore returns a Redis-backed Store.
func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Bind(ctx context.Context, jti string, userID uint, ttl time.Duration) error {
	return s.rdb.Set(ctx, cache.SessionKey(jti), strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, jti string) (uint, bool, error) {
	raw, err := s.rdb.Get(ctx, cache.SessionKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		// A corrupt binding is treated as no binding.
		return 0, false, nil
	}
	return uint(id), true, nil
}

func (s *RedisStore) Revoke(ctx context.Context, jti string) error {
	return s.rdb.Del(ctx, cache.SessionKey(jti)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

type memoryEntry struct {
	userID    uint
	expiresAt time.Time
}

// MemoryStore is an in-process Store for single-instance development without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-process Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Bind(_ context.Context, jti string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = memoryEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, jti string) (uint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[jti]
	if !ok {
		return 0, false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, jti)
		return 0, false, nil
	}
	return e.userID, true, nil
}

func (s *MemoryStore) Revoke(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, jti)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// NewStore picks the Redis store when rdb is available. Without Redis it falls
// back to a MemoryStore only when allowMemory is set.
func NewStore(rdb *redis.Client, allowMemory bool) (Store, error) {
	if rdb != nil {
		return NewRedisStore(rdb), nil
	}
	if !allowMemory {
		return nil, errors.New("redis is required for sessions")
	}
	return NewMemoryStore(), nil
}
