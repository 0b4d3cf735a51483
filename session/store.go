package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Load when no state is persisted.
var ErrNotFound = errors.New("session state not found")

// ErrRedisUnavailable wraps Redis transport failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store persists the authenticated state of one client profile.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the encoded state in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the stored state or returns [ErrNotFound].
func (m *MemoryStore) Load(ctx context.Context) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	data := m.data
	m.mu.Unlock()

	if data == nil {
		return nil, ErrNotFound
	}
	return Decode(data)
}

// Save replaces the stored state.
func (m *MemoryStore) Save(ctx context.Context, state *State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Clear removes the stored state. Clearing an empty store is a no-op.
func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// RedisStore keeps the encoded state under one Redis key per profile.
//
//	Performance: 1 Redis command per call.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a store for profile under prefix. A ttl of zero keeps
// the state until Clear.
func NewRedisStore(client redis.UniversalClient, prefix, profile string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "gac"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		key:    prefix + ":auth:" + normalizeProfile(profile),
		ttl:    ttl,
	}
}

func normalizeProfile(profile string) string {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return "default"
	}
	return profile
}

// Key returns the Redis key the store writes.
func (s *RedisStore) Key() string {
	return s.key
}

// Load reads and decodes the stored state.
func (s *RedisStore) Load(ctx context.Context) (*State, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return Decode(data)
}

// Save encodes and writes state with the configured TTL.
func (s *RedisStore) Save(ctx context.Context, state *State) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Clear deletes the stored state. Missing keys are not an error.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
