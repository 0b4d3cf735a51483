package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRateLimited      = errors.New("rate limited")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Config holds limiter tuning parameters.
type Config struct {
	// Prefix namespaces every counter key, e.g. "stub:login".
	Prefix      string
	MaxAttempts int
	Window      time.Duration
}

// Limiter counts attempts per key in fixed windows stored in Redis.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New returns a limiter backed by redisClient. Zero MaxAttempts or Window
// fall back to 5 attempts per 15 minutes.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "rl"
	}
	return &Limiter{redis: redisClient, config: cfg}
}

// Check returns [ErrRateLimited] once key has used its budget for the
// current window. It does not count an attempt.
func (l *Limiter) Check(ctx context.Context, key string) error {
	count, err := l.Attempts(ctx, key)
	if err != nil {
		return err
	}
	if count >= l.config.MaxAttempts {
		return ErrRateLimited
	}
	return nil
}

// Hit records one attempt for key and returns [ErrRateLimited] when the
// budget is now exhausted.
func (l *Limiter) Hit(ctx context.Context, key string) error {
	count, err := l.incrementWithTTL(ctx, l.key(key))
	if err != nil {
		return err
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the counter for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the attempts recorded for key in the current window.
func (l *Limiter) Attempts(ctx context.Context, key string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

func (l *Limiter) key(k string) string {
	return l.config.Prefix + ":" + strings.ToLower(strings.TrimSpace(k))
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed window: the first hit sets the expiry.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}
