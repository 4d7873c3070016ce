// Package throttle limits how often the same scan may be triggered.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned when the counter store cannot be reached
var ErrUnavailable = errors.New("throttle store unavailable")

const keyPrefix = "sw:throttle:"

// RedisThrottle counts triggers per key in fixed windows
type RedisThrottle struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
	logger logger.Logger
}

// NewRedisThrottle allows limit triggers per key within window
func NewRedisThrottle(redisClient *redis.Client, limit int64, window time.Duration, logger logger.Logger) *RedisThrottle {
	return &RedisThrottle{
		redis:  redisClient,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

func (t *RedisThrottle) key(k string) string {
	return keyPrefix + k
}

// Allow increments the counter of key and returns scans.ErrThrottled once it exceeds the limit
func (t *RedisThrottle) Allow(ctx context.Context, key string) error {
	count, err := t.redis.Incr(ctx, t.key(key)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count == 1 {
		if err := t.redis.Expire(ctx, t.key(key), t.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	if count > t.limit {
		t.logger.Warn("Scan trigger throttled for ", key, " (", count, "/", t.limit, ")")
		return scans.ErrThrottled
	}
	return nil
}

// Reset clears the counter of key
func (t *RedisThrottle) Reset(ctx context.Context, key string) error {
	if err := t.redis.Del(ctx, t.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// NoopThrottle never throttles
type NoopThrottle struct{}

func (NoopThrottle) Allow(context.Context, string) error {
	return nil
}

// NewThrottle connects to Redis when settings are enabled and falls back to NoopThrottle otherwise.
// The returned close function releases the client.
func NewThrottle(ctx context.Context, settings *config.RedisSettings, logger logger.Logger) (scans.Throttle, func() error, error) {
	if !settings.Enabled() {
		logger.Info("Redis not configured, scan triggers are not throttled")
		return NoopThrottle{}, func() error { return nil }, nil
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     settings.Addr,
		Password: settings.Password,
		DB:       settings.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	logger.Info("Scan triggers throttled to ", settings.Limit, " per ", settings.Window)
	return NewRedisThrottle(client, settings.Limit, settings.Window, logger), client.Close, nil
}
