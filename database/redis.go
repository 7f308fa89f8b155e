package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	MinIdleConns int
	ReadTimeout  time.Duration
	MaxRetries   int
}

// NewRedisClient creates a Redis client with the provided configuration
func NewRedisClient(ctx context.Context, config RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = config.PoolSize
	opt.MinIdleConns = config.MinIdleConns
	opt.DialTimeout = config.DialTimeout
	opt.ReadTimeout = config.ReadTimeout
	opt.MaxRetries = config.MaxRetries

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis server: %w", err)
	}

	log.Info().
		Int("pool_size", config.PoolSize).
		Int("min_idle_conns", config.MinIdleConns).
		Dur("dial_timeout", config.DialTimeout).
		Dur("read_timeout", config.ReadTimeout).
		Int("max_retries", config.MaxRetries).
		Msg("redis client initialized")
	return client, nil
}

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

var releaseScript = redis.NewScript(releaseLockScript)

// ErrLockNotOwned is returned when releasing a lock held by someone else or already expired.
var ErrLockNotOwned = errors.New("lock release failed: not the lock owner")

// Locker hands out short-lived Redis locks. Each acquisition is tagged with a
// random token so that only the holder can release it.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{client: client}
}

// Acquire tries once to take key for ttl. It does not wait or retry: ok is
// false when another holder already owns the key.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error) {
	if l.client == nil {
		return "", false, errors.New("Redis client is not initialized")
	}
	token = uuid.New().String()
	ok, err = l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, errors.Wrap(err, "failed to acquire lock")
	}
	return token, ok, nil
}

// Release drops key if it is still held with token.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	if l.client == nil {
		return errors.New("Redis client is not initialized")
	}
	result, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int64()
	if err != nil {
		return errors.Wrap(err, "failed to release lock")
	}
	if result == 0 {
		return ErrLockNotOwned
	}
	return nil
}

// PingRedis verifies the Redis connection.
func PingRedis(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "failed to ping Redis")
	}
	return nil
}
