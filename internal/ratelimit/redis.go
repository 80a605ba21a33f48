package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript checks the counter and increments it in one round trip, so
// concurrent requests for the same key cannot both slip under the cap.
// A denied request leaves the counter untouched.
var allowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
  return 0
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

// RedisLimiter is a Limiter backed by a shared Redis counter, correct
// across multiple service instances.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter connects to Redis and verifies the connection.
func NewRedisLimiter(addr string, db int) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisLimiter{client: client}, nil
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, clientID, phone string) (bool, error) {
	key := fmt.Sprintf("otp:limit:%s:%s", clientID, phone)

	allowed, err := allowScript.Run(ctx, l.client, []string{key},
		MaxSends, Window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return allowed == 1, nil
}

// Close releases the underlying Redis connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
