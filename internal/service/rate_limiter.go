package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ventana fija: el primer INCR fija el TTL del contador.
const redisRateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

const tokenRateLimitPrefix = "auth:token:rl:"

// RateLimiter limita intentos por clave (client_id en /auth/token).
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

// NewRedisTokenRateLimiter limita emisiones de token por cliente. Sin Redis no limita.
func NewRedisTokenRateLimiter(client *redis.Client, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	return newRedisRateLimiter(client, tokenRateLimitPrefix, window, max)
}

func newRedisRateLimiter(client redisEvaler, prefix string, window time.Duration, max int) *redisRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: prefix,
	}
}

// Allow falla abierto si Redis no responde.
func (l *redisRateLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisRateLimitScript, []string{l.prefix + normalizedKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
