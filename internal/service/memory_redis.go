package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"travel-agent/internal/domain"
)

// Agrega y recorta en un solo paso para que ningún lector vea la lista a medio podar.
const redisRememberScript = `
local n = redis.call("RPUSH", KEYS[1], ARGV[1])
local max = tonumber(ARGV[2])
if max > 0 and n > max then
  redis.call("LTRIM", KEYS[1], -max, -1)
end
return n
`

type redisListClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

type redisDecisionMemory struct {
	client     redisListClient
	key        string
	maxEntries int
	timeout    time.Duration
}

// NewRedisDecisionMemory guarda el historial como lista JSON en Redis, compartida
// entre réplicas de la API. sessionKey separa historiales de distintas sesiones.
func NewRedisDecisionMemory(client *redis.Client, sessionKey string, maxEntries int) DecisionMemory {
	if client == nil {
		return nil
	}
	return newRedisDecisionMemory(client, sessionKey, maxEntries)
}

func newRedisDecisionMemory(client redisListClient, sessionKey string, maxEntries int) *redisDecisionMemory {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		sessionKey = "default"
	}
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &redisDecisionMemory{
		client:     client,
		key:        "decisions:history:" + sessionKey,
		maxEntries: maxEntries,
		timeout:    500 * time.Millisecond,
	}
}

func (m *redisDecisionMemory) Remember(ctx context.Context, prefs domain.Preferences, decision domain.Decision) error {
	payload, err := json.Marshal(domain.MemoryEntry{Preferences: prefs, Decision: decision})
	if err != nil {
		return fmt.Errorf("marshal memory entry: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.client.Eval(ctx, redisRememberScript, []string{m.key}, string(payload), m.maxEntries).Err(); err != nil {
		return fmt.Errorf("redis remember: %w", err)
	}
	return nil
}

func (m *redisDecisionMemory) History(ctx context.Context) ([]domain.MemoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	raw, err := m.client.LRange(ctx, m.key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis history: %w", err)
	}

	entries := make([]domain.MemoryEntry, 0, len(raw))
	for i, item := range raw {
		var e domain.MemoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode memory entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
