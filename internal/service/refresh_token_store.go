package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshGrantExpired  = errors.New("refresh grant already expired")
)

// RefreshGrant es lo que un refresh token permite reemitir. Vive del lado del
// servidor: los scopes de un refresh salen de acá, no del token.
type RefreshGrant struct {
	ClientID  string    `json:"client_id"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RefreshTokenStore guarda grants de un solo uso indexados por jti.
// Consume devuelve el grant y lo elimina en la misma operación.
type RefreshTokenStore interface {
	Save(ctx context.Context, jti string, grant RefreshGrant) error
	Consume(ctx context.Context, jti string) (RefreshGrant, error)
	Revoke(ctx context.Context, jti string) error
}

type memoryRefreshTokenStore struct {
	mu     sync.Mutex
	grants map[string]RefreshGrant
	now    func() time.Time
}

func NewMemoryRefreshTokenStore() RefreshTokenStore {
	return newMemoryRefreshTokenStore(func() time.Time { return time.Now().UTC() })
}

func newMemoryRefreshTokenStore(now func() time.Time) *memoryRefreshTokenStore {
	return &memoryRefreshTokenStore{grants: make(map[string]RefreshGrant), now: now}
}

func (s *memoryRefreshTokenStore) Save(_ context.Context, jti string, grant RefreshGrant) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return ErrRefreshTokenNotFound
	}
	if !grant.ExpiresAt.After(s.now()) {
		return ErrRefreshGrantExpired
	}
	s.mu.Lock()
	s.grants[jti] = grant
	s.mu.Unlock()
	return nil
}

func (s *memoryRefreshTokenStore) Consume(_ context.Context, jti string) (RefreshGrant, error) {
	jti = strings.TrimSpace(jti)
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.grants[jti]
	if !ok {
		return RefreshGrant{}, ErrRefreshTokenNotFound
	}
	delete(s.grants, jti)
	if !grant.ExpiresAt.After(s.now()) {
		return RefreshGrant{}, ErrRefreshTokenNotFound
	}
	return grant, nil
}

func (s *memoryRefreshTokenStore) Revoke(_ context.Context, jti string) error {
	s.mu.Lock()
	delete(s.grants, strings.TrimSpace(jti))
	s.mu.Unlock()
	return nil
}

type redisGrantClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisRefreshTokenStore guarda el grant como JSON con TTL igual a su vida
// restante. GETDEL hace que dos refresh concurrentes no puedan usar el mismo jti.
type redisRefreshTokenStore struct {
	client  redisGrantClient
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

func NewRedisRefreshTokenStore(client *redis.Client) RefreshTokenStore {
	if client == nil {
		return nil
	}
	return newRedisRefreshTokenStore(client, func() time.Time { return time.Now().UTC() })
}

func newRedisRefreshTokenStore(client redisGrantClient, now func() time.Time) *redisRefreshTokenStore {
	return &redisRefreshTokenStore{
		client:  client,
		prefix:  "auth:refresh:",
		timeout: 500 * time.Millisecond,
		now:     now,
	}
}

func (s *redisRefreshTokenStore) Save(ctx context.Context, jti string, grant RefreshGrant) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return ErrRefreshTokenNotFound
	}
	ttl := grant.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrRefreshGrantExpired
	}
	payload, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("marshal refresh grant: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, s.prefix+jti, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis save refresh grant: %w", err)
	}
	return nil
}

func (s *redisRefreshTokenStore) Consume(ctx context.Context, jti string) (RefreshGrant, error) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return RefreshGrant{}, ErrRefreshTokenNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.GetDel(ctx, s.prefix+jti).Bytes()
	if errors.Is(err, redis.Nil) {
		return RefreshGrant{}, ErrRefreshTokenNotFound
	}
	if err != nil {
		return RefreshGrant{}, fmt.Errorf("redis consume refresh grant: %w", err)
	}
	var grant RefreshGrant
	if err := json.Unmarshal(raw, &grant); err != nil {
		return RefreshGrant{}, fmt.Errorf("decode refresh grant: %w", err)
	}
	return grant, nil
}

func (s *redisRefreshTokenStore) Revoke(ctx context.Context, jti string) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, s.prefix+jti).Err(); err != nil {
		return fmt.Errorf("redis revoke refresh grant: %w", err)
	}
	return nil
}
