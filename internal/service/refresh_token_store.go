package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshTokenStore guarda el jti de cada refresh token y el candidato al que se emitio.
type RefreshTokenStore interface {
	Store(jti, candidateID string, ttl time.Duration) error
	// Owner devuelve el candidato dueño del jti, o "" si no existe o vencio.
	Owner(jti string) (string, error)
	Revoke(jti string) error
}

const defaultRefreshTTL = 30 * 24 * time.Hour

type refreshGrant struct {
	candidateID string
	expiresAt   time.Time
}

type memoryRefreshTokenStore struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]refreshGrant
}

func NewMemoryRefreshTokenStore() RefreshTokenStore {
	return &memoryRefreshTokenStore{
		now:   func() time.Time { return time.Now().UTC() },
		items: make(map[string]refreshGrant),
	}
}

func (s *memoryRefreshTokenStore) Store(jti, candidateID string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[jti] = refreshGrant{candidateID: candidateID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memoryRefreshTokenStore) Owner(jti string) (string, error) {
	jti = strings.TrimSpace(jti)
	s.mu.Lock()
	defer s.mu.Unlock()
	grant, ok := s.items[jti]
	if !ok {
		return "", nil
	}
	if s.now().After(grant.expiresAt) {
		delete(s.items, jti)
		return "", nil
	}
	return grant.candidateID, nil
}

func (s *memoryRefreshTokenStore) Revoke(jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, strings.TrimSpace(jti))
	return nil
}

type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisRefreshTokenStore struct {
	client redisKVClient
	prefix string
}

func NewRedisRefreshTokenStore(client *redis.Client) RefreshTokenStore {
	if client == nil {
		return nil
	}
	return &redisRefreshTokenStore{
		client: client,
		prefix: "coach:refresh:",
	}
}

func (s *redisRefreshTokenStore) Store(jti, candidateID string, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+jti, candidateID, ttl).Err()
}

func (s *redisRefreshTokenStore) Owner(jti string) (string, error) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	owner, err := s.client.Get(ctx, s.prefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return owner, nil
}

func (s *redisRefreshTokenStore) Revoke(jti string) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+jti).Err()
}
