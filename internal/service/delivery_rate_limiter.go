package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryRateLimiter limita envios de follow-ups por destinatario.
type DeliveryRateLimiter interface {
	Allow(ctx context.Context, recipient string) bool
}

const redisDeliveryAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisDeliveryRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func NewRedisDeliveryRateLimiter(client *redis.Client, window time.Duration, max int) DeliveryRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Hour
	}
	if max <= 0 {
		max = 1
	}
	return &redisDeliveryRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "followup:rl:",
	}
}

// Allow falla abierto si Redis no responde.
func (l *redisDeliveryRateLimiter) Allow(ctx context.Context, recipient string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key := normalizeRecipient(recipient)
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 3600
	}
	count, err := l.client.Eval(ctx, redisDeliveryAllowScript, []string{l.prefix + key}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}

type memoryDeliveryRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	now    func() time.Time
	hits   map[string][]time.Time
}

// NewMemoryDeliveryRateLimiter es la variante sin Redis (ventana deslizante).
func NewMemoryDeliveryRateLimiter(window time.Duration, max int) DeliveryRateLimiter {
	if window <= 0 {
		window = time.Hour
	}
	if max <= 0 {
		max = 1
	}
	return &memoryDeliveryRateLimiter{
		window: window,
		max:    max,
		now:    time.Now,
		hits:   make(map[string][]time.Time),
	}
}

func (l *memoryDeliveryRateLimiter) Allow(_ context.Context, recipient string) bool {
	key := normalizeRecipient(recipient)
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)
	kept := l.hits[key][:0]
	for _, at := range l.hits[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

func normalizeRecipient(recipient string) string {
	return strings.ToLower(strings.TrimSpace(recipient))
}
