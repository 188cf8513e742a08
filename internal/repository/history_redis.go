package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"interview-coach/internal/domain"
)

var _ domain.HistoryStore = (*RedisHistoryStore)(nil)

const redisHistoryRetries = 5

// RedisHistoryStore guarda el documento como JSON bajo una clave por candidato.
// Las escrituras usan WATCH/MULTI para no perder appends concurrentes.
type RedisHistoryStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisHistoryStore(client *redis.Client) *RedisHistoryStore {
	return &RedisHistoryStore{
		client: client,
		prefix: "coach:history:",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *RedisHistoryStore) key(candidateID string) string {
	return s.prefix + candidateID
}

func (s *RedisHistoryStore) Load(ctx context.Context, candidateID string) (domain.HistoryDocument, error) {
	raw, err := s.client.Get(ctx, s.key(candidateID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewHistoryDocument(candidateID), nil
	}
	if err != nil {
		return domain.HistoryDocument{}, fmt.Errorf("load history: %w", err)
	}
	return decodeHistory(raw)
}

func (s *RedisHistoryStore) Append(ctx context.Context, candidateID string, record domain.PerformanceRecord) error {
	return s.update(ctx, candidateID, func(doc *domain.HistoryDocument, now time.Time) {
		doc.Append(record, now)
	})
}

func (s *RedisHistoryStore) SetLastPlan(ctx context.Context, candidateID, planID string) error {
	return s.update(ctx, candidateID, func(doc *domain.HistoryDocument, now time.Time) {
		doc.LastPlanID = planID
		doc.UpdatedAt = now
	})
}

func (s *RedisHistoryStore) update(ctx context.Context, candidateID string, fn func(*domain.HistoryDocument, time.Time)) error {
	key := s.key(candidateID)
	txf := func(tx *redis.Tx) error {
		doc := domain.NewHistoryDocument(candidateID)
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if doc, err = decodeHistory(raw); err != nil {
				return err
			}
		}
		fn(&doc, s.now())
		next, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < redisHistoryRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("update history: %w", err)
	}
	return fmt.Errorf("update history: %w", redis.TxFailedErr)
}
