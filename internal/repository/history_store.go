package repository

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"interview-coach/internal/domain"
)

var _ domain.HistoryStore = (*MemoryHistoryStore)(nil)

// MemoryHistoryStore guarda documentos en memoria, serializados para que los
// lectores nunca compartan slices con el store.
type MemoryHistoryStore struct {
	mu   sync.Mutex
	now  func() time.Time
	docs map[string][]byte
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		now:  func() time.Time { return time.Now().UTC() },
		docs: make(map[string][]byte),
	}
}

func (s *MemoryHistoryStore) Load(_ context.Context, candidateID string) (domain.HistoryDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(candidateID)
}

func (s *MemoryHistoryStore) load(candidateID string) (domain.HistoryDocument, error) {
	raw, ok := s.docs[candidateID]
	if !ok {
		return domain.NewHistoryDocument(candidateID), nil
	}
	return decodeHistory(raw)
}

func (s *MemoryHistoryStore) Append(_ context.Context, candidateID string, record domain.PerformanceRecord) error {
	return s.update(candidateID, func(doc *domain.HistoryDocument, now time.Time) {
		doc.Append(record, now)
	})
}

func (s *MemoryHistoryStore) SetLastPlan(_ context.Context, candidateID, planID string) error {
	return s.update(candidateID, func(doc *domain.HistoryDocument, now time.Time) {
		doc.LastPlanID = planID
		doc.UpdatedAt = now
	})
}

func (s *MemoryHistoryStore) update(candidateID string, fn func(*domain.HistoryDocument, time.Time)) error {
	if strings.TrimSpace(candidateID) == "" {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load(candidateID)
	if err != nil {
		return err
	}
	fn(&doc, s.now())
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.docs[candidateID] = raw
	return nil
}
