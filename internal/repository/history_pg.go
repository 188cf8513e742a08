package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"interview-coach/internal/domain"
)

var _ domain.HistoryStore = (*PgHistoryStore)(nil)

// SimilarRecord es un registro cercano en el espacio de dimensiones.
type SimilarRecord struct {
	RecordID    string    `json:"record_id"`
	CandidateID string    `json:"candidate_id"`
	SessionID   string    `json:"session_id"`
	Overall     float64   `json:"overall"`
	Distance    float64   `json:"distance"`
	CreatedAt   time.Time `json:"created_at"`
}

// SimilarityFinder lo implementan los stores que indexan embeddings.
type SimilarityFinder interface {
	SimilarRecords(ctx context.Context, candidateID string, scores domain.DimensionScores, k int) ([]SimilarRecord, error)
}

// PgHistoryStore persiste el documento como JSONB y cada registro como vector(5).
type PgHistoryStore struct {
	pool DBPool
	now  func() time.Time
}

func NewPgHistoryStore(pool *pgxpool.Pool) *PgHistoryStore {
	return NewPgHistoryStoreWithPool(pool)
}

func NewPgHistoryStoreWithPool(pool DBPool) *PgHistoryStore {
	return &PgHistoryStore{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *PgHistoryStore) Load(ctx context.Context, candidateID string) (domain.HistoryDocument, error) {
	const query = `
		SELECT document
		FROM candidate_histories
		WHERE candidate_id = $1
	`
	var raw []byte
	err := s.pool.QueryRow(ctx, query, candidateID).Scan(&raw)
	if err != nil {
		if errors.Is(mapPgError(err), ErrNotFound) {
			return domain.NewHistoryDocument(candidateID), nil
		}
		return domain.HistoryDocument{}, fmt.Errorf("load history: %w", err)
	}
	return decodeHistory(raw)
}

// Append agrega el registro en una sola sentencia; no hay lectura previa.
func (s *PgHistoryStore) Append(ctx context.Context, candidateID string, record domain.PerformanceRecord) error {
	now := s.now()
	initial := domain.NewHistoryDocument(candidateID)
	initial.Append(record, now)
	docJSON, err := json.Marshal(initial)
	if err != nil {
		return err
	}
	recordJSON, err := json.Marshal([]domain.PerformanceRecord{record})
	if err != nil {
		return err
	}
	updatedAt, err := json.Marshal(now)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const upsert = `
		INSERT INTO candidate_histories (candidate_id, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (candidate_id) DO UPDATE SET
			document = jsonb_set(
				jsonb_set(candidate_histories.document, '{records}', (candidate_histories.document->'records') || $4::jsonb),
				'{updated_at}', $5::jsonb),
			updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.Exec(ctx, upsert, candidateID, docJSON, now, recordJSON, updatedAt); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	const embed = `
		INSERT INTO performance_embeddings (record_id, candidate_id, session_id, overall, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (record_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, embed,
		record.ID,
		candidateID,
		record.SessionID,
		record.Overall,
		pgvector.NewVector(record.Scores.Vector()),
		record.CreatedAt,
	); err != nil {
		return fmt.Errorf("index record embedding: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func (s *PgHistoryStore) SetLastPlan(ctx context.Context, candidateID, planID string) error {
	now := s.now()
	initial := domain.NewHistoryDocument(candidateID)
	initial.LastPlanID = planID
	initial.UpdatedAt = now
	docJSON, err := json.Marshal(initial)
	if err != nil {
		return err
	}

	const upsert = `
		INSERT INTO candidate_histories (candidate_id, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (candidate_id) DO UPDATE SET
			document = jsonb_set(candidate_histories.document, '{last_plan_id}', to_jsonb($4::text)),
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.pool.Exec(ctx, upsert, candidateID, docJSON, now, planID); err != nil {
		return fmt.Errorf("set last plan: %w", err)
	}
	return nil
}

// SimilarRecords busca los k registros mas cercanos (distancia L2) del candidato.
func (s *PgHistoryStore) SimilarRecords(ctx context.Context, candidateID string, scores domain.DimensionScores, k int) ([]SimilarRecord, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT record_id, candidate_id, session_id, overall, embedding <-> $2 AS distance, created_at
		FROM performance_embeddings
		WHERE candidate_id = $1
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	rows, err := s.pool.Query(ctx, query, candidateID, pgvector.NewVector(scores.Vector()), k)
	if err != nil {
		return nil, fmt.Errorf("similar records: %w", err)
	}
	defer rows.Close()

	var out []SimilarRecord
	for rows.Next() {
		var r SimilarRecord
		if err := rows.Scan(&r.RecordID, &r.CandidateID, &r.SessionID, &r.Overall, &r.Distance, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
