package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"interview-coach/internal/domain"
)

var _ domain.HistoryStore = (*SQLiteHistoryStore)(nil)

const sqliteHistorySchema = `
CREATE TABLE IF NOT EXISTS candidate_histories (
	candidate_id TEXT PRIMARY KEY,
	document     TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);`

// SQLiteHistoryStore es el store local del CLI (un archivo por usuario).
type SQLiteHistoryStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLiteHistoryStore(ctx context.Context, path string) (*SQLiteHistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// un solo escritor; evita SQLITE_BUSY entre conexiones del pool
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteHistorySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteHistoryStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteHistoryStore) Load(ctx context.Context, candidateID string) (domain.HistoryDocument, error) {
	return loadSQLite(ctx, s.db, candidateID)
}

type sqliteQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadSQLite(ctx context.Context, q sqliteQuerier, candidateID string) (domain.HistoryDocument, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT document FROM candidate_histories WHERE candidate_id = ?`, candidateID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewHistoryDocument(candidateID), nil
	}
	if err != nil {
		return domain.HistoryDocument{}, fmt.Errorf("load history: %w", err)
	}
	return decodeHistory([]byte(raw))
}

func (s *SQLiteHistoryStore) Append(ctx context.Context, candidateID string, record domain.PerformanceRecord) error {
	return s.update(ctx, candidateID, func(doc *domain.HistoryDocument, now time.Time) {
		doc.Append(record, now)
	})
}

func (s *SQLiteHistoryStore) SetLastPlan(ctx context.Context, candidateID, planID string) error {
	return s.update(ctx, candidateID, func(doc *domain.HistoryDocument, now time.Time) {
		doc.LastPlanID = planID
		doc.UpdatedAt = now
	})
}

func (s *SQLiteHistoryStore) update(ctx context.Context, candidateID string, fn func(*domain.HistoryDocument, time.Time)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	doc, err := loadSQLite(ctx, tx, candidateID)
	if err != nil {
		return err
	}
	now := s.now()
	fn(&doc, now)
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	const upsert = `
		INSERT INTO candidate_histories (candidate_id, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(candidate_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsert, candidateID, string(raw), now.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return tx.Commit()
}
