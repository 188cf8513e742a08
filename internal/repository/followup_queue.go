package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"interview-coach/internal/domain"
)

// FollowUpQueue guarda los mensajes planificados hasta que el dispatcher los envia.
type FollowUpQueue interface {
	Enqueue(ctx context.Context, messages []domain.FollowUpMessage) error
	Due(ctx context.Context, now time.Time, limit int) ([]domain.FollowUpMessage, error)
	MarkSent(ctx context.Context, id, receiptID string, at time.Time) error
	// RecordFailure suma un intento y devuelve el estado resultante (pending o failed).
	RecordFailure(ctx context.Context, id, reason string, retryAt time.Time, maxAttempts int) (domain.MessageStatus, error)
	Cancel(ctx context.Context, id string) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.FollowUpMessage, error)
}

type MemoryFollowUpQueue struct {
	mu       sync.Mutex
	messages map[string]domain.FollowUpMessage
}

func NewMemoryFollowUpQueue() *MemoryFollowUpQueue {
	return &MemoryFollowUpQueue{messages: make(map[string]domain.FollowUpMessage)}
}

// Enqueue ignora ids ya presentes: reencolar un plan no duplica mensajes.
func (q *MemoryFollowUpQueue) Enqueue(_ context.Context, messages []domain.FollowUpMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, m := range messages {
		if _, ok := q.messages[m.ID]; ok {
			continue
		}
		q.messages[m.ID] = m
	}
	return nil
}

func (q *MemoryFollowUpQueue) Due(_ context.Context, now time.Time, limit int) ([]domain.FollowUpMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var due []domain.FollowUpMessage
	for _, m := range q.messages {
		if m.Ready(now) {
			due = append(due, m)
		}
	}
	sortMessages(due)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (q *MemoryFollowUpQueue) MarkSent(_ context.Context, id, receiptID string, at time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	m, ok := q.messages[id]
	if !ok {
		return ErrNotFound
	}
	next, err := m.MarkSent(receiptID, at)
	if err != nil {
		return err
	}
	q.messages[id] = next
	return nil
}

func (q *MemoryFollowUpQueue) RecordFailure(_ context.Context, id, reason string, retryAt time.Time, maxAttempts int) (domain.MessageStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	m, ok := q.messages[id]
	if !ok {
		return "", ErrNotFound
	}
	next, err := m.RecordFailure(reason, retryAt, maxAttempts)
	if err != nil {
		return "", err
	}
	q.messages[id] = next
	return next.Status, nil
}

func (q *MemoryFollowUpQueue) Cancel(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	m, ok := q.messages[id]
	if !ok {
		return ErrNotFound
	}
	next, err := m.Cancel()
	if err != nil {
		return err
	}
	q.messages[id] = next
	return nil
}

func (q *MemoryFollowUpQueue) ListBySession(_ context.Context, sessionID string) ([]domain.FollowUpMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []domain.FollowUpMessage
	for _, m := range q.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out, nil
}

func sortMessages(ms []domain.FollowUpMessage) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].ScheduledAt.Equal(ms[j].ScheduledAt) {
			return ms[i].ScheduledAt.Before(ms[j].ScheduledAt)
		}
		return ms[i].ID < ms[j].ID
	})
}

// PgFollowUpQueue implementa FollowUpQueue sobre la tabla follow_up_messages.
type PgFollowUpQueue struct {
	pool DBPool
}

func NewPgFollowUpQueue(pool *pgxpool.Pool) *PgFollowUpQueue {
	return &PgFollowUpQueue{pool: pool}
}

func NewPgFollowUpQueueWithPool(pool DBPool) *PgFollowUpQueue {
	return &PgFollowUpQueue{pool: pool}
}

func (q *PgFollowUpQueue) Enqueue(ctx context.Context, messages []domain.FollowUpMessage) error {
	const query = `
		INSERT INTO follow_up_messages (
			id, candidate_id, session_id, sequence, type, scheduled_at, subject_template, body_template, variables, recipient, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	for _, m := range messages {
		vars, err := json.Marshal(m.Variables)
		if err != nil {
			return err
		}
		if _, err := q.pool.Exec(ctx, query,
			m.ID,
			m.CandidateID,
			m.SessionID,
			m.Sequence,
			string(m.Type),
			m.ScheduledAt,
			m.SubjectTemplate,
			m.BodyTemplate,
			vars,
			m.Recipient,
			string(m.Status),
		); err != nil {
			return fmt.Errorf("enqueue follow-up %s: %w", m.ID, err)
		}
	}
	return nil
}

const followUpColumns = `id, candidate_id, session_id, sequence, type, scheduled_at, subject_template, body_template, variables, recipient, status, sent_at, receipt_id, attempts, next_attempt_at, last_error`

func (q *PgFollowUpQueue) Due(ctx context.Context, now time.Time, limit int) ([]domain.FollowUpMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + followUpColumns + `
		FROM follow_up_messages
		WHERE status = 'pending' AND scheduled_at <= $1
			AND (next_attempt_at IS NULL OR next_attempt_at <= $1)
		ORDER BY scheduled_at, id
		LIMIT $2
	`
	return q.list(ctx, query, now, limit)
}

func (q *PgFollowUpQueue) ListBySession(ctx context.Context, sessionID string) ([]domain.FollowUpMessage, error) {
	query := `
		SELECT ` + followUpColumns + `
		FROM follow_up_messages
		WHERE session_id = $1
		ORDER BY scheduled_at, id
	`
	return q.list(ctx, query, sessionID)
}

func (q *PgFollowUpQueue) list(ctx context.Context, query string, args ...any) ([]domain.FollowUpMessage, error) {
	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FollowUpMessage
	for rows.Next() {
		var (
			m         domain.FollowUpMessage
			kind      string
			status    string
			vars      []byte
			receiptID *string
		)
		if err := rows.Scan(
			&m.ID,
			&m.CandidateID,
			&m.SessionID,
			&m.Sequence,
			&kind,
			&m.ScheduledAt,
			&m.SubjectTemplate,
			&m.BodyTemplate,
			&vars,
			&m.Recipient,
			&status,
			&m.SentAt,
			&receiptID,
			&m.Attempts,
			&m.NextAttemptAt,
			&m.LastError,
		); err != nil {
			return nil, err
		}
		m.Type = domain.MessageType(kind)
		m.Status = domain.MessageStatus(status)
		if receiptID != nil {
			m.ReceiptID = *receiptID
		}
		if len(vars) > 0 {
			if err := json.Unmarshal(vars, &m.Variables); err != nil {
				return nil, fmt.Errorf("decode variables for %s: %w", m.ID, err)
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSent solo afecta mensajes pending; si no hay fila es ErrNotFound.
func (q *PgFollowUpQueue) MarkSent(ctx context.Context, id, receiptID string, at time.Time) error {
	const query = `
		UPDATE follow_up_messages
		SET status = 'sent', sent_at = $2, receipt_id = $3
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := q.pool.Exec(ctx, query, id, at.UTC(), receiptID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordFailure actualiza intento, error y proximo intento en una sola sentencia; las
// expresiones del SET leen los valores previos de la fila.
func (q *PgFollowUpQueue) RecordFailure(ctx context.Context, id, reason string, retryAt time.Time, maxAttempts int) (domain.MessageStatus, error) {
	const query = `
		UPDATE follow_up_messages
		SET attempts = attempts + 1,
			last_error = $2,
			next_attempt_at = CASE WHEN attempts + 1 >= $4 THEN NULL ELSE $3::timestamptz END,
			status = CASE WHEN attempts + 1 >= $4 THEN 'failed' ELSE status END
		WHERE id = $1 AND status = 'pending'
		RETURNING status
	`
	var status string
	if err := q.pool.QueryRow(ctx, query, id, reason, retryAt.UTC(), maxAttempts).Scan(&status); err != nil {
		return "", mapPgError(err)
	}
	return domain.MessageStatus(status), nil
}

func (q *PgFollowUpQueue) Cancel(ctx context.Context, id string) error {
	const query = `
		UPDATE follow_up_messages
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := q.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
