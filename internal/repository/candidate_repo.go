package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"interview-coach/internal/domain"
)

// CandidateRepository define la persistencia de cuentas de candidatos.
type CandidateRepository interface {
	Create(ctx context.Context, candidate domain.Candidate) error
	GetByID(ctx context.Context, id string) (domain.Candidate, error)
	GetByEmail(ctx context.Context, email string) (domain.Candidate, error)
}

// PgCandidateRepository implementa CandidateRepository usando pgxpool.
type PgCandidateRepository struct {
	pool DBPool
}

func NewPgCandidateRepository(pool *pgxpool.Pool) *PgCandidateRepository {
	return &PgCandidateRepository{pool: pool}
}

func NewPgCandidateRepositoryWithPool(pool DBPool) *PgCandidateRepository {
	return &PgCandidateRepository{pool: pool}
}

func (r *PgCandidateRepository) Create(ctx context.Context, c domain.Candidate) error {
	const query = `
		INSERT INTO candidates (id, email, display_name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Email,
		c.DisplayName,
		c.PasswordHash,
		c.CreatedAt,
	)
	return mapPgError(err)
}

func (r *PgCandidateRepository) GetByID(ctx context.Context, id string) (domain.Candidate, error) {
	const query = `
		SELECT id, email, display_name, password_hash, created_at
		FROM candidates
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *PgCandidateRepository) GetByEmail(ctx context.Context, email string) (domain.Candidate, error) {
	const query = `
		SELECT id, email, display_name, password_hash, created_at
		FROM candidates
		WHERE email = $1
	`
	return r.scanOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

func (r *PgCandidateRepository) scanOne(ctx context.Context, query string, arg any) (domain.Candidate, error) {
	var c domain.Candidate
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID,
		&c.Email,
		&c.DisplayName,
		&c.PasswordHash,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.Candidate{}, mapPgError(err)
	}
	return c, nil
}

// MemoryCandidateRepository se usa cuando no hay DATABASE_URL.
type MemoryCandidateRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.Candidate
	byEmail map[string]string
}

func NewMemoryCandidateRepository() *MemoryCandidateRepository {
	return &MemoryCandidateRepository{
		byID:    make(map[string]domain.Candidate),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryCandidateRepository) Create(_ context.Context, c domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[c.Email]; ok {
		return ErrDuplicate
	}
	if _, ok := r.byID[c.ID]; ok {
		return ErrDuplicate
	}
	r.byID[c.ID] = c
	r.byEmail[c.Email] = c.ID
	return nil
}

func (r *MemoryCandidateRepository) GetByID(_ context.Context, id string) (domain.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return domain.Candidate{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryCandidateRepository) GetByEmail(ctx context.Context, email string) (domain.Candidate, error) {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	r.mu.RUnlock()
	if !ok {
		return domain.Candidate{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}
