package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"interview-coach/internal/config"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	return pool.Ping(ctx)
}

// Execer es lo minimo que necesita Migrate; lo cumplen pgxpool.Pool y pgxmock.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS candidates (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS candidate_histories (
		candidate_id TEXT PRIMARY KEY,
		document JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS performance_embeddings (
		record_id TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		overall DOUBLE PRECISION NOT NULL,
		embedding vector(5) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS performance_embeddings_candidate_idx ON performance_embeddings (candidate_id)`,
	`CREATE TABLE IF NOT EXISTS follow_up_messages (
		id TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL DEFAULT '',
		session_id TEXT NOT NULL,
		sequence INT NOT NULL,
		type TEXT NOT NULL,
		scheduled_at TIMESTAMPTZ NOT NULL,
		subject_template TEXT NOT NULL,
		body_template TEXT NOT NULL,
		variables JSONB NOT NULL DEFAULT '{}'::jsonb,
		recipient TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		sent_at TIMESTAMPTZ,
		receipt_id TEXT NOT NULL DEFAULT '',
		attempts INT NOT NULL DEFAULT 0,
		next_attempt_at TIMESTAMPTZ,
		last_error TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS follow_up_messages_due_idx ON follow_up_messages (status, scheduled_at)`,
}

// Migrate crea el esquema si no existe. Es idempotente.
func Migrate(ctx context.Context, conn Execer) error {
	for i, stmt := range migrations {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
