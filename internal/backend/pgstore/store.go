// Package pgstore persists document slots in PostgreSQL.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/careersync/internal/persist"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS careersync_slots (
    workspace  TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (workspace, key)
)`

// Store implements persist.Backend on a pgx pool. Rows are scoped by workspace.
type Store struct {
	pool      *pgxpool.Pool
	workspace string
}

// Connect opens a pool, verifies it and ensures the slots table exists.
func Connect(ctx context.Context, databaseURL, workspace string) (*Store, error) {
	if workspace == "" {
		return nil, errors.New("workspace cannot be empty")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}

	return &Store{pool: pool, workspace: workspace}, nil
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value::text FROM careersync_slots WHERE workspace = $1 AND key = $2`,
		s.workspace, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, persist.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO careersync_slots (workspace, key, value, updated_at)
		 VALUES ($1, $2, $3::jsonb, NOW())
		 ON CONFLICT (workspace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		s.workspace, key, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM careersync_slots WHERE workspace = $1 AND key = $2`,
		s.workspace, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
