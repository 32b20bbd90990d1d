// Package store persists conversation records in Postgres, keyed by thread
// id, with the filtered/sorted/paginated reads the frontend uses for chat
// history.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no conversation exists for a thread id.
var ErrNotFound = errors.New("conversation not found")

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the conversations table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS conversations (
			thread_id      text PRIMARY KEY,
			title          text NOT NULL DEFAULT '',
			messages       jsonb NOT NULL DEFAULT '[]',
			usage_history  jsonb NOT NULL DEFAULT '{}',
			assistant_name text NOT NULL DEFAULT '',
			user_id        text NOT NULL DEFAULT '',
			created_at     timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
