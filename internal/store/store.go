package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup by ID matches no row.
var ErrNotFound = errors.New("not found")

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

const schema = `
CREATE TABLE IF NOT EXISTS complaint_analyses (
	id             uuid PRIMARY KEY,
	complaint_text text NOT NULL,
	is_technical   boolean NOT NULL,
	category       text,
	ui             jsonb NOT NULL,
	raw            jsonb NOT NULL,
	created_at     timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS complaints (
	id             uuid PRIMARY KEY,
	student_id     text NOT NULL,
	title          text NOT NULL,
	description    text NOT NULL,
	category       text NOT NULL,
	priority       text NOT NULL DEFAULT 'Medium',
	status         text NOT NULL DEFAULT 'Open',
	department     text NOT NULL,
	ai_analysis_id uuid REFERENCES complaint_analyses(id),
	created_at     timestamptz NOT NULL DEFAULT now(),
	updated_at     timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS complaints_category_created_idx ON complaints (category, created_at DESC);
CREATE INDEX IF NOT EXISTS complaints_student_idx ON complaints (student_id);
`

// Migrate creates the tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
