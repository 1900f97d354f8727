package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/Leadly/internal/repository"
)

var _ repository.SourceRepository = (*pgSourceRepo)(nil)

type pgSourceRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresSourceRepository creates a new PostgreSQL-backed subreddit repository.
func NewPostgresSourceRepository(pool *pgxpool.Pool) repository.SourceRepository {
	return &pgSourceRepo{pool: pool}
}

// Upsert records name as active. A previously removed subreddit is reactivated.
func (r *pgSourceRepo) Upsert(ctx context.Context, name string) error {
	query := `
		INSERT INTO subreddits_to_scan (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET is_active = TRUE, updated_at = now()
		WHERE subreddits_to_scan.is_active = FALSE`
	if _, err := r.pool.Exec(ctx, query, name); err != nil {
		return fmt.Errorf("postgres: upsert subreddit: %w", err)
	}
	return nil
}

func (r *pgSourceRepo) ListActive(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM subreddits_to_scan WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list subreddits: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: scan subreddits: %w", err)
	}
	return names, nil
}

func (r *pgSourceRepo) Deactivate(ctx context.Context, name string) error {
	query := `UPDATE subreddits_to_scan SET is_active = FALSE, updated_at = now() WHERE lower(name) = lower($1)`
	if _, err := r.pool.Exec(ctx, query, name); err != nil {
		return fmt.Errorf("postgres: deactivate subreddit: %w", err)
	}
	return nil
}

func (r *pgSourceRepo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subreddits_to_scan`)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete subreddits: %w", err)
	}
	return tag.RowsAffected(), nil
}
