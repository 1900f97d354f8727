package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/repository"
)

var _ repository.LeadRepository = (*pgLeadRepo)(nil)

type pgLeadRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresLeadRepository creates a new PostgreSQL-backed lead repository.
func NewPostgresLeadRepository(pool *pgxpool.Pool) repository.LeadRepository {
	return &pgLeadRepo{pool: pool}
}

const insertLead = `
	INSERT INTO leads (item_id, kind, title, description, url, subreddit_name, category, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	ON CONFLICT (item_id) DO NOTHING`

func (r *pgLeadRepo) UpsertLeads(ctx context.Context, leads []*domain.Lead, category domain.Category) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, l := range leads {
		batch.Queue(insertLead, l.ItemID, string(l.Kind), l.Title, l.Description, l.URL, l.Subreddit, string(category), now)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range leads {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("postgres: upsert leads: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *pgLeadRepo) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT item_id FROM leads`)
	if err != nil {
		return nil, fmt.Errorf("postgres: existing ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: scan ids: %w", err)
	}

	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *pgLeadRepo) List(ctx context.Context, filter domain.LeadFilter) ([]*domain.Lead, error) {
	where, args := leadWhere(filter)
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT id, item_id, kind, title, description, url, subreddit_name, category, created_at, updated_at
		FROM leads%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list leads: %w", err)
	}
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		l := &domain.Lead{}
		if err := rows.Scan(
			&l.ID, &l.ItemID, &l.Kind, &l.Title, &l.Description, &l.URL,
			&l.Subreddit, &l.Category, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list leads: %w", err)
	}
	return leads, nil
}

func (r *pgLeadRepo) Count(ctx context.Context, filter domain.LeadFilter) (int, error) {
	where, args := leadWhere(filter)
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count leads: %w", err)
	}
	return n, nil
}

func (r *pgLeadRepo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads`)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete leads: %w", err)
	}
	return tag.RowsAffected(), nil
}

// leadWhere builds the WHERE clause shared by List and Count.
func leadWhere(filter domain.LeadFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Subreddit != "" {
		args = append(args, filter.Subreddit)
		conds = append(conds, fmt.Sprintf("lower(subreddit_name) = lower($%d)", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
