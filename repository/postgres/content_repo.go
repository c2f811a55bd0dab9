package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

type contentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository returns a Postgres-backed content index.
func NewContentRepository(pool *pgxpool.Pool) repository.ContentRepository {
	return &contentRepository{pool: pool}
}

func (r *contentRepository) Exists(ctx context.Context, ref domain.TargetRef) (bool, error) {
	const query = `SELECT 1 FROM contents WHERE kind = $1 AND id = $2`
	var one int
	if err := r.pool.QueryRow(ctx, query, ref.Kind, ref.ID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *contentRepository) Save(ctx context.Context, item *repository.ContentItem) error {
	if item == nil || item.Kind == "" || item.ID == 0 {
		return domain.ErrInvalidPayload
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	const query = `
	INSERT INTO contents (kind, id, title, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (kind, id) DO UPDATE SET title = EXCLUDED.title
	`
	_, err := r.pool.Exec(ctx, query, item.Kind, item.ID, item.Title, item.CreatedAt)
	return err
}

func (r *contentRepository) Delete(ctx context.Context, ref domain.TargetRef) error {
	const query = `DELETE FROM contents WHERE kind = $1 AND id = $2`
	_, err := r.pool.Exec(ctx, query, ref.Kind, ref.ID)
	return err
}

func (r *contentRepository) List(ctx context.Context, kind string, limit int) ([]repository.ContentItem, error) {
	const query = `
	SELECT kind, id, title, created_at
	FROM contents
	WHERE kind = $1
	ORDER BY created_at ASC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, kind, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []repository.ContentItem
	for rows.Next() {
		var item repository.ContentItem
		if err := rows.Scan(&item.Kind, &item.ID, &item.Title, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
