package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository returns a Postgres-backed event log.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	if activity == nil {
		return domain.ErrInvalidPayload
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}

	const query = `
	INSERT INTO activities (id, category, type, occurred_at, target_id, actor_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		activity.ID,
		string(activity.Category),
		activity.Type,
		activity.OccurredAt,
		activity.TargetID,
		activity.ActorID,
	)
	return err
}

func (r *activityRepository) Get(ctx context.Context, id string) (*domain.Activity, error) {
	const query = `
	SELECT id, category, type, occurred_at, target_id, actor_id
	FROM activities
	WHERE id = $1
	`
	var (
		a        domain.Activity
		category string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &category, &a.Type, &a.OccurredAt, &a.TargetID, &a.ActorID)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Category = domain.ActivityCategory(category)
	return &a, nil
}

func (r *activityRepository) Query(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	const query = `
	SELECT id, category, type, occurred_at, target_id, actor_id
	FROM activities
	WHERE ($1 = '' OR category = $1)
	  AND ($2 = '' OR type = $2)
	  AND ($3 = '' OR target_id = $3)
	  AND ($4::timestamptz IS NULL OR occurred_at >= $4)
	  AND ($5::timestamptz IS NULL OR occurred_at < $5)
	ORDER BY occurred_at ASC
	LIMIT $6
	`
	rows, err := r.pool.Query(ctx, query,
		string(filter.Category),
		filter.Type,
		filter.TargetID,
		nullableTime(filter.From),
		nullableTime(filter.To),
		clampLimit(filter.Limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var (
			a        domain.Activity
			category string
		)
		if err := rows.Scan(&a.ID, &category, &a.Type, &a.OccurredAt, &a.TargetID, &a.ActorID); err != nil {
			return nil, err
		}
		a.Category = domain.ActivityCategory(category)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (r *activityRepository) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `DELETE FROM activities WHERE id = ANY($1)`
	_, err := r.pool.Exec(ctx, query, ids)
	return err
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 10000 {
		return 10000
	}
	return limit
}
