package repository

import (
	"context"
	"time"

	"github.com/sitepulse/backend/domain"
)

// ActivityFilter narrows event-log queries. Zero values match everything.
type ActivityFilter struct {
	Category domain.ActivityCategory
	Type     string
	TargetID string
	From     time.Time
	To       time.Time
	Limit    int
}

// ActivityRepository is the append-only event log of site activities.
type ActivityRepository interface {
	Append(ctx context.Context, activity *domain.Activity) error
	Get(ctx context.Context, id string) (*domain.Activity, error)
	Query(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
	Delete(ctx context.Context, ids []string) error
}
