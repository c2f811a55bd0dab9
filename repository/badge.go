package repository

import (
	"context"

	"github.com/sitepulse/backend/domain"
)

// BadgeRepository stores monthly badges and their memoized progress.
type BadgeRepository interface {
	Get(ctx context.Context, id string) (*domain.Badge, error)
	Save(ctx context.Context, badge *domain.Badge) error
	List(ctx context.Context) ([]domain.Badge, error)
}
