package repository

import (
	"context"
	"time"

	"github.com/sitepulse/backend/domain"
)

// ContentItem is an indexed site content item or term, tracked so the engine
// can tell whether an activity's target still exists.
type ContentItem struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TargetResolver answers whether a referenced target still exists.
type TargetResolver interface {
	Exists(ctx context.Context, ref domain.TargetRef) (bool, error)
}

// ContentRepository indexes site content for relevance checks and
// deleted-target scoring.
type ContentRepository interface {
	TargetResolver
	Save(ctx context.Context, item *ContentItem) error
	Delete(ctx context.Context, ref domain.TargetRef) error
	// List returns up to limit items of the given kind, oldest first.
	List(ctx context.Context, kind string, limit int) ([]ContentItem, error)
}
