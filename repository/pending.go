package repository

import (
	"context"

	"github.com/sitepulse/backend/domain"
)

// PendingTaskRepository stores the pending-task set as a whole collection.
// All mutation is read-modify-write with last-writer-wins semantics; the
// lifecycle manager is the only caller that writes, which keeps the race
// localized. Lost updates self-heal on the next sweep.
type PendingTaskRepository interface {
	LoadAll(ctx context.Context) ([]domain.TaskInstance, error)
	SaveAll(ctx context.Context, tasks []domain.TaskInstance) error
}
