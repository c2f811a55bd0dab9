package repository

import (
	"context"

	"github.com/sitepulse/backend/domain"
)

// DismissalRepository stores dismissal records keyed by identifier
// (provider id plus optional target id), read and written as a whole.
type DismissalRepository interface {
	LoadAll(ctx context.Context) (map[string]domain.DismissalRecord, error)
	SaveAll(ctx context.Context, records map[string]domain.DismissalRecord) error
}
