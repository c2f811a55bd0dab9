package builtin

import (
	"context"
	"strconv"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

// UpdateCounter reports how many core updates the site has pending.
type UpdateCounter interface {
	PendingUpdates(ctx context.Context) (int, error)
}

// UpdateCore proposes a weekly "install pending core updates" task.
type UpdateCore struct {
	base
	updates UpdateCounter
}

func NewUpdateCore(updates UpdateCounter) *UpdateCore {
	return &UpdateCore{
		base: base{
			id:                 "update-core",
			category:           domain.CategoryMaintenance,
			points:             1,
			repetitive:         true,
			capabilityRequired: true,
		},
		updates: updates,
	}
}

func (p *UpdateCore) Inject(ctx context.Context) ([]domain.TaskInstance, error) {
	n, err := p.updates.PendingUpdates(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return []domain.TaskInstance{{
		Priority: domain.PriorityHigh,
	}}, nil
}

func (p *UpdateCore) Evaluate(ctx context.Context, task domain.TaskInstance) (bool, error) {
	n, err := p.updates.PendingUpdates(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (p *UpdateCore) IsRelevant(ctx context.Context, task domain.TaskInstance) (bool, error) {
	n, err := p.updates.PendingUpdates(ctx)
	if err != nil {
		return true, err
	}
	return n > 0, nil
}

// SettingUpdateCounter reads the pending-update count the host mirrors into
// the settings store.
type SettingUpdateCounter struct {
	settings repository.SettingRepository
}

func NewSettingUpdateCounter(settings repository.SettingRepository) *SettingUpdateCounter {
	return &SettingUpdateCounter{settings: settings}
}

func (c *SettingUpdateCounter) PendingUpdates(ctx context.Context) (int, error) {
	value, err := c.settings.Get(ctx, "pending_core_updates")
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, nil
	}
	return n, nil
}
