package builtin

import (
	"context"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

// SettingTask is a one-time task that stays open while a site setting is
// empty and completes once the user fills it in.
type SettingTask struct {
	base
	settings   repository.SettingRepository
	settingKey string
	priority   domain.Priority
}

func (p *SettingTask) Inject(ctx context.Context) ([]domain.TaskInstance, error) {
	value, err := p.settings.Get(ctx, p.settingKey)
	if err != nil {
		return nil, err
	}
	if value != "" {
		return nil, nil
	}
	return []domain.TaskInstance{{
		Priority:    p.priority,
		Dismissable: true,
	}}, nil
}

func (p *SettingTask) Evaluate(ctx context.Context, task domain.TaskInstance) (bool, error) {
	value, err := p.settings.Get(ctx, p.settingKey)
	if err != nil {
		return false, err
	}
	return value != "", nil
}

func (p *SettingTask) IsRelevant(ctx context.Context, task domain.TaskInstance) (bool, error) {
	value, err := p.settings.Get(ctx, p.settingKey)
	if err != nil {
		return true, err
	}
	return value == "", nil
}

func (p *SettingTask) CelebratesCompletion() bool { return true }

// NewBlogDescription nags until the site tagline is set.
func NewBlogDescription(settings repository.SettingRepository) *SettingTask {
	return &SettingTask{
		base: base{
			id:       "blog-description",
			category: domain.CategoryContent,
			points:   3,
		},
		settings:   settings,
		settingKey: "blogdescription",
		priority:   domain.PriorityMedium,
	}
}

// NewSiteIcon nags until a site icon is configured.
func NewSiteIcon(settings repository.SettingRepository) *SettingTask {
	return &SettingTask{
		base: base{
			id:       "site-icon",
			category: domain.CategoryContent,
			points:   1,
		},
		settings:   settings,
		settingKey: "site_icon",
		priority:   domain.PriorityLow,
	}
}
