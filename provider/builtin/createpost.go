package builtin

import (
	"context"
	"time"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

// CreatePost proposes publishing at least one post every week.
type CreatePost struct {
	base
	activities repository.ActivityRepository
	now        func() time.Time
}

func NewCreatePost(activities repository.ActivityRepository) *CreatePost {
	return &CreatePost{
		base: base{
			id:         "create-post",
			category:   domain.CategoryContent,
			points:     2,
			repetitive: true,
		},
		activities: activities,
		now:        time.Now,
	}
}

func (p *CreatePost) Inject(ctx context.Context) ([]domain.TaskInstance, error) {
	return []domain.TaskInstance{{
		Priority:    domain.PriorityMedium,
		Dismissable: true,
	}}, nil
}

func (p *CreatePost) Evaluate(ctx context.Context, task domain.TaskInstance) (bool, error) {
	published, err := p.activities.Query(ctx, repository.ActivityFilter{
		Category: domain.CategoryContent,
		Type:     domain.ActivityPublish,
		From:     p.weekStart(),
		Limit:    1,
	})
	if err != nil {
		return false, err
	}
	return len(published) > 0, nil
}

func (p *CreatePost) weekStart() time.Time {
	now := p.now().UTC()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := now.Truncate(24 * time.Hour)
	return day.AddDate(0, 0, 1-weekday)
}
