package builtin

import (
	"context"
	"strconv"
	"time"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/pkg/taskid"
	"github.com/sitepulse/backend/repository"
)

// ReviewPost proposes revisiting posts that have gone stale. Each task is
// keyed to one post via a detailed task id, so reviewing post 12 and post 34
// are separate tasks with separate dismissals.
type ReviewPost struct {
	base
	contents   repository.ContentRepository
	activities repository.ActivityRepository
	staleAfter time.Duration
	maxTasks   int
	now        func() time.Time
}

func NewReviewPost(contents repository.ContentRepository, activities repository.ActivityRepository) *ReviewPost {
	return &ReviewPost{
		base: base{
			id:         "review-post",
			category:   domain.CategoryContent,
			points:     1,
			repetitive: false,
		},
		contents:   contents,
		activities: activities,
		staleAfter: 6 * 30 * 24 * time.Hour,
		maxTasks:   2,
		now:        time.Now,
	}
}

func (p *ReviewPost) Inject(ctx context.Context) ([]domain.TaskInstance, error) {
	items, err := p.contents.List(ctx, domain.TargetPost, 50)
	if err != nil {
		return nil, err
	}

	cutoff := p.now().UTC().Add(-p.staleAfter)
	var tasks []domain.TaskInstance
	for _, item := range items {
		if !item.CreatedAt.Before(cutoff) {
			continue
		}
		tasks = append(tasks, domain.TaskInstance{
			TaskID: taskid.Encode(taskid.Fields{
				taskid.KeyProviderID: p.id,
				taskid.KeyPostID:     int(item.ID),
			}),
			Priority:    domain.PriorityLow,
			Dismissable: true,
			Target:      &domain.TargetRef{Kind: domain.TargetPost, ID: item.ID},
			Extra:       map[string]any{taskid.KeyPostID: int(item.ID)},
		})
		if len(tasks) == p.maxTasks {
			break
		}
	}
	return tasks, nil
}

// Evaluate is satisfied once the post saw an update this week.
func (p *ReviewPost) Evaluate(ctx context.Context, task domain.TaskInstance) (bool, error) {
	if task.Target == nil {
		return false, nil
	}
	updated, err := p.activities.Query(ctx, repository.ActivityFilter{
		Category: domain.CategoryContent,
		Type:     domain.ActivityUpdate,
		TargetID: strconv.FormatInt(task.Target.ID, 10),
		From:     p.now().UTC().AddDate(0, 0, -7),
		Limit:    1,
	})
	if err != nil {
		return false, err
	}
	return len(updated) > 0, nil
}

func (p *ReviewPost) IsRelevant(ctx context.Context, task domain.TaskInstance) (bool, error) {
	if task.Target == nil {
		return false, nil
	}
	return p.contents.Exists(ctx, *task.Target)
}

func (p *ReviewPost) CelebratesCompletion() bool { return true }
