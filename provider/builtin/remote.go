package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/pkg/taskid"
	"github.com/sitepulse/backend/repository"
)

// RemoteTask is one suggestion from an external feed.
type RemoteTask struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Points int    `json:"points,omitempty"`
}

// Feed supplies remote task suggestions.
type Feed interface {
	Fetch(ctx context.Context) ([]RemoteTask, error)
}

// Remote turns feed suggestions into pending tasks. There is nothing to
// evaluate programmatically: the user confirms completion through the host,
// which calls the lifecycle manager's CompleteTask.
type Remote struct {
	base
	feed Feed
}

func NewRemote(feed Feed) *Remote {
	return &Remote{
		base: base{
			id:       taskid.RemoteProvider,
			category: domain.CategoryMaintenance,
			points:   1,
		},
		feed: feed,
	}
}

func (p *Remote) Inject(ctx context.Context) ([]domain.TaskInstance, error) {
	remote, err := p.feed.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.TaskInstance, 0, len(remote))
	for _, rt := range remote {
		points := rt.Points
		if points <= 0 {
			points = p.points
		}
		tasks = append(tasks, domain.TaskInstance{
			TaskID:      fmt.Sprintf("%s-%d", p.id, rt.ID),
			Points:      points,
			Priority:    domain.PriorityLow,
			Dismissable: true,
			Extra: map[string]any{
				taskid.KeyRemoteTaskID: rt.ID,
				"title":                rt.Title,
			},
		})
	}
	return tasks, nil
}

func (p *Remote) Evaluate(ctx context.Context, task domain.TaskInstance) (bool, error) {
	return false, nil
}

func (p *Remote) CelebratesCompletion() bool { return true }

// DismissalWindow shortens the default suppression: remote feeds rotate, so a
// dismissed suggestion may return after a month.
func (p *Remote) DismissalWindow() time.Duration {
	return 30 * 24 * time.Hour
}

// SettingFeed reads remote tasks the host mirrors into the settings store as
// a JSON array.
type SettingFeed struct {
	settings repository.SettingRepository
}

func NewSettingFeed(settings repository.SettingRepository) *SettingFeed {
	return &SettingFeed{settings: settings}
}

func (f *SettingFeed) Fetch(ctx context.Context) ([]RemoteTask, error) {
	raw, err := f.settings.Get(ctx, "remote_tasks")
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}
	var tasks []RemoteTask
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
