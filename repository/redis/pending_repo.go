package redis

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

const pendingKey = "tasks:pending"

type pendingTaskRepository struct {
	client *redislib.Client
}

// NewPendingTaskRepository creates a Redis-backed pending-task set. The set
// is one JSON value, read and written whole; the last writer wins.
func NewPendingTaskRepository(client *redislib.Client) repository.PendingTaskRepository {
	return &pendingTaskRepository{client: client}
}

func (r *pendingTaskRepository) LoadAll(ctx context.Context) ([]domain.TaskInstance, error) {
	result, err := r.client.Get(ctx, pendingKey).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, nil
		}
		return nil, err
	}

	var tasks []domain.TaskInstance
	if err := json.Unmarshal([]byte(result), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *pendingTaskRepository) SaveAll(ctx context.Context, tasks []domain.TaskInstance) error {
	if tasks == nil {
		tasks = []domain.TaskInstance{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, pendingKey, payload, 0).Err()
}
