package redis

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

const dismissalKey = "tasks:dismissals"

type dismissalRepository struct {
	client *redislib.Client
}

// NewDismissalRepository creates a Redis-backed dismissal store.
func NewDismissalRepository(client *redislib.Client) repository.DismissalRepository {
	return &dismissalRepository{client: client}
}

func (r *dismissalRepository) LoadAll(ctx context.Context) (map[string]domain.DismissalRecord, error) {
	result, err := r.client.Get(ctx, dismissalKey).Result()
	if err != nil {
		if err == redislib.Nil {
			return map[string]domain.DismissalRecord{}, nil
		}
		return nil, err
	}

	records := make(map[string]domain.DismissalRecord)
	if err := json.Unmarshal([]byte(result), &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *dismissalRepository) SaveAll(ctx context.Context, records map[string]domain.DismissalRecord) error {
	if records == nil {
		records = map[string]domain.DismissalRecord{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, dismissalKey, payload, 0).Err()
}
