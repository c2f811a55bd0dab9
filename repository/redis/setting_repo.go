package redis

import (
	"context"

	redislib "github.com/redis/go-redis/v9"

	"github.com/sitepulse/backend/repository"
)

type settingRepository struct {
	client *redislib.Client
	prefix string
}

// NewSettingRepository creates a Redis-backed site-settings store.
func NewSettingRepository(client *redislib.Client) repository.SettingRepository {
	return &settingRepository{client: client, prefix: "setting:"}
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	result, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if err == redislib.Nil {
			return "", nil
		}
		return "", err
	}
	return result, nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}
