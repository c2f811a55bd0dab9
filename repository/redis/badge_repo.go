package redis

import (
	"context"
	"encoding/json"
	"sort"

	redislib "github.com/redis/go-redis/v9"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

const badgesKey = "badges"

type badgeRepository struct {
	client *redislib.Client
}

// NewBadgeRepository creates a Redis-backed badge store. Badges live in one
// JSON map keyed by badge id, consistent with the other whole-collection
// values.
func NewBadgeRepository(client *redislib.Client) repository.BadgeRepository {
	return &badgeRepository{client: client}
}

func (r *badgeRepository) Get(ctx context.Context, id string) (*domain.Badge, error) {
	badges, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	badge, ok := badges[id]
	if !ok {
		return nil, domain.ErrBadgeNotFound
	}
	return &badge, nil
}

func (r *badgeRepository) Save(ctx context.Context, badge *domain.Badge) error {
	if badge == nil || badge.ID == "" {
		return domain.ErrInvalidPayload
	}
	badges, err := r.loadAll(ctx)
	if err != nil {
		return err
	}
	badges[badge.ID] = *badge

	payload, err := json.Marshal(badges)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, badgesKey, payload, 0).Err()
}

func (r *badgeRepository) List(ctx context.Context) ([]domain.Badge, error) {
	badges, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Badge, 0, len(badges))
	for _, b := range badges {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *badgeRepository) loadAll(ctx context.Context) (map[string]domain.Badge, error) {
	result, err := r.client.Get(ctx, badgesKey).Result()
	if err != nil {
		if err == redislib.Nil {
			return map[string]domain.Badge{}, nil
		}
		return nil, err
	}
	badges := make(map[string]domain.Badge)
	if err := json.Unmarshal([]byte(result), &badges); err != nil {
		return nil, err
	}
	return badges, nil
}
