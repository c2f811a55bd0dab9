package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/sitepulse/backend/repository"
)

type scoreCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewScoreCache creates a Redis-backed score memo. Entries expire after the
// TTL; they are recomputable from the event log, so expiry is safe.
func NewScoreCache(client *redislib.Client, ttl time.Duration) repository.ScoreCache {
	if ttl <= 0 {
		ttl = 45 * 24 * time.Hour // past the 30-day decay window
	}
	return &scoreCache{
		client: client,
		prefix: "score:",
		ttl:    ttl,
	}
}

func (c *scoreCache) Get(ctx context.Context, activityID, dayKey string) (int, bool, error) {
	result, err := c.client.Get(ctx, c.key(activityID, dayKey)).Result()
	if err != nil {
		if err == redislib.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	points, err := strconv.Atoi(result)
	if err != nil {
		return 0, false, nil
	}
	return points, true, nil
}

func (c *scoreCache) Set(ctx context.Context, activityID, dayKey string, points int) error {
	return c.client.Set(ctx, c.key(activityID, dayKey), strconv.Itoa(points), c.ttl).Err()
}

func (c *scoreCache) key(activityID, dayKey string) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, activityID, dayKey)
}
