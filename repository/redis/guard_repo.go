package redis

import (
	"context"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/sitepulse/backend/repository"
)

type sweepGuard struct {
	client *redislib.Client
	prefix string
}

// NewSweepGuard creates a Redis-backed sweep guard using SET NX with a TTL.
func NewSweepGuard(client *redislib.Client) repository.SweepGuard {
	return &sweepGuard{client: client, prefix: "guard:"}
}

func (g *sweepGuard) ClaimDaily(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return g.client.SetNX(ctx, g.prefix+name, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}
