package repository

import (
	"context"
	"time"
)

// SweepGuard rate-limits sweeps that should run at most once per interval.
// ClaimDaily is best effort: two concurrent callers may both succeed, so the
// guarded operation must stay idempotent regardless.
type SweepGuard interface {
	ClaimDaily(ctx context.Context, name string, ttl time.Duration) (bool, error)
}
