// Package scoring converts activities into point values as of a reference
// date, applying category-specific decay.
package scoring

import (
	"context"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

// Config holds the decay curve parameters and per-type base weights.
type Config struct {
	PublishPoints     int
	UpdatePoints      int
	DeletePoints      int
	MaintenancePoints int
	DefaultTaskPoints int
	FullCreditDays    int
	DecayWindowDays   int
}

// DefaultConfig returns the stock scoring parameters: full credit for a week,
// linear decay to zero at thirty days.
func DefaultConfig() Config {
	return Config{
		PublishPoints:     50,
		UpdatePoints:      10,
		DeletePoints:      5,
		MaintenancePoints: 10,
		DefaultTaskPoints: 1,
		FullCreditDays:    7,
		DecayWindowDays:   30,
	}
}

// ProviderPoints looks up the declared point value of a task provider.
type ProviderPoints func(providerID string) (int, bool)

// Calculator computes decayed point values, memoized per
// (activity id, reference day).
type Calculator struct {
	cfg            Config
	cache          repository.ScoreCache
	targets        repository.TargetResolver
	providerPoints ProviderPoints
	logger         *zap.Logger
}

func New(cfg Config, cache repository.ScoreCache, targets repository.TargetResolver, providerPoints ProviderPoints, logger *zap.Logger) *Calculator {
	if cfg.DecayWindowDays <= 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{
		cfg:            cfg,
		cache:          cache,
		targets:        targets,
		providerPoints: providerPoints,
		logger:         logger,
	}
}

// Points returns the point value of the activity as of the reference date.
// The result for a given (activity, reference day) pair is stable: once
// memoized it is returned as-is. A target deleted after scoring therefore
// only collapses to zero on the next distinct reference day.
func (c *Calculator) Points(ctx context.Context, activity domain.Activity, reference time.Time) (int, error) {
	dayKey := domain.DayBucket(reference)
	if c.cache != nil && activity.ID != "" {
		if points, ok, err := c.cache.Get(ctx, activity.ID, dayKey); err == nil && ok {
			return points, nil
		}
	}

	points, err := c.compute(ctx, activity, reference)
	if err != nil {
		return 0, err
	}

	if c.cache != nil && activity.ID != "" {
		if err := c.cache.Set(ctx, activity.ID, dayKey, points); err != nil {
			c.logger.Warn("score memo write failed",
				zap.String("activity_id", activity.ID),
				zap.Error(err))
		}
	}
	return points, nil
}

func (c *Calculator) compute(ctx context.Context, activity domain.Activity, reference time.Time) (int, error) {
	switch activity.Category {
	case domain.CategoryContent:
		return c.contentPoints(ctx, activity, reference)
	case domain.CategoryMaintenance:
		if c.ageDays(activity, reference) < c.cfg.FullCreditDays {
			return c.cfg.MaintenancePoints, nil
		}
		return 0, nil
	case domain.CategorySuggestedTask:
		// Type carries the originating provider id; no decay.
		if c.providerPoints != nil {
			if points, ok := c.providerPoints(activity.Type); ok {
				return points, nil
			}
		}
		return c.cfg.DefaultTaskPoints, nil
	default:
		return 0, nil
	}
}

func (c *Calculator) contentPoints(ctx context.Context, activity domain.Activity, reference time.Time) (int, error) {
	var base int
	switch activity.Type {
	case domain.ActivityPublish:
		base = c.cfg.PublishPoints
	case domain.ActivityUpdate:
		base = c.cfg.UpdatePoints
	case domain.ActivityDelete:
		base = c.cfg.DeletePoints
	default:
		return 0, nil
	}

	if exists, err := c.targetExists(ctx, activity); err != nil {
		return 0, err
	} else if !exists {
		return 0, nil
	}

	age := c.ageDays(activity, reference)
	switch {
	case age >= c.cfg.DecayWindowDays:
		return 0, nil
	case age < c.cfg.FullCreditDays:
		return base, nil
	default:
		factor := 1 - float64(age)/float64(c.cfg.DecayWindowDays)
		if factor < 0 {
			factor = 0
		}
		return int(math.Round(float64(base) * factor)), nil
	}
}

func (c *Calculator) targetExists(ctx context.Context, activity domain.Activity) (bool, error) {
	if c.targets == nil || activity.TargetID == "" {
		return true, nil
	}
	// Deletion activities score on the act itself, not the vanished target.
	if activity.Type == domain.ActivityDelete {
		return true, nil
	}
	id, err := strconv.ParseInt(activity.TargetID, 10, 64)
	if err != nil {
		return true, nil
	}
	return c.targets.Exists(ctx, domain.TargetRef{Kind: domain.TargetPost, ID: id})
}

// ageDays is the absolute whole-day difference between the reference date and
// the activity. Backfills may score activities dated after the reference;
// decay is never negative.
func (c *Calculator) ageDays(activity domain.Activity, reference time.Time) int {
	diff := reference.Sub(activity.OccurredAt)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
