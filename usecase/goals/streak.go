// Package goals computes consecutive-period achievement streaks with a
// configurable break tolerance.
package goals

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

// AchievedFunc reports whether the goal was met in the given period.
type AchievedFunc func(ctx context.Context, period domain.Period) (bool, error)

// Result is a computed streak.
type Result struct {
	CurrentStreak int `json:"current_streak"`
	MaxStreak     int `json:"max_streak"`
}

// Interval selects the period granularity for a goal.
type Interval string

const (
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

// GoalSpec describes a streak query: qualifying activities, date range,
// period granularity, and how many consecutive misses the streak survives.
type GoalSpec struct {
	Category     domain.ActivityCategory
	Type         string
	From         time.Time
	To           time.Time
	Interval     Interval
	AllowedBreak int
}

// Evaluator computes streaks from the event log. Per-period achievement
// results are cached by period key, so re-evaluating a goal does not re-query
// history that cannot change.
type Evaluator struct {
	activities repository.ActivityRepository
	logger     *zap.Logger

	mu       sync.Mutex
	achieved map[string]bool
}

func New(activities repository.ActivityRepository, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		activities: activities,
		logger:     logger,
		achieved:   make(map[string]bool),
	}
}

// Streak walks the periods chronologically, maintaining a break budget.
// An achieved period extends the streak and restores the budget; a miss
// consumes budget while keeping the streak alive, until the budget runs out
// and the streak resets. With allowedBreak 0 any miss resets immediately.
func Streak(ctx context.Context, periods []domain.Period, achieved AchievedFunc, allowedBreak int) (Result, error) {
	if allowedBreak < 0 {
		allowedBreak = 0
	}

	var result Result
	budget := allowedBreak
	for _, period := range periods {
		ok, err := achieved(ctx, period)
		if err != nil {
			return Result{}, err
		}
		if ok {
			result.CurrentStreak++
			budget = allowedBreak
			if result.CurrentStreak > result.MaxStreak {
				result.MaxStreak = result.CurrentStreak
			}
			continue
		}
		if budget > 0 {
			budget--
			continue
		}
		result.CurrentStreak = 0
		budget = allowedBreak
	}
	return result, nil
}

// For evaluates the streak described by spec against the event log.
func (e *Evaluator) For(ctx context.Context, spec GoalSpec) (Result, error) {
	if spec.To.IsZero() {
		spec.To = time.Now().UTC()
	}

	var periods []domain.Period
	switch spec.Interval {
	case IntervalMonthly:
		periods = domain.MonthlyPeriods(spec.From, spec.To)
	default:
		periods = domain.WeeklyPeriods(spec.From, spec.To)
	}

	return Streak(ctx, periods, e.achievedFn(spec), spec.AllowedBreak)
}

func (e *Evaluator) achievedFn(spec GoalSpec) AchievedFunc {
	return func(ctx context.Context, period domain.Period) (bool, error) {
		cacheKey := string(spec.Category) + ":" + spec.Type + ":" + period.Key

		e.mu.Lock()
		if ok, hit := e.achieved[cacheKey]; hit {
			e.mu.Unlock()
			return ok, nil
		}
		e.mu.Unlock()

		activities, err := e.activities.Query(ctx, repository.ActivityFilter{
			Category: spec.Category,
			Type:     spec.Type,
			From:     period.Start,
			To:       period.End,
			Limit:    1,
		})
		if err != nil {
			return false, err
		}
		ok := len(activities) > 0

		// Only closed periods are immutable; the current one may still gain
		// activities.
		if period.End.Before(time.Now().UTC()) {
			e.mu.Lock()
			e.achieved[cacheKey] = ok
			e.mu.Unlock()
		}
		return ok, nil
	}
}
