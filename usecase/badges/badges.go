// Package badges aggregates suggested-task points into monthly badge
// progress, letting an overachieving future month retroactively complete a
// missed one.
package badges

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
	"github.com/sitepulse/backend/usecase/scoring"
)

// maxLookahead caps the excess-rollover recursion: a badge may borrow from at
// most the next two months, and borrowed months never roll over themselves.
const maxLookahead = 2

// maxRemaining keeps the "N points to go" nudge small enough to act on.
const maxRemaining = 10

type Engine struct {
	badges     repository.BadgeRepository
	activities repository.ActivityRepository
	calc       *scoring.Calculator
	logger     *zap.Logger
}

func New(badges repository.BadgeRepository, activities repository.ActivityRepository, calc *scoring.Calculator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		badges:     badges,
		activities: activities,
		calc:       calc,
		logger:     logger,
	}
}

// Progress returns the badge's progress tuple, computing and memoizing it as
// needed. Terminal memos are returned unchanged, whatever the event log says
// now.
func (e *Engine) Progress(ctx context.Context, badgeID string) (domain.BadgeProgress, error) {
	badge, err := e.badges.Get(ctx, badgeID)
	if err != nil {
		return domain.BadgeProgress{}, err
	}
	if badge.Terminal() {
		return *badge.Saved, nil
	}

	own, err := e.points(ctx, badge, 0)
	if err != nil {
		return domain.BadgeProgress{}, err
	}
	total, err := e.points(ctx, badge, maxLookahead)
	if err != nil {
		return domain.BadgeProgress{}, err
	}

	progress := domain.BadgeProgress{
		Progress:  clamp(100*total/badge.TargetPoints, 0, 100),
		Remaining: clamp(badge.TargetPoints-total, 0, maxRemaining),
		Points:    total,
		Terminal:  own >= badge.TargetPoints,
		SavedAt:   time.Now().UTC(),
	}

	badge.Saved = &progress
	if err := e.badges.Save(ctx, badge); err != nil {
		e.logger.Warn("badge memo write failed", zap.String("badge_id", badge.ID), zap.Error(err))
	}
	return progress, nil
}

// points sums the badge month's own suggested-task points and, when lookahead
// is positive and the month fell short, borrows excess from up to that many
// future months. Borrowed months are scored with lookahead 0, so excess is
// never counted twice. The bar for borrowing rises with distance: the i-th
// future month must clear i times its own target first.
func (e *Engine) points(ctx context.Context, badge *domain.Badge, lookahead int) (int, error) {
	own, err := e.ownPoints(ctx, badge)
	if err != nil {
		return 0, err
	}
	if lookahead <= 0 || own >= badge.TargetPoints {
		return own, nil
	}

	total := own
	for i := 1; i <= lookahead; i++ {
		future, err := e.badges.Get(ctx, futureBadgeID(badge, i))
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				continue
			}
			return 0, err
		}
		futureOwn, err := e.points(ctx, future, 0)
		if err != nil {
			return 0, err
		}
		if excess := futureOwn - i*future.TargetPoints; excess > 0 {
			total += excess
		}
	}
	return total, nil
}

func (e *Engine) ownPoints(ctx context.Context, badge *domain.Badge) (int, error) {
	activities, err := e.activities.Query(ctx, repository.ActivityFilter{
		Category: domain.CategorySuggestedTask,
		From:     badge.MonthStart(),
		To:       badge.MonthEnd(),
	})
	if err != nil {
		return 0, err
	}

	sum := 0
	for _, a := range activities {
		points, err := e.calc.Points(ctx, a, a.OccurredAt)
		if err != nil {
			return 0, err
		}
		sum += points
	}
	return sum, nil
}

// EnsureMonthly creates any missing monthly badges from the start month
// through the horizon, with the given target.
func (e *Engine) EnsureMonthly(ctx context.Context, from time.Time, horizonMonths, target int) error {
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i <= horizonMonths; i++ {
		id := domain.MonthlyBadgeID(cur.Year(), cur.Month())
		if _, err := e.badges.Get(ctx, id); err == nil {
			cur = cur.AddDate(0, 1, 0)
			continue
		} else if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return err
		}

		badge := &domain.Badge{
			ID:           id,
			Year:         cur.Year(),
			Month:        cur.Month(),
			TargetPoints: target,
		}
		if err := e.badges.Save(ctx, badge); err != nil {
			return err
		}
		cur = cur.AddDate(0, 1, 0)
	}
	return nil
}

// List returns all badges, refreshing the non-terminal memos.
func (e *Engine) List(ctx context.Context) ([]domain.Badge, error) {
	badges, err := e.badges.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range badges {
		progress, err := e.Progress(ctx, badges[i].ID)
		if err != nil {
			return nil, err
		}
		badges[i].Saved = &progress
	}
	return badges, nil
}

func futureBadgeID(badge *domain.Badge, monthsAhead int) string {
	t := badge.MonthStart().AddDate(0, monthsAhead, 0)
	return domain.MonthlyBadgeID(t.Year(), t.Month())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
