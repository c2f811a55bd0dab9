package goals

import (
	"context"
	"testing"
	"time"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

func periodsOf(n int) []domain.Period {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	periods := make([]domain.Period, 0, n)
	for i := 0; i < n; i++ {
		cur := start.AddDate(0, 0, 7*i)
		periods = append(periods, domain.Period{
			Key:   domain.WeekBucket(cur),
			Start: cur,
			End:   cur.AddDate(0, 0, 7),
		})
	}
	return periods
}

func achievedPattern(pattern []bool) AchievedFunc {
	i := 0
	return func(ctx context.Context, period domain.Period) (bool, error) {
		ok := pattern[i]
		i++
		return ok, nil
	}
}

func TestStreak(t *testing.T) {
	cases := []struct {
		name         string
		pattern      []bool
		allowedBreak int
		wantCurrent  int
		wantMax      int
	}{
		{
			name:         "all achieved",
			pattern:      []bool{true, true, true, true},
			allowedBreak: 0,
			wantCurrent:  4,
			wantMax:      4,
		},
		{
			name:         "miss resets with no budget",
			pattern:      []bool{true, true, false, true},
			allowedBreak: 0,
			wantCurrent:  1,
			wantMax:      2,
		},
		{
			name:         "single break survives with budget one",
			pattern:      []bool{true, true, false, true},
			allowedBreak: 1,
			wantCurrent:  3,
			wantMax:      3,
		},
		{
			name:         "consecutive misses exhaust budget",
			pattern:      []bool{true, true, false, false, true},
			allowedBreak: 1,
			wantCurrent:  1,
			wantMax:      2,
		},
		{
			name:         "budget restores after achievement",
			pattern:      []bool{true, false, true, false, true},
			allowedBreak: 1,
			wantCurrent:  3,
			wantMax:      3,
		},
		{
			name:         "empty history",
			pattern:      nil,
			allowedBreak: 2,
			wantCurrent:  0,
			wantMax:      0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Streak(context.Background(), periodsOf(len(tc.pattern)), achievedPattern(tc.pattern), tc.allowedBreak)
			if err != nil {
				t.Fatalf("Streak: %v", err)
			}
			if result.CurrentStreak != tc.wantCurrent {
				t.Errorf("current streak = %d, want %d", result.CurrentStreak, tc.wantCurrent)
			}
			if result.MaxStreak != tc.wantMax {
				t.Errorf("max streak = %d, want %d", result.MaxStreak, tc.wantMax)
			}
		})
	}
}

type countingActivityRepo struct {
	activities []domain.Activity
	queries    int
}

func (r *countingActivityRepo) Append(ctx context.Context, activity *domain.Activity) error {
	r.activities = append(r.activities, *activity)
	return nil
}

func (r *countingActivityRepo) Get(ctx context.Context, id string) (*domain.Activity, error) {
	return nil, domain.ErrActivityNotFound
}

func (r *countingActivityRepo) Query(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	r.queries++
	var out []domain.Activity
	for _, a := range r.activities {
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if !filter.From.IsZero() && a.OccurredAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !a.OccurredAt.Before(filter.To) {
			continue
		}
		out = append(out, a)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *countingActivityRepo) Delete(ctx context.Context, ids []string) error { return nil }

func TestEvaluatorFor(t *testing.T) {
	repo := &countingActivityRepo{}
	now := time.Now().UTC()

	// Publish something every week for the last three weeks.
	for i := 0; i < 3; i++ {
		repo.activities = append(repo.activities, domain.Activity{
			Category:   domain.CategoryContent,
			Type:       domain.ActivityPublish,
			OccurredAt: now.AddDate(0, 0, -7*i),
		})
	}

	evaluator := New(repo, nil)
	spec := GoalSpec{
		Category: domain.CategoryContent,
		Type:     domain.ActivityPublish,
		From:     now.AddDate(0, 0, -21),
		Interval: IntervalWeekly,
	}

	result, err := evaluator.For(context.Background(), spec)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if result.CurrentStreak < 3 {
		t.Errorf("current streak = %d, want at least 3", result.CurrentStreak)
	}

	t.Run("closed periods cached", func(t *testing.T) {
		before := repo.queries
		if _, err := evaluator.For(context.Background(), spec); err != nil {
			t.Fatalf("For: %v", err)
		}
		// Every closed period hits the cache; only the current week re-queries.
		requeried := repo.queries - before
		if requeried > 1 {
			t.Errorf("re-evaluation issued %d queries, want at most 1", requeried)
		}
	})
}
