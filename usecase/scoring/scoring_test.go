package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sitepulse/backend/domain"
)

type fakeScoreCache struct {
	entries map[string]int
	sets    int
}

func newFakeScoreCache() *fakeScoreCache {
	return &fakeScoreCache{entries: make(map[string]int)}
}

func (c *fakeScoreCache) Get(ctx context.Context, activityID, dayKey string) (int, bool, error) {
	points, ok := c.entries[activityID+":"+dayKey]
	return points, ok, nil
}

func (c *fakeScoreCache) Set(ctx context.Context, activityID, dayKey string, points int) error {
	c.entries[activityID+":"+dayKey] = points
	c.sets++
	return nil
}

type fakeTargets struct {
	missing map[int64]bool
	err     error
}

func (f *fakeTargets) Exists(ctx context.Context, ref domain.TargetRef) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.missing[ref.ID], nil
}

func contentActivity(id, activityType string, occurredAt time.Time) domain.Activity {
	return domain.Activity{
		ID:         id,
		Category:   domain.CategoryContent,
		Type:       activityType,
		OccurredAt: occurredAt,
		TargetID:   "7",
	}
}

func TestContentDecay(t *testing.T) {
	ref := time.Date(2024, 12, 4, 12, 0, 0, 0, time.UTC)
	calc := New(DefaultConfig(), nil, &fakeTargets{}, nil, nil)

	cases := []struct {
		name    string
		ageDays int
		want    int
	}{
		{"fresh gets full credit", 0, 50},
		{"day five still full", 5, 50},
		{"day seven starts decay", 7, 38},
		{"day twenty decayed", 20, 17},
		{"day twenty-nine nearly gone", 29, 2},
		{"day thirty is zero", 30, 0},
		{"day ninety stays zero", 90, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := contentActivity("", domain.ActivityPublish, ref.AddDate(0, 0, -tc.ageDays))
			got, err := calc.Points(context.Background(), a, ref)
			if err != nil {
				t.Fatalf("Points: %v", err)
			}
			if got != tc.want {
				t.Errorf("points at age %d = %d, want %d", tc.ageDays, got, tc.want)
			}
		})
	}

	t.Run("monotonically non-increasing", func(t *testing.T) {
		prev := 51
		for age := 0; age <= 35; age++ {
			a := contentActivity("", domain.ActivityPublish, ref.AddDate(0, 0, -age))
			got, err := calc.Points(context.Background(), a, ref)
			if err != nil {
				t.Fatalf("Points: %v", err)
			}
			if got > prev {
				t.Fatalf("points increased at age %d: %d > %d", age, got, prev)
			}
			prev = got
		}
	})
}

func TestContentBaseWeights(t *testing.T) {
	ref := time.Date(2024, 12, 4, 12, 0, 0, 0, time.UTC)
	calc := New(DefaultConfig(), nil, &fakeTargets{}, nil, nil)

	cases := map[string]int{
		domain.ActivityPublish: 50,
		domain.ActivityUpdate:  10,
		domain.ActivityDelete:  5,
		"unknown-type":         0,
	}
	for activityType, want := range cases {
		a := contentActivity("", activityType, ref)
		got, err := calc.Points(context.Background(), a, ref)
		if err != nil {
			t.Fatalf("Points(%s): %v", activityType, err)
		}
		if got != want {
			t.Errorf("points(%s) = %d, want %d", activityType, got, want)
		}
	}
}

func TestDeletedTarget(t *testing.T) {
	ref := time.Date(2024, 12, 4, 12, 0, 0, 0, time.UTC)
	targets := &fakeTargets{missing: map[int64]bool{7: true}}
	calc := New(DefaultConfig(), nil, targets, nil, nil)

	t.Run("publish of a vanished post scores zero", func(t *testing.T) {
		a := contentActivity("", domain.ActivityPublish, ref)
		got, err := calc.Points(context.Background(), a, ref)
		if err != nil {
			t.Fatalf("Points: %v", err)
		}
		if got != 0 {
			t.Errorf("points = %d, want 0", got)
		}
	})

	t.Run("deletion scores on the act itself", func(t *testing.T) {
		a := contentActivity("", domain.ActivityDelete, ref)
		got, err := calc.Points(context.Background(), a, ref)
		if err != nil {
			t.Fatalf("Points: %v", err)
		}
		if got != 5 {
			t.Errorf("points = %d, want 5", got)
		}
	})

	t.Run("non-numeric target is trusted", func(t *testing.T) {
		a := contentActivity("", domain.ActivityPublish, ref)
		a.TargetID = "about-page"
		got, err := calc.Points(context.Background(), a, ref)
		if err != nil {
			t.Fatalf("Points: %v", err)
		}
		if got != 50 {
			t.Errorf("points = %d, want 50", got)
		}
	})

	t.Run("resolver failure propagates", func(t *testing.T) {
		failing := New(DefaultConfig(), nil, &fakeTargets{err: errors.New("index down")}, nil, nil)
		a := contentActivity("", domain.ActivityPublish, ref)
		if _, err := failing.Points(context.Background(), a, ref); err == nil {
			t.Error("expected error from target resolver")
		}
	})
}

func TestMaintenancePoints(t *testing.T) {
	ref := time.Date(2024, 12, 4, 12, 0, 0, 0, time.UTC)
	calc := New(DefaultConfig(), nil, nil, nil, nil)

	t.Run("binary inside full credit window", func(t *testing.T) {
		a := domain.Activity{Category: domain.CategoryMaintenance, Type: "core_update", OccurredAt: ref.AddDate(0, 0, -3)}
		got, err := calc.Points(context.Background(), a, ref)
		if err != nil {
			t.Fatalf("Points: %v", err)
		}
		if got != 10 {
			t.Errorf("points = %d, want 10", got)
		}
	})

	t.Run("zero once stale", func(t *testing.T) {
		a := domain.Activity{Category: domain.CategoryMaintenance, Type: "core_update", OccurredAt: ref.AddDate(0, 0, -8)}
		got, err := calc.Points(context.Background(), a, ref)
		if err != nil {
			t.Fatalf("Points: %v", err)
		}
		if got != 0 {
			t.Errorf("points = %d, want 0", got)
		}
	})
}

func TestSuggestedTaskPoints(t *testing.T) {
	ref := time.Date(2024, 12, 4, 12, 0, 0, 0, time.UTC)
	providerPoints := func(providerID string) (int, bool) {
		if providerID == "update-core" {
			return 3, true
		}
		return 0, false
	}
	calc := New(DefaultConfig(), nil, nil, providerPoints, nil)

	t.Run("provider declared points", func(t *testing.T) {
		a := domain.Activity{Category: domain.CategorySuggestedTask, Type: "update-core", OccurredAt: ref.AddDate(0, 0, -90)}
		got, err := calc.Points(context.Background(), a, ref)
		if err != nil {
			t.Fatalf("Points: %v", err)
		}
		// No decay for suggested tasks, however old.
		if got != 3 {
			t.Errorf("points = %d, want 3", got)
		}
	})

	t.Run("unknown provider falls back to default", func(t *testing.T) {
		a := domain.Activity{Category: domain.CategorySuggestedTask, Type: "retired-provider", OccurredAt: ref}
		got, err := calc.Points(context.Background(), a, ref)
		if err != nil {
			t.Fatalf("Points: %v", err)
		}
		if got != 1 {
			t.Errorf("points = %d, want default 1", got)
		}
	})
}

func TestMemoization(t *testing.T) {
	ref := time.Date(2024, 12, 4, 12, 0, 0, 0, time.UTC)
	cache := newFakeScoreCache()
	targets := &fakeTargets{}
	calc := New(DefaultConfig(), cache, targets, nil, nil)

	a := contentActivity("act-1", domain.ActivityPublish, ref.AddDate(0, 0, -2))

	first, err := calc.Points(context.Background(), a, ref)
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if first != 50 {
		t.Fatalf("points = %d, want 50", first)
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}

	// Target vanishes; the memo for the same day must hold.
	targets.missing = map[int64]bool{7: true}
	second, err := calc.Points(context.Background(), a, ref)
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if second != 50 {
		t.Errorf("memoized points = %d, want 50", second)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want still 1", cache.sets)
	}

	// A new reference day recomputes and sees the deletion.
	third, err := calc.Points(context.Background(), a, ref.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if third != 0 {
		t.Errorf("next-day points = %d, want 0", third)
	}
}

func TestBackfilledActivity(t *testing.T) {
	ref := time.Date(2024, 12, 4, 12, 0, 0, 0, time.UTC)
	calc := New(DefaultConfig(), nil, &fakeTargets{}, nil, nil)

	// Activity dated after the reference still scores; age is absolute.
	a := contentActivity("", domain.ActivityPublish, ref.AddDate(0, 0, 2))
	got, err := calc.Points(context.Background(), a, ref)
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if got != 50 {
		t.Errorf("points = %d, want 50", got)
	}
}
