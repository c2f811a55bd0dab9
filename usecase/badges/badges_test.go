package badges

import (
	"context"
	"testing"
	"time"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
	"github.com/sitepulse/backend/usecase/scoring"
)

type fakeBadgeRepo struct {
	badges map[string]*domain.Badge
}

func newFakeBadgeRepo() *fakeBadgeRepo {
	return &fakeBadgeRepo{badges: make(map[string]*domain.Badge)}
}

func (r *fakeBadgeRepo) Get(ctx context.Context, id string) (*domain.Badge, error) {
	badge, ok := r.badges[id]
	if !ok {
		return nil, domain.ErrBadgeNotFound
	}
	copied := *badge
	return &copied, nil
}

func (r *fakeBadgeRepo) Save(ctx context.Context, badge *domain.Badge) error {
	copied := *badge
	r.badges[badge.ID] = &copied
	return nil
}

func (r *fakeBadgeRepo) List(ctx context.Context) ([]domain.Badge, error) {
	var out []domain.Badge
	for _, b := range r.badges {
		out = append(out, *b)
	}
	return out, nil
}

type fakeActivityRepo struct {
	activities []domain.Activity
}

func (r *fakeActivityRepo) Append(ctx context.Context, activity *domain.Activity) error {
	r.activities = append(r.activities, *activity)
	return nil
}

func (r *fakeActivityRepo) Get(ctx context.Context, id string) (*domain.Activity, error) {
	for i := range r.activities {
		if r.activities[i].ID == id {
			return &r.activities[i], nil
		}
	}
	return nil, domain.ErrActivityNotFound
}

func (r *fakeActivityRepo) Query(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	var out []domain.Activity
	for _, a := range r.activities {
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.TargetID != "" && a.TargetID != filter.TargetID {
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

func (r *fakeActivityRepo) Delete(ctx context.Context, ids []string) error {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	kept := r.activities[:0]
	for _, a := range r.activities {
		if !wanted[a.ID] {
			kept = append(kept, a)
		}
	}
	r.activities = kept
	return nil
}

// taskPoints emits n one-point suggested-task completions into the month.
func taskPoints(repo *fakeActivityRepo, year int, month time.Month, n int) {
	day := time.Date(year, month, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		repo.activities = append(repo.activities, domain.Activity{
			Category:   domain.CategorySuggestedTask,
			Type:       "update-core",
			OccurredAt: day,
			TargetID:   "update-core",
		})
	}
}

func newTestEngine(badgeRepo *fakeBadgeRepo, activityRepo *fakeActivityRepo) *Engine {
	calc := scoring.New(scoring.DefaultConfig(), nil, nil, func(string) (int, bool) { return 1, true }, nil)
	return New(badgeRepo, activityRepo, calc, nil)
}

func monthBadge(repo *fakeBadgeRepo, year int, month time.Month, target int) string {
	id := domain.MonthlyBadgeID(year, month)
	repo.badges[id] = &domain.Badge{ID: id, Year: year, Month: month, TargetPoints: target}
	return id
}

func TestProgressOwnMonth(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	activityRepo := &fakeActivityRepo{}
	engine := newTestEngine(badgeRepo, activityRepo)

	id := monthBadge(badgeRepo, 2024, time.November, 10)
	taskPoints(activityRepo, 2024, time.November, 6)

	progress, err := engine.Progress(context.Background(), id)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.Points != 6 {
		t.Errorf("points = %d, want 6", progress.Points)
	}
	if progress.Progress != 60 {
		t.Errorf("progress = %d, want 60", progress.Progress)
	}
	if progress.Remaining != 4 {
		t.Errorf("remaining = %d, want 4", progress.Remaining)
	}
	if progress.Terminal {
		t.Error("unfinished month must not be terminal")
	}
}

func TestProgressRemainingClamp(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	activityRepo := &fakeActivityRepo{}
	engine := newTestEngine(badgeRepo, activityRepo)

	// Big target, nothing done: remaining is clamped to a small nudge.
	id := monthBadge(badgeRepo, 2024, time.November, 100)

	progress, err := engine.Progress(context.Background(), id)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if progress.Remaining != 10 {
		t.Errorf("remaining = %d, want clamped 10", progress.Remaining)
	}
	if progress.Progress != 0 {
		t.Errorf("progress = %d, want 0", progress.Progress)
	}
}

func TestProgressRollover(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	activityRepo := &fakeActivityRepo{}
	engine := newTestEngine(badgeRepo, activityRepo)

	nov := monthBadge(badgeRepo, 2024, time.November, 10)
	dec := monthBadge(badgeRepo, 2024, time.December, 10)
	taskPoints(activityRepo, 2024, time.November, 4)
	taskPoints(activityRepo, 2024, time.December, 17)

	t.Run("excess rolls back one month", func(t *testing.T) {
		progress, err := engine.Progress(context.Background(), nov)
		if err != nil {
			t.Fatalf("Progress: %v", err)
		}
		// 4 own + (17 - 1*10) borrowed = 11.
		if progress.Points != 11 {
			t.Errorf("points = %d, want 11", progress.Points)
		}
		if progress.Progress != 100 {
			t.Errorf("progress = %d, want 100", progress.Progress)
		}
		if progress.Remaining != 0 {
			t.Errorf("remaining = %d, want 0", progress.Remaining)
		}
		if progress.Terminal {
			t.Error("borrowed completion must not be terminal")
		}
	})

	t.Run("overachieving month is terminal on its own", func(t *testing.T) {
		progress, err := engine.Progress(context.Background(), dec)
		if err != nil {
			t.Fatalf("Progress: %v", err)
		}
		if progress.Points != 17 {
			t.Errorf("points = %d, want 17", progress.Points)
		}
		if !progress.Terminal {
			t.Error("month past its own target should be terminal")
		}
	})
}

func TestProgressRolloverSecondMonth(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	activityRepo := &fakeActivityRepo{}
	engine := newTestEngine(badgeRepo, activityRepo)

	nov := monthBadge(badgeRepo, 2024, time.November, 10)
	monthBadge(badgeRepo, 2024, time.December, 10)
	jan := monthBadge(badgeRepo, 2025, time.January, 10)
	monthBadge(badgeRepo, 2025, time.February, 10)

	taskPoints(activityRepo, 2024, time.November, 5)
	// December contributes nothing; January must clear twice its target.
	taskPoints(activityRepo, 2025, time.January, 25)

	t.Run("second future month needs double target", func(t *testing.T) {
		progress, err := engine.Progress(context.Background(), nov)
		if err != nil {
			t.Fatalf("Progress: %v", err)
		}
		// 5 own + max(0, 25 - 2*10) = 10.
		if progress.Points != 10 {
			t.Errorf("points = %d, want 10", progress.Points)
		}
		if progress.Progress != 100 {
			t.Errorf("progress = %d, want 100", progress.Progress)
		}
	})

	t.Run("lookahead stops after two months", func(t *testing.T) {
		// February's surplus is out of reach from November.
		taskPoints(activityRepo, 2025, time.February, 40)
		progress, err := engine.Progress(context.Background(), jan)
		if err != nil {
			t.Fatalf("Progress: %v", err)
		}
		// January is terminal on its own; sanity-check it ignores February here.
		if !progress.Terminal {
			t.Error("january should be terminal")
		}
	})
}

func TestTerminalMemoFrozen(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	activityRepo := &fakeActivityRepo{}
	engine := newTestEngine(badgeRepo, activityRepo)

	id := monthBadge(badgeRepo, 2024, time.November, 10)
	taskPoints(activityRepo, 2024, time.November, 12)

	first, err := engine.Progress(context.Background(), id)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if !first.Terminal {
		t.Fatal("expected terminal progress")
	}

	// History mutates afterwards; the memo must not move.
	activityRepo.activities = nil
	second, err := engine.Progress(context.Background(), id)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if second.Points != first.Points || !second.Terminal {
		t.Errorf("terminal memo changed: %+v -> %+v", first, second)
	}
}

func TestEnsureMonthly(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	activityRepo := &fakeActivityRepo{}
	engine := newTestEngine(badgeRepo, activityRepo)

	from := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	if err := engine.EnsureMonthly(context.Background(), from, 2, 10); err != nil {
		t.Fatalf("EnsureMonthly: %v", err)
	}

	for _, id := range []string{"monthly-202411", "monthly-202412", "monthly-202501"} {
		badge, err := badgeRepo.Get(context.Background(), id)
		if err != nil {
			t.Errorf("badge %s missing: %v", id, err)
			continue
		}
		if badge.TargetPoints != 10 {
			t.Errorf("badge %s target = %d, want 10", id, badge.TargetPoints)
		}
	}

	// Idempotent: existing badges keep their target.
	badgeRepo.badges["monthly-202411"].TargetPoints = 20
	if err := engine.EnsureMonthly(context.Background(), from, 2, 10); err != nil {
		t.Fatalf("EnsureMonthly: %v", err)
	}
	if badgeRepo.badges["monthly-202411"].TargetPoints != 20 {
		t.Error("EnsureMonthly overwrote an existing badge")
	}
}
