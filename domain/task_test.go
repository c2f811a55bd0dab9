package domain

import (
	"testing"
	"time"
)

func TestTaskInstanceMerge(t *testing.T) {
	t.Run("existing values win", func(t *testing.T) {
		existing := TaskInstance{
			TaskID:        "update-core-202449",
			ProviderID:    "update-core",
			Points:        5,
			Priority:      PriorityHigh,
			CreatedPeriod: "202448",
			Extra:         map[string]any{"note": "keep"},
		}
		existing.Merge(TaskInstance{
			ProviderID:    "other",
			Points:        1,
			Priority:      PriorityLow,
			CreatedPeriod: "202449",
			Extra:         map[string]any{"note": "overwrite", "added": true},
		})

		if existing.ProviderID != "update-core" {
			t.Errorf("provider id = %q, want update-core", existing.ProviderID)
		}
		if existing.Points != 5 {
			t.Errorf("points = %d, want 5", existing.Points)
		}
		if existing.CreatedPeriod != "202448" {
			t.Errorf("created period = %q, want 202448", existing.CreatedPeriod)
		}
		if existing.Extra["note"] != "keep" {
			t.Errorf("extra note = %v, want keep", existing.Extra["note"])
		}
		if existing.Extra["added"] != true {
			t.Error("new extra keys should be filled in")
		}
	})

	t.Run("zero fields filled from other", func(t *testing.T) {
		existing := TaskInstance{TaskID: "create-post-202449"}
		existing.Merge(TaskInstance{
			ProviderID:  "create-post",
			Category:    CategoryContent,
			Points:      2,
			Dismissable: true,
			Target:      &TargetRef{Kind: TargetPost, ID: 7},
		})

		if existing.ProviderID != "create-post" || existing.Points != 2 {
			t.Errorf("merge did not fill zero fields: %+v", existing)
		}
		if !existing.Dismissable {
			t.Error("dismissable should be filled")
		}
		if existing.Target == nil || existing.Target.ID != 7 {
			t.Errorf("target = %+v, want post 7", existing.Target)
		}
	})
}

func TestIsCompleted(t *testing.T) {
	cases := []struct {
		status TaskStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusSnoozed, false},
		{StatusCompleted, true},
		{StatusPendingCelebration, true},
	}
	for _, tc := range cases {
		task := TaskInstance{Status: tc.status}
		if got := task.IsCompleted(); got != tc.want {
			t.Errorf("IsCompleted(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestSnoozeDuration(t *testing.T) {
	from := time.Date(2024, 12, 4, 12, 0, 0, 0, time.UTC)

	t.Run("resume times", func(t *testing.T) {
		cases := []struct {
			duration SnoozeDuration
			want     time.Time
		}{
			{SnoozeWeek, from.AddDate(0, 0, 7)},
			{SnoozeMonth, from.AddDate(0, 1, 0)},
			{SnoozeQuarter, from.AddDate(0, 3, 0)},
			{SnoozeHalfYear, from.AddDate(0, 6, 0)},
			{SnoozeYear, from.AddDate(1, 0, 0)},
		}
		for _, tc := range cases {
			got := tc.duration.ResumeAt(from)
			if got == nil || !got.Equal(tc.want) {
				t.Errorf("ResumeAt(%s) = %v, want %v", tc.duration, got, tc.want)
			}
		}
	})

	t.Run("forever never resumes", func(t *testing.T) {
		if got := SnoozeForever.ResumeAt(from); got != nil {
			t.Errorf("ResumeAt(forever) = %v, want nil", got)
		}
	})

	t.Run("validity", func(t *testing.T) {
		if !SnoozeWeek.Valid() || !SnoozeForever.Valid() {
			t.Error("vocabulary durations should be valid")
		}
		if SnoozeDuration("2-weeks").Valid() {
			t.Error("unknown duration should be invalid")
		}
	})
}

func TestDismissalRecordExpired(t *testing.T) {
	now := time.Date(2024, 12, 4, 12, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour

	t.Run("current period never expires", func(t *testing.T) {
		rec := DismissalRecord{
			DismissedPeriod: WeekBucket(now),
			DismissedAt:     now.Add(-60 * 24 * time.Hour),
		}
		if rec.Expired(now, window, WeekBucket(now)) {
			t.Error("record from the current period must not expire")
		}
	})

	t.Run("old record expires after window", func(t *testing.T) {
		rec := DismissalRecord{
			DismissedPeriod: "202410",
			DismissedAt:     now.Add(-31 * 24 * time.Hour),
		}
		if !rec.Expired(now, window, WeekBucket(now)) {
			t.Error("record past the window should expire")
		}
	})

	t.Run("recent record survives", func(t *testing.T) {
		rec := DismissalRecord{
			DismissedPeriod: "202447",
			DismissedAt:     now.Add(-10 * 24 * time.Hour),
		}
		if rec.Expired(now, window, WeekBucket(now)) {
			t.Error("record inside the window should survive")
		}
	})
}
