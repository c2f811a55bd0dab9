package domain

import (
	"fmt"
	"time"
)

// Badge is one calendar month's maintenance target.
type Badge struct {
	ID           string         `json:"id"`
	Year         int            `json:"year"`
	Month        time.Month     `json:"month"`
	TargetPoints int            `json:"target_points"`
	Saved        *BadgeProgress `json:"saved,omitempty"`
}

// BadgeProgress is the memoized result of a progress computation. A result
// is terminal only when the month's own points reached the target; rolled-up
// 100% results stay refreshable. Terminal memos are never recomputed.
type BadgeProgress struct {
	Progress  int       `json:"progress"` // 0..100
	Remaining int       `json:"remaining"`
	Points    int       `json:"points"`
	Terminal  bool      `json:"terminal,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

// Terminal reports whether the saved progress is final.
func (b *Badge) Terminal() bool {
	return b != nil && b.Saved != nil && b.Saved.Terminal
}

// MonthStart returns the first instant of the badge's month in UTC.
func (b *Badge) MonthStart() time.Time {
	return time.Date(b.Year, b.Month, 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the first instant of the following month in UTC.
func (b *Badge) MonthEnd() time.Time {
	return b.MonthStart().AddDate(0, 1, 0)
}

// MonthlyBadgeID builds the canonical id for a month's badge.
func MonthlyBadgeID(year int, month time.Month) string {
	return fmt.Sprintf("monthly-%04d%02d", year, int(month))
}
