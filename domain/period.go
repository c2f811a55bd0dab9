package domain

import (
	"fmt"
	"time"
)

// WeekBucket returns the ISO year-week bucket for t, e.g. "202449".
func WeekBucket(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d%02d", year, week)
}

// MonthBucket returns the year-month bucket for t, e.g. "202411".
func MonthBucket(t time.Time) string {
	return fmt.Sprintf("%04d%02d", t.Year(), int(t.Month()))
}

// DayBucket returns the day bucket used to key score-cache entries.
func DayBucket(t time.Time) string {
	return t.UTC().Format("20060102")
}

// Period is a half-open [Start, End) calendar range with its bucket key.
type Period struct {
	Key   string
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// WeeklyPeriods returns the ISO weeks covering [from, to], oldest first.
func WeeklyPeriods(from, to time.Time) []Period {
	start := startOfISOWeek(from)
	var periods []Period
	for cur := start; !cur.After(to); cur = cur.AddDate(0, 0, 7) {
		periods = append(periods, Period{
			Key:   WeekBucket(cur),
			Start: cur,
			End:   cur.AddDate(0, 0, 7),
		})
	}
	return periods
}

// MonthlyPeriods returns the calendar months covering [from, to], oldest first.
func MonthlyPeriods(from, to time.Time) []Period {
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	var periods []Period
	for !cur.After(to) {
		next := cur.AddDate(0, 1, 0)
		periods = append(periods, Period{
			Key:   MonthBucket(cur),
			Start: cur,
			End:   next,
		})
		cur = next
	}
	return periods
}

func startOfISOWeek(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return t.AddDate(0, 0, 1-weekday)
}
