package repository

import "context"

// ScoreCache memoizes computed point values per (activity id, reference day).
// For a fixed key the value is stable and must not be recomputed; entries are
// recomputable from the event log, so eviction is always safe.
type ScoreCache interface {
	Get(ctx context.Context, activityID, dayKey string) (points int, ok bool, err error)
	Set(ctx context.Context, activityID, dayKey string, points int) error
}
