package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	boltdb "go.etcd.io/bbolt"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

type activityRepository struct {
	store *Store
}

// NewActivityRepository returns a bolt-backed event log. Keys are built from
// the occurred-at timestamp so cursor order is chronological.
func NewActivityRepository(store *Store) repository.ActivityRepository {
	return &activityRepository{store: store}
}

func (r *activityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	if activity == nil {
		return domain.ErrInvalidPayload
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(activity)
	if err != nil {
		return err
	}
	return r.store.putValue(bucketActivities, activityKey(activity), payload)
}

func (r *activityRepository) Get(ctx context.Context, id string) (*domain.Activity, error) {
	if r.store == nil || r.store.db == nil {
		return nil, boltdb.ErrDatabaseNotOpen
	}

	var found *domain.Activity
	err := r.store.db.View(func(tx *boltdb.Tx) error {
		c := tx.Bucket(bucketActivities).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var a domain.Activity
			if err := json.Unmarshal(v, &a); err != nil {
				continue
			}
			if a.ID == id {
				found = &a
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrActivityNotFound
	}
	return found, nil
}

func (r *activityRepository) Query(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	if r.store == nil || r.store.db == nil {
		return nil, boltdb.ErrDatabaseNotOpen
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10000
	}

	var activities []domain.Activity
	err := r.store.db.View(func(tx *boltdb.Tx) error {
		c := tx.Bucket(bucketActivities).Cursor()
		for k, v := c.First(); k != nil && len(activities) < limit; k, v = c.Next() {
			var a domain.Activity
			if err := json.Unmarshal(v, &a); err != nil {
				continue
			}
			if matches(a, filter) {
				activities = append(activities, a)
			}
		}
		return nil
	})
	return activities, err
}

func (r *activityRepository) Delete(ctx context.Context, ids []string) error {
	if r.store == nil || r.store.db == nil {
		return boltdb.ErrDatabaseNotOpen
	}
	if len(ids) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	return r.store.db.Update(func(tx *boltdb.Tx) error {
		c := tx.Bucket(bucketActivities).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var a domain.Activity
			if err := json.Unmarshal(v, &a); err != nil {
				continue
			}
			if wanted[a.ID] {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func matches(a domain.Activity, filter repository.ActivityFilter) bool {
	if filter.Category != "" && a.Category != filter.Category {
		return false
	}
	if filter.Type != "" && a.Type != filter.Type {
		return false
	}
	if filter.TargetID != "" && a.TargetID != filter.TargetID {
		return false
	}
	if !filter.From.IsZero() && a.OccurredAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !a.OccurredAt.Before(filter.To) {
		return false
	}
	return true
}

func activityKey(a *domain.Activity) []byte {
	return []byte(fmt.Sprintf("%020d_%s", a.OccurredAt.UnixNano(), a.ID))
}
