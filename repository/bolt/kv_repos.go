package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	boltdb "go.etcd.io/bbolt"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

type contentRepository struct {
	store *Store
}

// NewContentRepository returns a bolt-backed content index.
func NewContentRepository(store *Store) repository.ContentRepository {
	return &contentRepository{store: store}
}

func (r *contentRepository) Exists(ctx context.Context, ref domain.TargetRef) (bool, error) {
	raw, err := r.store.getValue(bucketContents, contentKey(ref.Kind, ref.ID))
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

func (r *contentRepository) Save(ctx context.Context, item *repository.ContentItem) error {
	if item == nil || item.Kind == "" || item.ID == 0 {
		return domain.ErrInvalidPayload
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.store.putValue(bucketContents, contentKey(item.Kind, item.ID), payload)
}

func (r *contentRepository) Delete(ctx context.Context, ref domain.TargetRef) error {
	return r.store.deleteValue(bucketContents, contentKey(ref.Kind, ref.ID))
}

func (r *contentRepository) List(ctx context.Context, kind string, limit int) ([]repository.ContentItem, error) {
	if r.store == nil || r.store.db == nil {
		return nil, boltdb.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 100
	}

	var items []repository.ContentItem
	err := r.store.db.View(func(tx *boltdb.Tx) error {
		c := tx.Bucket(bucketContents).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var item repository.ContentItem
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			if item.Kind == kind {
				items = append(items, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func contentKey(kind string, id int64) []byte {
	return []byte(fmt.Sprintf("%s:%d", kind, id))
}

type scoreCache struct {
	store *Store
}

// NewScoreCache returns a bolt-backed score memo. Entries never expire here;
// they are small and recomputable.
func NewScoreCache(store *Store) repository.ScoreCache {
	return &scoreCache{store: store}
}

func (c *scoreCache) Get(ctx context.Context, activityID, dayKey string) (int, bool, error) {
	raw, err := c.store.getValue(bucketScores, scoreKey(activityID, dayKey))
	if err != nil || raw == nil {
		return 0, false, err
	}
	points, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, false, nil
	}
	return points, true, nil
}

func (c *scoreCache) Set(ctx context.Context, activityID, dayKey string, points int) error {
	return c.store.putValue(bucketScores, scoreKey(activityID, dayKey), []byte(strconv.Itoa(points)))
}

func scoreKey(activityID, dayKey string) []byte {
	return []byte(activityID + ":" + dayKey)
}

type sweepGuard struct {
	store *Store
}

// NewSweepGuard returns a bolt-backed sweep guard. The claim check is not
// atomic across processes; both racers may pass, which the idempotent sweeps
// tolerate.
func NewSweepGuard(store *Store) repository.SweepGuard {
	return &sweepGuard{store: store}
}

func (g *sweepGuard) ClaimDaily(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	key := []byte(name)

	raw, err := g.store.getValue(bucketGuards, key)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	if raw != nil {
		if until, err := time.Parse(time.RFC3339, string(raw)); err == nil && now.Before(until) {
			return false, nil
		}
	}
	return true, g.store.putValue(bucketGuards, key, []byte(now.Add(ttl).Format(time.RFC3339)))
}

type settingRepository struct {
	store *Store
}

// NewSettingRepository returns a bolt-backed site-settings store.
func NewSettingRepository(store *Store) repository.SettingRepository {
	return &settingRepository{store: store}
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	raw, err := r.store.getValue(bucketSettings, []byte(key))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	return r.store.putValue(bucketSettings, []byte(key), []byte(value))
}
