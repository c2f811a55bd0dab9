package bolt

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/repository"
)

var (
	keyPending    = []byte("pending")
	keyDismissals = []byte("dismissals")
	keyBadges     = []byte("badges")
)

type pendingTaskRepository struct {
	store *Store
}

// NewPendingTaskRepository returns a bolt-backed pending-task set.
func NewPendingTaskRepository(store *Store) repository.PendingTaskRepository {
	return &pendingTaskRepository{store: store}
}

func (r *pendingTaskRepository) LoadAll(ctx context.Context) ([]domain.TaskInstance, error) {
	raw, err := r.store.getValue(bucketCollections, keyPending)
	if err != nil || raw == nil {
		return nil, err
	}
	var tasks []domain.TaskInstance
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *pendingTaskRepository) SaveAll(ctx context.Context, tasks []domain.TaskInstance) error {
	if tasks == nil {
		tasks = []domain.TaskInstance{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return r.store.putValue(bucketCollections, keyPending, payload)
}

type dismissalRepository struct {
	store *Store
}

// NewDismissalRepository returns a bolt-backed dismissal store.
func NewDismissalRepository(store *Store) repository.DismissalRepository {
	return &dismissalRepository{store: store}
}

func (r *dismissalRepository) LoadAll(ctx context.Context) (map[string]domain.DismissalRecord, error) {
	raw, err := r.store.getValue(bucketCollections, keyDismissals)
	if err != nil {
		return nil, err
	}
	records := make(map[string]domain.DismissalRecord)
	if raw == nil {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *dismissalRepository) SaveAll(ctx context.Context, records map[string]domain.DismissalRecord) error {
	if records == nil {
		records = map[string]domain.DismissalRecord{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return r.store.putValue(bucketCollections, keyDismissals, payload)
}

type badgeRepository struct {
	store *Store
}

// NewBadgeRepository returns a bolt-backed badge store.
func NewBadgeRepository(store *Store) repository.BadgeRepository {
	return &badgeRepository{store: store}
}

func (r *badgeRepository) Get(ctx context.Context, id string) (*domain.Badge, error) {
	badges, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	badge, ok := badges[id]
	if !ok {
		return nil, domain.ErrBadgeNotFound
	}
	return &badge, nil
}

func (r *badgeRepository) Save(ctx context.Context, badge *domain.Badge) error {
	if badge == nil || badge.ID == "" {
		return domain.ErrInvalidPayload
	}
	badges, err := r.loadAll(ctx)
	if err != nil {
		return err
	}
	badges[badge.ID] = *badge

	payload, err := json.Marshal(badges)
	if err != nil {
		return err
	}
	return r.store.putValue(bucketCollections, keyBadges, payload)
}

func (r *badgeRepository) List(ctx context.Context) ([]domain.Badge, error) {
	badges, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Badge, 0, len(badges))
	for _, b := range badges {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *badgeRepository) loadAll(ctx context.Context) (map[string]domain.Badge, error) {
	raw, err := r.store.getValue(bucketCollections, keyBadges)
	if err != nil {
		return nil, err
	}
	badges := make(map[string]domain.Badge)
	if raw == nil {
		return badges, nil
	}
	if err := json.Unmarshal(raw, &badges); err != nil {
		return nil, err
	}
	return badges, nil
}
