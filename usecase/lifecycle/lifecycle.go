// Package lifecycle orchestrates suggested tasks from injection through
// evaluation, snooze, dismissal, and cleanup.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sitepulse/backend/domain"
	"github.com/sitepulse/backend/pkg/taskid"
	"github.com/sitepulse/backend/provider"
	"github.com/sitepulse/backend/repository"
)

// Config tunes the lifecycle sweeps.
type Config struct {
	DismissalWindow time.Duration // default window before a dismissal expires
	GuardTTL        time.Duration // how long a daily sweep claim holds
}

// DefaultConfig returns the stock lifecycle settings.
func DefaultConfig() Config {
	return Config{
		DismissalWindow: 6 * 30 * 24 * time.Hour,
		GuardTTL:        24 * time.Hour,
	}
}

// Manager owns every mutation of the pending-task set, keeping the
// read-modify-write race in one place. All sweeps are idempotent: running any
// of them twice in a row produces no duplicate side effects.
type Manager struct {
	registry   *provider.Registry
	pending    repository.PendingTaskRepository
	dismissals repository.DismissalRepository
	activities repository.ActivityRepository
	guard      repository.SweepGuard
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
}

func New(
	registry *provider.Registry,
	pending repository.PendingTaskRepository,
	dismissals repository.DismissalRepository,
	activities repository.ActivityRepository,
	guard repository.SweepGuard,
	cfg Config,
	logger *zap.Logger,
) *Manager {
	if cfg.DismissalWindow <= 0 {
		cfg.DismissalWindow = DefaultConfig().DismissalWindow
	}
	if cfg.GuardTTL <= 0 {
		cfg.GuardTTL = DefaultConfig().GuardTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		registry:   registry,
		pending:    pending,
		dismissals: dismissals,
		activities: activities,
		guard:      guard,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// InjectTasks asks every provider for candidate tasks and upserts them into
// the pending set. Candidates already completed (per the event log) or
// suppressed by an unexpired dismissal are skipped; candidates already
// pending are merged field-by-field with the existing record winning.
// A failing provider is skipped and logged, never aborting the sweep.
func (m *Manager) InjectTasks(ctx context.Context) error {
	now := m.now().UTC()
	currentPeriod := domain.WeekBucket(now)

	completed, err := m.completedTaskIDs(ctx)
	if err != nil {
		return err
	}
	pending, err := m.pending.LoadAll(ctx)
	if err != nil {
		return err
	}
	dismissals, err := m.dismissals.LoadAll(ctx)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(pending))
	for i, t := range pending {
		index[t.TaskID] = i
	}

	dismissalsDirty := false
	for _, p := range m.registry.All() {
		candidates, err := p.Inject(ctx)
		if err != nil {
			m.logger.Warn("provider injection failed",
				zap.String("provider_id", p.ProviderID()),
				zap.Error(err))
			continue
		}

		for _, cand := range candidates {
			cand = normalize(cand, p, currentPeriod)
			if cand.TaskID == "" {
				continue
			}
			if completed[cand.TaskID] {
				continue
			}

			id := dismissalIdentifier(cand.ProviderID, cand.Target)
			if rec, ok := dismissals[id]; ok {
				if rec.DismissedPeriod == currentPeriod || now.Sub(rec.DismissedAt) < m.windowFor(p) {
					continue
				}
				// Expired: purge and allow re-injection.
				delete(dismissals, id)
				dismissalsDirty = true
			}

			if i, ok := index[cand.TaskID]; ok {
				pending[i].Merge(cand)
				continue
			}
			index[cand.TaskID] = len(pending)
			pending = append(pending, cand)
		}
	}

	if err := m.pending.SaveAll(ctx, pending); err != nil {
		return err
	}
	if dismissalsDirty {
		return m.dismissals.SaveAll(ctx, dismissals)
	}
	return nil
}

// EvaluateTasks runs every pending task's provider predicate. Satisfied tasks
// complete (via pending_celebration when the provider celebrates) and emit a
// suggested_task activity into the event log. Evaluation failures are logged
// and retried on the next cycle; unresolvable tasks stay inert.
func (m *Manager) EvaluateTasks(ctx context.Context) ([]string, error) {
	pending, err := m.pending.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	var completedIDs []string
	changed := false
	for i := range pending {
		task := pending[i]
		if task.Status != domain.StatusPending {
			continue
		}
		p, ok := m.resolveProvider(task)
		if !ok {
			continue
		}

		done, err := p.Evaluate(ctx, task)
		if err != nil {
			m.logger.Warn("task evaluation failed",
				zap.String("task_id", task.TaskID),
				zap.String("provider_id", p.ProviderID()),
				zap.Error(err))
			continue
		}
		if !done {
			continue
		}

		if celebrates(p) {
			pending[i].Status = domain.StatusPendingCelebration
		} else {
			pending[i].Status = domain.StatusCompleted
		}
		changed = true
		completedIDs = append(completedIDs, task.TaskID)

		activity := &domain.Activity{
			Category:   domain.CategorySuggestedTask,
			Type:       p.ProviderID(),
			TargetID:   task.TaskID,
			OccurredAt: m.now().UTC(),
		}
		if err := m.activities.Append(ctx, activity); err != nil {
			m.logger.Error("failed to record task completion",
				zap.String("task_id", task.TaskID),
				zap.Error(err))
		}
	}

	if changed {
		// Directly completed tasks leave the pending set; celebrating ones
		// stay until the host acknowledges via Celebrate.
		if err := m.pending.SaveAll(ctx, dropCompleted(pending)); err != nil {
			return nil, err
		}
	}
	return completedIDs, nil
}

// CompleteTask finalizes a task on the user's say-so. Interactive providers
// cannot observe their condition programmatically; the host confirms the
// round-trip by calling this instead of waiting for EvaluateTasks.
func (m *Manager) CompleteTask(ctx context.Context, taskID string) error {
	pending, err := m.pending.LoadAll(ctx)
	if err != nil {
		return err
	}

	for i := range pending {
		task := pending[i]
		if task.TaskID != taskID {
			continue
		}
		if task.Status != domain.StatusPending && task.Status != domain.StatusSnoozed {
			return domain.NewError(domain.ErrCodeInvalid, "task is not completable")
		}

		activity := &domain.Activity{
			Category:   domain.CategorySuggestedTask,
			Type:       task.ProviderID,
			TargetID:   task.TaskID,
			OccurredAt: m.now().UTC(),
		}
		if err := m.activities.Append(ctx, activity); err != nil {
			return err
		}

		if p, ok := m.resolveProvider(task); ok && celebrates(p) {
			pending[i].Status = domain.StatusPendingCelebration
			return m.pending.SaveAll(ctx, pending)
		}
		return m.pending.SaveAll(ctx, append(pending[:i:i], pending[i+1:]...))
	}
	return domain.ErrTaskNotFound
}

// Celebrate finalizes a task that was waiting for its celebration.
func (m *Manager) Celebrate(ctx context.Context, taskID string) error {
	pending, err := m.pending.LoadAll(ctx)
	if err != nil {
		return err
	}

	kept := make([]domain.TaskInstance, 0, len(pending))
	found := false
	for _, task := range pending {
		if task.TaskID == taskID && task.Status == domain.StatusPendingCelebration {
			found = true
			continue
		}
		kept = append(kept, task)
	}
	if !found {
		return domain.ErrTaskNotFound
	}
	return m.pending.SaveAll(ctx, kept)
}

// CleanupTasks drops stale pending tasks: tasks whose week rolled over
// without completion, tasks owned by retired providers, and tasks whose
// provider says they are no longer relevant. It runs at most once per guard
// TTL and rewrites the pending set in a single save. Tasks that cannot be
// attributed to any provider are kept; cleanup never destroys what it does
// not understand.
func (m *Manager) CleanupTasks(ctx context.Context) error {
	claimed, err := m.guard.ClaimDaily(ctx, "cleanup", m.cfg.GuardTTL)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	pending, err := m.pending.LoadAll(ctx)
	if err != nil {
		return err
	}
	currentPeriod := domain.WeekBucket(m.now().UTC())

	kept := make([]domain.TaskInstance, 0, len(pending))
	for _, task := range pending {
		p, resolvable := m.resolveProvider(task)

		switch {
		case task.ProviderID != "" && !resolvable:
			m.dropLog(task, "provider retired")
		case task.Status == domain.StatusPending && task.CreatedPeriod != "" && task.CreatedPeriod != currentPeriod:
			// Never-completed leftovers from a previous week. Still-wanted
			// tasks are re-injected with a fresh period on the next sweep.
			m.dropLog(task, "period rolled over")
		case resolvable && task.Status == domain.StatusPending && !m.stillRelevant(ctx, p, task):
			m.dropLog(task, "no longer relevant")
		default:
			kept = append(kept, task)
		}
	}

	if len(kept) == len(pending) {
		return nil
	}
	return m.pending.SaveAll(ctx, kept)
}

// SnoozeTask defers a pending task. Forever never auto-resumes.
func (m *Manager) SnoozeTask(ctx context.Context, taskID string, duration domain.SnoozeDuration) error {
	if !duration.Valid() {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid snooze duration", fmt.Errorf("%q", duration))
	}

	pending, err := m.pending.LoadAll(ctx)
	if err != nil {
		return err
	}
	for i := range pending {
		if pending[i].TaskID != taskID {
			continue
		}
		pending[i].Status = domain.StatusSnoozed
		pending[i].SnoozedUntil = duration.ResumeAt(m.now().UTC())
		return m.pending.SaveAll(ctx, pending)
	}
	return domain.ErrTaskNotFound
}

// ResumeSnoozed returns elapsed snoozes to pending, stamping them with the
// current period so the next cleanup does not reap them as stale.
func (m *Manager) ResumeSnoozed(ctx context.Context) error {
	pending, err := m.pending.LoadAll(ctx)
	if err != nil {
		return err
	}
	now := m.now().UTC()

	changed := false
	for i := range pending {
		task := pending[i]
		if task.Status != domain.StatusSnoozed || task.SnoozedUntil == nil {
			continue
		}
		if now.Before(*task.SnoozedUntil) {
			continue
		}
		pending[i].Status = domain.StatusPending
		pending[i].SnoozedUntil = nil
		pending[i].CreatedPeriod = domain.WeekBucket(now)
		changed = true
	}

	if !changed {
		return nil
	}
	return m.pending.SaveAll(ctx, pending)
}

// DismissTask removes a task from the pending set and records the dismissal
// so the same identifier is not re-injected until the record expires.
func (m *Manager) DismissTask(ctx context.Context, taskID string) error {
	pending, err := m.pending.LoadAll(ctx)
	if err != nil {
		return err
	}

	var dismissed *domain.TaskInstance
	kept := make([]domain.TaskInstance, 0, len(pending))
	for _, task := range pending {
		if task.TaskID == taskID && dismissed == nil {
			t := task
			dismissed = &t
			continue
		}
		kept = append(kept, task)
	}
	if dismissed == nil {
		return domain.ErrTaskNotFound
	}
	if !dismissed.Dismissable {
		return domain.NewError(domain.ErrCodeInvalid, "task is not dismissable")
	}

	now := m.now().UTC()
	records, err := m.dismissals.LoadAll(ctx)
	if err != nil {
		return err
	}
	id := dismissalIdentifier(dismissed.ProviderID, dismissed.Target)
	records[id] = domain.DismissalRecord{
		ProviderID:      dismissed.ProviderID,
		Identifier:      id,
		DismissedPeriod: domain.WeekBucket(now),
		DismissedAt:     now,
	}

	if err := m.dismissals.SaveAll(ctx, records); err != nil {
		return err
	}
	return m.pending.SaveAll(ctx, kept)
}

// PurgeDismissals drops expired dismissal records. Runs at most once per
// guard TTL.
func (m *Manager) PurgeDismissals(ctx context.Context) error {
	claimed, err := m.guard.ClaimDaily(ctx, "dismissal-purge", m.cfg.GuardTTL)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	records, err := m.dismissals.LoadAll(ctx)
	if err != nil {
		return err
	}
	now := m.now().UTC()
	currentPeriod := domain.WeekBucket(now)

	dirty := false
	for id, rec := range records {
		window := m.cfg.DismissalWindow
		if p, ok := m.registry.Get(rec.ProviderID); ok {
			window = m.windowFor(p)
		}
		if rec.Expired(now, window, currentPeriod) {
			delete(records, id)
			dirty = true
		}
	}

	if !dirty {
		return nil
	}
	return m.dismissals.SaveAll(ctx, records)
}

// PendingTasks returns the current pending set.
func (m *Manager) PendingTasks(ctx context.Context) ([]domain.TaskInstance, error) {
	return m.pending.LoadAll(ctx)
}

func (m *Manager) completedTaskIDs(ctx context.Context) (map[string]bool, error) {
	activities, err := m.activities.Query(ctx, repository.ActivityFilter{
		Category: domain.CategorySuggestedTask,
	})
	if err != nil {
		return nil, err
	}
	completed := make(map[string]bool, len(activities))
	for _, a := range activities {
		completed[a.TargetID] = true
	}
	return completed, nil
}

func (m *Manager) resolveProvider(task domain.TaskInstance) (provider.TaskProvider, bool) {
	pid := task.ProviderID
	if pid == "" {
		fields := taskid.Decode(task.TaskID, m.registry.ResolveCategory)
		pid = fields.ProviderID()
	}
	if pid == "" {
		return nil, false
	}
	return m.registry.Get(pid)
}

func (m *Manager) stillRelevant(ctx context.Context, p provider.TaskProvider, task domain.TaskInstance) bool {
	checker, ok := p.(provider.RelevanceChecker)
	if !ok {
		return true
	}
	relevant, err := checker.IsRelevant(ctx, task)
	if err != nil {
		// Keep the task; relevance is re-checked on the next sweep.
		m.logger.Warn("relevance check failed",
			zap.String("task_id", task.TaskID),
			zap.Error(err))
		return true
	}
	return relevant
}

func (m *Manager) windowFor(p provider.TaskProvider) time.Duration {
	if policy, ok := p.(provider.DismissalPolicy); ok {
		if w := policy.DismissalWindow(); w > 0 {
			return w
		}
	}
	return m.cfg.DismissalWindow
}

func (m *Manager) dropLog(task domain.TaskInstance, reason string) {
	m.logger.Info("dropping pending task",
		zap.String("task_id", task.TaskID),
		zap.String("provider_id", task.ProviderID),
		zap.String("reason", reason))
}

func normalize(task domain.TaskInstance, p provider.TaskProvider, currentPeriod string) domain.TaskInstance {
	if task.TaskID == "" {
		if p.IsRepetitive() {
			task.TaskID = p.ProviderID() + "-" + currentPeriod
		} else {
			task.TaskID = p.ProviderID()
		}
	}
	if task.ProviderID == "" {
		task.ProviderID = p.ProviderID()
	}
	if task.Category == "" {
		task.Category = p.Category()
	}
	if task.Points == 0 {
		task.Points = p.Points()
	}
	if task.CreatedPeriod == "" {
		task.CreatedPeriod = currentPeriod
	}
	task.Status = domain.StatusPending
	return task
}

func celebrates(p provider.TaskProvider) bool {
	c, ok := p.(provider.Celebrator)
	return ok && c.CelebratesCompletion()
}

func dismissalIdentifier(providerID string, target *domain.TargetRef) string {
	if target == nil {
		return providerID
	}
	return fmt.Sprintf("%s-%d", providerID, target.ID)
}

func dropCompleted(tasks []domain.TaskInstance) []domain.TaskInstance {
	kept := make([]domain.TaskInstance, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}
