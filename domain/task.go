package domain

import "time"

// TaskStatus tracks a suggested task through its lifecycle.
type TaskStatus string

const (
	StatusPending            TaskStatus = "pending"
	StatusCompleted          TaskStatus = "completed"
	StatusPendingCelebration TaskStatus = "pending_celebration"
	StatusSnoozed            TaskStatus = "snoozed"
	StatusDismissed          TaskStatus = "dismissed"
	StatusTrashed            TaskStatus = "trashed"
)

// Priority orders tasks in host UIs.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TaskDefinition is the template a provider declares for the tasks it emits.
// Immutable for the provider's lifetime.
type TaskDefinition struct {
	ProviderID         string           `json:"provider_id"`
	Category           ActivityCategory `json:"category"`
	BasePoints         int              `json:"base_points"`
	Priority           Priority         `json:"priority"`
	Dismissable        bool             `json:"dismissable"`
	Repetitive         bool             `json:"repetitive"`
	CapabilityRequired bool             `json:"capability_required"`
}

// TaskInstance is a concrete, addressable suggested task.
type TaskInstance struct {
	TaskID        string           `json:"task_id"`
	ProviderID    string           `json:"provider_id"`
	Category      ActivityCategory `json:"category"`
	Status        TaskStatus       `json:"status"`
	CreatedPeriod string           `json:"created_period,omitempty"` // year-week bucket
	Points        int              `json:"points,omitempty"`
	Priority      Priority         `json:"priority,omitempty"`
	Dismissable   bool             `json:"dismissable,omitempty"`
	Target        *TargetRef       `json:"target,omitempty"`
	Extra         map[string]any   `json:"extra,omitempty"`
	SnoozedUntil  *time.Time       `json:"snoozed_until,omitempty"` // nil while snoozed means forever
}

func (t *TaskInstance) IsCompleted() bool {
	return t != nil && (t.Status == StatusCompleted || t.Status == StatusPendingCelebration)
}

// Merge fills zero-valued fields from other. Existing values win on conflict.
func (t *TaskInstance) Merge(other TaskInstance) {
	if t.ProviderID == "" {
		t.ProviderID = other.ProviderID
	}
	if t.Category == "" {
		t.Category = other.Category
	}
	if t.CreatedPeriod == "" {
		t.CreatedPeriod = other.CreatedPeriod
	}
	if t.Points == 0 {
		t.Points = other.Points
	}
	if t.Priority == "" {
		t.Priority = other.Priority
	}
	if !t.Dismissable {
		t.Dismissable = other.Dismissable
	}
	if t.Target == nil {
		t.Target = other.Target
	}
	for k, v := range other.Extra {
		if t.Extra == nil {
			t.Extra = make(map[string]any, len(other.Extra))
		}
		if _, ok := t.Extra[k]; !ok {
			t.Extra[k] = v
		}
	}
}

// SnoozeDuration is the vocabulary users can pick from when deferring a task.
type SnoozeDuration string

const (
	SnoozeWeek     SnoozeDuration = "1-week"
	SnoozeMonth    SnoozeDuration = "1-month"
	SnoozeQuarter  SnoozeDuration = "3-months"
	SnoozeHalfYear SnoozeDuration = "6-months"
	SnoozeYear     SnoozeDuration = "1-year"
	SnoozeForever  SnoozeDuration = "forever"
)

// ResumeAt returns when a task snoozed at the given time should come back,
// or nil for forever.
func (d SnoozeDuration) ResumeAt(from time.Time) *time.Time {
	var at time.Time
	switch d {
	case SnoozeWeek:
		at = from.AddDate(0, 0, 7)
	case SnoozeMonth:
		at = from.AddDate(0, 1, 0)
	case SnoozeQuarter:
		at = from.AddDate(0, 3, 0)
	case SnoozeHalfYear:
		at = from.AddDate(0, 6, 0)
	case SnoozeYear:
		at = from.AddDate(1, 0, 0)
	default:
		return nil
	}
	return &at
}

// Valid reports whether d is part of the snooze vocabulary.
func (d SnoozeDuration) Valid() bool {
	switch d {
	case SnoozeWeek, SnoozeMonth, SnoozeQuarter, SnoozeHalfYear, SnoozeYear, SnoozeForever:
		return true
	}
	return false
}
