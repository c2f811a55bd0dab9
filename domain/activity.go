package domain

import "time"

// ActivityCategory classifies the source of an activity record.
type ActivityCategory string

const (
	CategoryContent       ActivityCategory = "content"
	CategoryMaintenance   ActivityCategory = "maintenance"
	CategorySuggestedTask ActivityCategory = "suggested_task"
)

// Content activity types recognized by the scoring engine.
const (
	ActivityPublish = "publish"
	ActivityUpdate  = "update"
	ActivityDelete  = "delete"
)

// Activity is an immutable fact: something happened on the site.
// For suggested-task activities, Type carries the provider id and
// TargetID the completed task id.
type Activity struct {
	ID         string           `json:"id"`
	Category   ActivityCategory `json:"category"`
	Type       string           `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	TargetID   string           `json:"target_id,omitempty"`
	ActorID    int              `json:"actor_id,omitempty"`
}

// TargetRef points at the content item or term a task or activity is about.
type TargetRef struct {
	Kind string `json:"kind"` // "post" or "term"
	ID   int64  `json:"id"`
}

const (
	TargetPost = "post"
	TargetTerm = "term"
)
