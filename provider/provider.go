// Package provider defines the pluggable condition-checkers that propose and
// evaluate suggested tasks.
package provider

import (
	"context"
	"time"

	"github.com/sitepulse/backend/domain"
)

// TaskProvider is one kind of suggested task: it proposes candidate task
// instances and decides when a pending one has been satisfied. Providers keep
// no long-lived state of their own; anything persistent belongs on the
// TaskInstance or in a DismissalRecord.
type TaskProvider interface {
	ProviderID() string
	Category() domain.ActivityCategory
	Points() int
	IsRepetitive() bool
	CapabilityRequired() bool

	// Inject returns the candidate tasks the provider currently wants
	// pending. Candidates already pending or completed are discarded by the
	// lifecycle manager, so returning the same candidate twice is harmless.
	Inject(ctx context.Context) ([]domain.TaskInstance, error)

	// Evaluate reports whether the pending task's condition has become true.
	Evaluate(ctx context.Context, task domain.TaskInstance) (bool, error)
}

// RelevanceChecker is an optional capability: providers that can tell whether
// a pending task still makes sense (its target still exists, the setting is
// still unset). Irrelevant tasks are trashed by the cleanup sweep.
type RelevanceChecker interface {
	IsRelevant(ctx context.Context, task domain.TaskInstance) (bool, error)
}

// Celebrator is an optional capability: providers whose tasks must visually
// celebrate before being finalized go through pending_celebration instead of
// completing silently.
type Celebrator interface {
	CelebratesCompletion() bool
}

// DismissalPolicy is an optional capability: providers may override the
// default window during which a dismissal suppresses re-injection.
type DismissalPolicy interface {
	DismissalWindow() time.Duration
}

// Definition summarizes a provider as a TaskDefinition.
func Definition(p TaskProvider) domain.TaskDefinition {
	return domain.TaskDefinition{
		ProviderID:         p.ProviderID(),
		Category:           p.Category(),
		BasePoints:         p.Points(),
		Repetitive:         p.IsRepetitive(),
		CapabilityRequired: p.CapabilityRequired(),
	}
}
