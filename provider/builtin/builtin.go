// Package builtin ships the stock task providers: core updates, content
// creation and review, site settings checks, and remote-feed suggestions.
package builtin

import "github.com/sitepulse/backend/domain"

// base carries the static TaskDefinition answers shared by every provider.
type base struct {
	id                 string
	category           domain.ActivityCategory
	points             int
	repetitive         bool
	capabilityRequired bool
}

func (b base) ProviderID() string                { return b.id }
func (b base) Category() domain.ActivityCategory { return b.category }
func (b base) Points() int                       { return b.points }
func (b base) IsRepetitive() bool                { return b.repetitive }
func (b base) CapabilityRequired() bool          { return b.capabilityRequired }
