package provider

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sitepulse/backend/domain"
)

// Registry holds the registered providers, keyed by id, preserving
// registration order for injection sweeps.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]TaskProvider
	order     []string
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]TaskProvider),
	}
}

// Register validates and adds a provider. Non-conforming providers are
// rejected with a MISCONFIGURED error rather than crashing later dispatches.
func (r *Registry) Register(p TaskProvider) error {
	if err := validate(p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := p.ProviderID()
	if _, exists := r.providers[id]; exists {
		return domain.NewError(domain.ErrCodeMisconfigured, fmt.Sprintf("provider %q already registered", id))
	}
	r.providers[id] = p
	r.order = append(r.order, id)
	return nil
}

// RegisterAll registers every provider, logging and skipping the ones that
// fail validation so one bad provider does not take down the rest.
func (r *Registry) RegisterAll(logger *zap.Logger, providers ...TaskProvider) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			logger.Warn("provider excluded from registry", zap.Error(err))
		}
	}
}

// Get looks a provider up by id.
func (r *Registry) Get(id string) (TaskProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// All returns providers in registration order.
func (r *Registry) All() []TaskProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TaskProvider, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.providers[id])
	}
	return out
}

// ResolveCategory satisfies the task id codec's resolver contract.
func (r *Registry) ResolveCategory(id string) (domain.ActivityCategory, bool) {
	p, ok := r.Get(id)
	if !ok {
		return "", false
	}
	return p.Category(), true
}

// ResolvePoints reports the declared point value of a provider's tasks.
func (r *Registry) ResolvePoints(id string) (int, bool) {
	p, ok := r.Get(id)
	if !ok {
		return 0, false
	}
	return p.Points(), true
}

func validate(p TaskProvider) error {
	if p == nil {
		return domain.NewError(domain.ErrCodeMisconfigured, "nil provider")
	}
	if p.ProviderID() == "" {
		return domain.NewError(domain.ErrCodeMisconfigured, "provider has empty id")
	}
	switch p.Category() {
	case domain.CategoryContent, domain.CategoryMaintenance, domain.CategorySuggestedTask:
	default:
		return domain.NewError(domain.ErrCodeMisconfigured,
			fmt.Sprintf("provider %q has unknown category %q", p.ProviderID(), p.Category()))
	}
	if p.Points() < 0 {
		return domain.NewError(domain.ErrCodeMisconfigured,
			fmt.Sprintf("provider %q declares negative points", p.ProviderID()))
	}
	return nil
}
