package provider

import (
	"context"
	"testing"

	"github.com/sitepulse/backend/domain"
)

type stubProvider struct {
	id       string
	category domain.ActivityCategory
	points   int
}

func (p *stubProvider) ProviderID() string                { return p.id }
func (p *stubProvider) Category() domain.ActivityCategory { return p.category }
func (p *stubProvider) Points() int                       { return p.points }
func (p *stubProvider) IsRepetitive() bool                { return false }
func (p *stubProvider) CapabilityRequired() bool          { return false }

func (p *stubProvider) Inject(ctx context.Context) ([]domain.TaskInstance, error) {
	return nil, nil
}

func (p *stubProvider) Evaluate(ctx context.Context, task domain.TaskInstance) (bool, error) {
	return false, nil
}

func TestRegister(t *testing.T) {
	t.Run("valid provider", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register(&stubProvider{id: "update-core", category: domain.CategoryMaintenance, points: 1})
		if err != nil {
			t.Fatalf("Register: %v", err)
		}
		if _, ok := r.Get("update-core"); !ok {
			t.Error("registered provider not found")
		}
	})

	t.Run("rejects misconfigured providers", func(t *testing.T) {
		cases := []struct {
			name string
			p    TaskProvider
		}{
			{"nil provider", nil},
			{"empty id", &stubProvider{category: domain.CategoryMaintenance}},
			{"unknown category", &stubProvider{id: "x", category: "bogus"}},
			{"negative points", &stubProvider{id: "x", category: domain.CategoryContent, points: -1}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				r := NewRegistry()
				err := r.Register(tc.p)
				if !domain.IsDomainError(err, domain.ErrCodeMisconfigured) {
					t.Errorf("err = %v, want MISCONFIGURED", err)
				}
			})
		}
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		r := NewRegistry()
		p := &stubProvider{id: "update-core", category: domain.CategoryMaintenance}
		if err := r.Register(p); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if err := r.Register(p); !domain.IsDomainError(err, domain.ErrCodeMisconfigured) {
			t.Errorf("duplicate err = %v, want MISCONFIGURED", err)
		}
	})
}

func TestRegisterAll(t *testing.T) {
	r := NewRegistry()
	r.RegisterAll(nil,
		&stubProvider{id: "a", category: domain.CategoryMaintenance},
		&stubProvider{category: domain.CategoryMaintenance}, // invalid, skipped
		&stubProvider{id: "b", category: domain.CategoryContent},
	)
	if len(r.All()) != 2 {
		t.Errorf("registered = %d providers, want 2", len(r.All()))
	}
}

func TestAllPreservesOrder(t *testing.T) {
	r := NewRegistry()
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		if err := r.Register(&stubProvider{id: id, category: domain.CategoryMaintenance}); err != nil {
			t.Fatalf("Register(%s): %v", id, err)
		}
	}
	for i, p := range r.All() {
		if p.ProviderID() != ids[i] {
			t.Errorf("All()[%d] = %s, want %s", i, p.ProviderID(), ids[i])
		}
	}
}

func TestResolvers(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubProvider{id: "update-core", category: domain.CategoryMaintenance, points: 3}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if category, ok := r.ResolveCategory("update-core"); !ok || category != domain.CategoryMaintenance {
		t.Errorf("ResolveCategory = %q, %v", category, ok)
	}
	if _, ok := r.ResolveCategory("missing"); ok {
		t.Error("ResolveCategory resolved a missing provider")
	}

	if points, ok := r.ResolvePoints("update-core"); !ok || points != 3 {
		t.Errorf("ResolvePoints = %d, %v", points, ok)
	}
	if _, ok := r.ResolvePoints("missing"); ok {
		t.Error("ResolvePoints resolved a missing provider")
	}
}
