package dashboards

import (
	"context"
	"fmt"

	"github.com/relaycrm/relay/internal/audit"
	"github.com/relaycrm/relay/internal/authz"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, name, tenantID string) (Dashboard, error)
	CountByTenant(ctx context.Context, tenantID string) (int, error)
	ListByTenant(ctx context.Context, tenantID string) ([]Dashboard, error)
	FindByID(ctx context.Context, id string) (Dashboard, error)
}

// Service wraps dashboard business rules. Plan-limit and subscription
// checks run in the gate before these methods are reached.
type Service struct {
	store Store
	audit *audit.Service
}

// NewService constructs a new Service.
func NewService(store Store, auditSvc *audit.Service) *Service {
	return &Service{store: store, audit: auditSvc}
}

// Create provisions a dashboard inside the actor's tenant.
func (s *Service) Create(ctx context.Context, actor authz.Actor, name string) (Dashboard, error) {
	d, err := s.store.Create(ctx, name, actor.TenantID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("create dashboard: %w", err)
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     audit.ActionCreateDashboard,
		TargetType: "dashboard",
		TargetID:   d.ID,
		Message:    fmt.Sprintf("Admin %s created dashboard %s", actor.Email, d.Name),
	})
	return d, nil
}

// Visible returns the dashboards the actor may see: admins see every
// dashboard in their tenant, managers and staff see exactly the one they
// are assigned to.
func (s *Service) Visible(ctx context.Context, actor authz.Actor) ([]Dashboard, error) {
	if actor.Role == authz.RoleAdmin {
		return s.store.ListByTenant(ctx, actor.TenantID)
	}
	if actor.DashboardID == "" {
		return nil, authz.Denied(authz.ReasonNoDashboardAssigned, "no dashboard assigned to this user")
	}
	d, err := s.store.FindByID(ctx, actor.DashboardID)
	if err != nil {
		return nil, fmt.Errorf("assigned dashboard: %w", err)
	}
	return []Dashboard{d}, nil
}
