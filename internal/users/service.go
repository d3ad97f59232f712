package users

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/relaycrm/relay/internal/audit"
	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/dashboards"
	"github.com/relaycrm/relay/internal/shared"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, u User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Delete(ctx context.Context, id string) error
	ListTeam(ctx context.Context, tenantID string) ([]TeamMember, error)
	ListAll(ctx context.Context) ([]User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) error
	SetLastDashboard(ctx context.Context, id, dashboardID string) error
}

// DashboardStore resolves dashboards for tenant checks.
type DashboardStore interface {
	FindInTenant(ctx context.Context, id, tenantID string) (dashboards.Dashboard, error)
}

// Service wraps account management rules.
type Service struct {
	store      Store
	dashboards DashboardStore
	audit      *audit.Service
}

// NewService constructs a new Service.
func NewService(store Store, dashboardStore DashboardStore, auditSvc *audit.Service) *Service {
	return &Service{store: store, dashboards: dashboardStore, audit: auditSvc}
}

// CreateTeamMemberInput carries the admin-provided account fields.
type CreateTeamMemberInput struct {
	Name        string
	Email       string
	Password    string
	Role        authz.Role
	DashboardID string
}

// CreateTeamMember provisions a manager or staff account bound to one
// dashboard of the admin's tenant.
func (s *Service) CreateTeamMember(ctx context.Context, actor authz.Actor, in CreateTeamMemberInput) (User, error) {
	if !in.Role.TeamRole() {
		return User{}, fmt.Errorf("%w: role must be staff or manager", shared.ErrValidation)
	}
	if _, err := s.dashboards.FindInTenant(ctx, in.DashboardID, actor.TenantID); err != nil {
		return User{}, authz.Denied(authz.ReasonTenantMismatch, "dashboard not found or not in your tenant")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.Create(ctx, User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		TenantID:     actor.TenantID,
		DashboardID:  in.DashboardID,
	})
	if err != nil {
		return User{}, err
	}

	action := audit.ActionCreateStaff
	if in.Role == authz.RoleManager {
		action = audit.ActionCreateManager
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     action,
		TargetType: "user",
		TargetID:   created.ID,
		Message:    fmt.Sprintf("Admin %s created %s %s", actor.Email, in.Role, created.Email),
	})
	return created, nil
}

// Team lists the tenant's managers and staff.
func (s *Service) Team(ctx context.Context, actor authz.Actor) ([]TeamMember, error) {
	return s.store.ListTeam(ctx, actor.TenantID)
}

// DeleteTeamMember removes a manager or staff account from the actor's
// tenant. Accounts outside the tenant are reported as missing.
func (s *Service) DeleteTeamMember(ctx context.Context, actor authz.Actor, id string) error {
	target, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if target.TenantID != actor.TenantID {
		return shared.ErrNotFound
	}
	if !target.Role.TeamRole() {
		return fmt.Errorf("%w: can only delete staff or manager", shared.ErrValidation)
	}
	if err := s.store.Delete(ctx, target.ID); err != nil {
		return err
	}

	action := audit.ActionDeleteStaff
	if target.Role == authz.RoleManager {
		action = audit.ActionDeleteManager
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     action,
		TargetType: "user",
		TargetID:   target.ID,
		Message:    fmt.Sprintf("Admin %s deleted %s %s", actor.Email, target.Role, target.Email),
	})
	return nil
}

// Profile returns the actor's own account.
func (s *Service) Profile(ctx context.Context, actorID string) (User, error) {
	return s.store.FindByID(ctx, actorID)
}

// SetLastDashboard records the last opened dashboard after a tenant check.
func (s *Service) SetLastDashboard(ctx context.Context, actor authz.Actor, dashboardID string) error {
	if _, err := s.dashboards.FindInTenant(ctx, dashboardID, actor.TenantID); err != nil {
		return err
	}
	return s.store.SetLastDashboard(ctx, actor.ID, dashboardID)
}

// ListAll returns every account, for the superadmin surface.
func (s *Service) ListAll(ctx context.Context) ([]User, error) {
	return s.store.ListAll(ctx)
}

// ToggleBlocked flips the blocked flag on an admin account. Blocking is
// reserved for admins: team members are removed by their admin instead.
func (s *Service) ToggleBlocked(ctx context.Context, actor authz.Actor, id string) (User, error) {
	target, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if target.Role != authz.RoleAdmin {
		return User{}, fmt.Errorf("%w: only admin accounts can be blocked", shared.ErrValidation)
	}
	target.IsBlocked = !target.IsBlocked
	if err := s.store.SetBlocked(ctx, target.ID, target.IsBlocked); err != nil {
		return User{}, err
	}

	action := audit.ActionUnblockAdmin
	verb := "unblocked"
	if target.IsBlocked {
		action = audit.ActionBlockAdmin
		verb = "blocked"
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     action,
		TargetType: "user",
		TargetID:   target.ID,
		Message:    fmt.Sprintf("Super admin %s admin %s", verb, target.Email),
	})
	return target, nil
}
