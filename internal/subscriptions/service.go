package subscriptions

import (
	"context"
	"fmt"
	"time"

	"github.com/relaycrm/relay/internal/audit"
	"github.com/relaycrm/relay/internal/authz"
	"github.com/relaycrm/relay/internal/shared"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, sub Subscription) (Subscription, error)
	FindByID(ctx context.Context, id string) (Subscription, error)
	FindByEmail(ctx context.Context, email string) (Subscription, error)
	FindActiveByEmail(ctx context.Context, email string) (Subscription, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetTerm(ctx context.Context, id string, endDate time.Time, active bool) error
	ListAll(ctx context.Context) ([]Subscription, error)
}

// Service wraps subscription business rules.
type Service struct {
	store Store
	audit *audit.Service
	now   func() time.Time
}

// NewService constructs a new Service.
func NewService(store Store, auditSvc *audit.Service) *Service {
	return &Service{
		store: store,
		audit: auditSvc,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ListAll returns every subscription for the superadmin surface.
func (s *Service) ListAll(ctx context.Context) ([]Subscription, error) {
	return s.store.ListAll(ctx)
}

// Toggle flips the active flag. This is the explicit reactivation path: a
// lazily expired subscription stays inactive until a superadmin acts here.
func (s *Service) Toggle(ctx context.Context, actor authz.Actor, id string) (Subscription, error) {
	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Subscription{}, fmt.Errorf("toggle subscription: %w", err)
	}
	sub.Active = !sub.Active
	if err := s.store.SetActive(ctx, sub.ID, sub.Active); err != nil {
		return Subscription{}, fmt.Errorf("toggle subscription: %w", err)
	}

	action := audit.ActionDeactivateSubscription
	verb := "deactivated"
	if sub.Active {
		action = audit.ActionActivateSubscription
		verb = "activated"
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     action,
		TargetType: "subscription",
		TargetID:   sub.ID,
		Message:    fmt.Sprintf("Super admin %s subscription for %s", verb, sub.Email),
	})
	return sub, nil
}

// Extend pushes the end date out by extraDays. Extending past now also
// reactivates the subscription: extend is one of the two explicit revival
// paths.
func (s *Service) Extend(ctx context.Context, actor authz.Actor, id string, extraDays int) (Subscription, error) {
	if extraDays <= 0 {
		return Subscription{}, fmt.Errorf("%w: extraDays must be greater than 0", shared.ErrValidation)
	}
	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Subscription{}, fmt.Errorf("extend subscription: %w", err)
	}

	sub.EndDate = sub.EndDate.AddDate(0, 0, extraDays)
	if s.now().Before(sub.EndDate) {
		sub.Active = true
	}
	if err := s.store.SetTerm(ctx, sub.ID, sub.EndDate, sub.Active); err != nil {
		return Subscription{}, fmt.Errorf("extend subscription: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     audit.ActionExtendSubscription,
		TargetType: "subscription",
		TargetID:   sub.ID,
		Message:    fmt.Sprintf("Super admin extended subscription for %s by %d days", sub.Email, extraDays),
	})
	return sub, nil
}
