package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/relaycrm/relay/internal/shared"
)

// SubscriptionStore is the gate's window onto billing records.
type SubscriptionStore interface {
	FindByEmail(ctx context.Context, email string) (Subscription, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// PlanStore resolves plan reference data.
type PlanStore interface {
	ByID(ctx context.Context, id string) (Plan, error)
}

// DashboardCounter counts dashboards per tenant for plan-limit enforcement.
type DashboardCounter interface {
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}

// Target names the resource an operation acts on. A zero TenantID skips the
// tenant-scope comparison; callers that know the resource tenant must set it.
type Target struct {
	Type     string
	ID       string
	TenantID string
}

// Decision is the outcome of one authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
	Message string
}

// Allow is the permit outcome.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny is the refuse outcome with a stable reason code.
func Deny(reason Reason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// Err converts a deny decision into a Denial error, nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &Denial{Reason: d.Reason, Message: d.Message}
}

// Gate evaluates the access rule table against an actor and operation. It
// holds no cross-request state; everything mutable lives in the stores.
type Gate struct {
	subs       SubscriptionStore
	plans      PlanStore
	dashboards DashboardCounter
	logger     *slog.Logger
	now        func() time.Time
}

// NewGate constructs a Gate.
func NewGate(subs SubscriptionStore, plans PlanStore, dashboards DashboardCounter, logger *slog.Logger) *Gate {
	return &Gate{
		subs:       subs,
		plans:      plans,
		dashboards: dashboards,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, used by tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Decide evaluates the operation for the actor, first match wins. Store
// lookup failures never escape as errors: the decision fails closed and the
// failure is logged for the operator.
func (g *Gate) Decide(ctx context.Context, actor *Actor, op Operation, target Target) Decision {
	if actor == nil {
		return Deny(ReasonUnauthenticated, "authentication required")
	}
	if actor.IsBlocked && !op.SkipActorBlockedCheck {
		return Deny(ReasonBlocked, "account is blocked, contact support")
	}
	if !op.Allows(actor.Role) {
		return Deny(ReasonForbiddenRole, "insufficient permissions")
	}

	var sub Subscription
	if op.RequireActiveSubscription && actor.Role == RoleAdmin {
		var decision Decision
		sub, decision = g.checkSubscription(ctx, actor)
		if !decision.Allowed {
			return decision
		}
	}

	if op.RequireTenantScope && actor.Role != RoleSuperadmin {
		if target.TenantID != "" && target.TenantID != actor.TenantID {
			return Deny(ReasonTenantMismatch, "resource belongs to another tenant")
		}
	}

	if op.Name == OpViewDashboards.Name && actor.Role.TeamRole() {
		if actor.DashboardID == "" {
			return Deny(ReasonNoDashboardAssigned, "no dashboard assigned to this user")
		}
	}

	if op.Name == OpCreateDashboard.Name {
		if decision := g.checkPlanLimit(ctx, actor, sub); !decision.Allowed {
			return decision
		}
	}

	return Allow()
}

func (g *Gate) checkSubscription(ctx context.Context, actor *Actor) (Subscription, Decision) {
	sub, err := g.subs.FindByEmail(ctx, actor.Email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			g.logger.Error("subscription lookup failed", slog.String("email", actor.Email), slog.Any("error", err))
		}
		return Subscription{}, Deny(ReasonNoSubscription, "no subscription found, please buy a plan")
	}
	if !sub.Active {
		return sub, Deny(ReasonSubscriptionInactive, "subscription is inactive, please renew")
	}
	now := g.now()
	flipped, changed := MaterializeExpiry(sub, now)
	if changed {
		// The decision stands even if the write fails; the flip is
		// idempotent and the next check retries it.
		if err := g.subs.SetActive(ctx, sub.ID, false); err != nil {
			g.logger.Error("persist subscription expiry", slog.String("subscription_id", sub.ID), slog.Any("error", err))
		}
		return flipped, Deny(ReasonSubscriptionExpired, "subscription expired, please renew")
	}
	return sub, Allow()
}

func (g *Gate) checkPlanLimit(ctx context.Context, actor *Actor, sub Subscription) Decision {
	plan, err := g.plans.ByID(ctx, sub.PlanID)
	if err != nil {
		g.logger.Error("plan lookup failed", slog.String("plan_id", sub.PlanID), slog.Any("error", err))
		return Deny(ReasonPlanLimitReached, "plan could not be resolved")
	}
	if plan.DashboardsAllowed == UnlimitedDashboards {
		return Allow()
	}
	count, err := g.dashboards.CountByTenant(ctx, actor.TenantID)
	if err != nil {
		g.logger.Error("dashboard count failed", slog.String("tenant_id", actor.TenantID), slog.Any("error", err))
		return Deny(ReasonPlanLimitReached, "dashboard count could not be resolved")
	}
	if count >= plan.DashboardsAllowed {
		msg := fmt.Sprintf("%s plan allows only %d dashboard(s), upgrade to create more", plan.Name, plan.DashboardsAllowed)
		return Deny(ReasonPlanLimitReached, msg)
	}
	return Allow()
}
