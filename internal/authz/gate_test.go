package authz

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relaycrm/relay/internal/shared"
)

type memorySubs struct {
	byEmail   map[string]Subscription
	setActive []string
	setActErr error
	findErr   error
}

func (m *memorySubs) FindByEmail(_ context.Context, email string) (Subscription, error) {
	if m.findErr != nil {
		return Subscription{}, m.findErr
	}
	sub, ok := m.byEmail[email]
	if !ok {
		return Subscription{}, shared.ErrNotFound
	}
	return sub, nil
}

func (m *memorySubs) SetActive(_ context.Context, id string, active bool) error {
	if m.setActErr != nil {
		return m.setActErr
	}
	m.setActive = append(m.setActive, id)
	sub := m.byEmail
	for email, s := range sub {
		if s.ID == id {
			s.Active = active
			sub[email] = s
		}
	}
	return nil
}

type memoryPlans struct {
	byID map[string]Plan
}

func (m *memoryPlans) ByID(_ context.Context, id string) (Plan, error) {
	plan, ok := m.byID[id]
	if !ok {
		return Plan{}, shared.ErrNotFound
	}
	return plan, nil
}

type fixedCounter struct {
	count int
	err   error
}

func (c fixedCounter) CountByTenant(context.Context, string) (int, error) {
	return c.count, c.err
}

func testGate(subs *memorySubs, plans *memoryPlans, counter fixedCounter, now time.Time) *Gate {
	if subs == nil {
		subs = &memorySubs{byEmail: map[string]Subscription{}}
	}
	if plans == nil {
		plans = &memoryPlans{byID: map[string]Plan{}}
	}
	g := NewGate(subs, plans, counter, slog.New(slog.DiscardHandler))
	return g.WithClock(func() time.Time { return now })
}

func adminActor() *Actor {
	return &Actor{
		ID:       "u1",
		Email:    "owner@acme.test",
		Role:     RoleAdmin,
		TenantID: "tenant_acme",
	}
}

func activeSub(end time.Time) Subscription {
	return Subscription{
		ID:        "sub1",
		Email:     "owner@acme.test",
		PlanID:    "plan_basic",
		StartDate: end.AddDate(-1, 0, 0),
		EndDate:   end,
		Active:    true,
	}
}

func TestDecideNilActor(t *testing.T) {
	g := testGate(nil, nil, fixedCounter{}, time.Now())
	decision := g.Decide(context.Background(), nil, OpViewProfile, Target{})
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonUnauthenticated, decision.Reason)
}

func TestDecideBlockedActorAlwaysDenied(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	subs := &memorySubs{byEmail: map[string]Subscription{
		"owner@acme.test": activeSub(now.AddDate(0, 6, 0)),
	}}
	g := testGate(subs, nil, fixedCounter{}, now)

	actor := adminActor()
	actor.IsBlocked = true

	for _, op := range []Operation{OpLogin, OpViewDashboards, OpCreateDashboard, OpViewProfile} {
		decision := g.Decide(context.Background(), actor, op, Target{})
		require.False(t, decision.Allowed, op.Name)
		require.Equal(t, ReasonBlocked, decision.Reason, op.Name)
	}
}

func TestDecideBlockToggleReachesBlockedAdmin(t *testing.T) {
	// The unblock operation must stay reachable for superadmins even
	// against a blocked target; the actor here is the superadmin.
	g := testGate(nil, nil, fixedCounter{}, time.Now())
	actor := &Actor{ID: "s1", Email: "root@relay.test", Role: RoleSuperadmin}
	decision := g.Decide(context.Background(), actor, OpBlockAdmin, Target{})
	require.True(t, decision.Allowed)
}

func TestDecideForbiddenRole(t *testing.T) {
	g := testGate(nil, nil, fixedCounter{}, time.Now())
	staff := &Actor{ID: "u2", Email: "staff@acme.test", Role: RoleStaff, TenantID: "tenant_acme", DashboardID: "d1"}
	decision := g.Decide(context.Background(), staff, OpCreateDashboard, Target{})
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonForbiddenRole, decision.Reason)
}

func TestDecideAdminWithoutSubscription(t *testing.T) {
	g := testGate(nil, nil, fixedCounter{}, time.Now())
	decision := g.Decide(context.Background(), adminActor(), OpViewDashboards, Target{})
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonNoSubscription, decision.Reason)
}

func TestDecideSubscriptionLookupFailureFailsClosed(t *testing.T) {
	subs := &memorySubs{byEmail: map[string]Subscription{}, findErr: context.DeadlineExceeded}
	g := testGate(subs, nil, fixedCounter{}, time.Now())
	decision := g.Decide(context.Background(), adminActor(), OpViewDashboards, Target{})
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonNoSubscription, decision.Reason)
}

func TestDecideExpiredSubscriptionFlipsOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	subs := &memorySubs{byEmail: map[string]Subscription{
		"owner@acme.test": activeSub(now.AddDate(0, 0, -1)),
	}}
	g := testGate(subs, nil, fixedCounter{}, now)

	decision := g.Decide(context.Background(), adminActor(), OpViewDashboards, Target{})
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonSubscriptionExpired, decision.Reason)
	require.Equal(t, []string{"sub1"}, subs.setActive)

	// The record is now inactive, so the next check reports the stored
	// state without writing again.
	decision = g.Decide(context.Background(), adminActor(), OpViewDashboards, Target{})
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonSubscriptionInactive, decision.Reason)
	require.Equal(t, []string{"sub1"}, subs.setActive)
}

func TestDecideExpiryDenialSurvivesWriteFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	subs := &memorySubs{
		byEmail:   map[string]Subscription{"owner@acme.test": activeSub(now.AddDate(0, 0, -1))},
		setActErr: context.DeadlineExceeded,
	}
	g := testGate(subs, nil, fixedCounter{}, now)

	decision := g.Decide(context.Background(), adminActor(), OpViewDashboards, Target{})
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonSubscriptionExpired, decision.Reason)
}

func TestDecideInactiveSubscription(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := activeSub(now.AddDate(0, 6, 0))
	sub.Active = false
	subs := &memorySubs{byEmail: map[string]Subscription{"owner@acme.test": sub}}
	g := testGate(subs, nil, fixedCounter{}, now)

	decision := g.Decide(context.Background(), adminActor(), OpViewDashboards, Target{})
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonSubscriptionInactive, decision.Reason)
	require.Empty(t, subs.setActive)
}

func TestDecideTenantMismatch(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	subs := &memorySubs{byEmail: map[string]Subscription{
		"owner@acme.test": activeSub(now.AddDate(0, 6, 0)),
	}}
	g := testGate(subs, nil, fixedCounter{}, now)

	decision := g.Decide(context.Background(), adminActor(), OpViewDashboards, Target{TenantID: "tenant_other"})
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonTenantMismatch, decision.Reason)
}

func TestDecideSuperadminCrossesTenants(t *testing.T) {
	g := testGate(nil, nil, fixedCounter{}, time.Now())
	actor := &Actor{ID: "s1", Email: "root@relay.test", Role: RoleSuperadmin}
	decision := g.Decide(context.Background(), actor, OpListUsers, Target{TenantID: "tenant_other"})
	require.True(t, decision.Allowed)
}

func TestDecideTeamMemberWithoutDashboard(t *testing.T) {
	g := testGate(nil, nil, fixedCounter{}, time.Now())
	staff := &Actor{ID: "u3", Email: "staff@acme.test", Role: RoleStaff, TenantID: "tenant_acme"}
	decision := g.Decide(context.Background(), staff, OpViewDashboards, Target{TenantID: "tenant_acme"})
	require.False(t, decision.Allowed)
	require.Equal(t, ReasonNoDashboardAssigned, decision.Reason)
}

func TestDecidePlanLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	subs := &memorySubs{byEmail: map[string]Subscription{
		"owner@acme.test": activeSub(now.AddDate(0, 6, 0)),
	}}
	plans := &memoryPlans{byID: map[string]Plan{
		"plan_basic": {ID: "plan_basic", Name: "Basic", DashboardsAllowed: 1},
	}}

	t.Run("at limit", func(t *testing.T) {
		g := testGate(subs, plans, fixedCounter{count: 1}, now)
		decision := g.Decide(context.Background(), adminActor(), OpCreateDashboard, Target{})
		require.False(t, decision.Allowed)
		require.Equal(t, ReasonPlanLimitReached, decision.Reason)
		require.Contains(t, decision.Message, "Basic plan allows only 1 dashboard(s)")
	})

	t.Run("below limit", func(t *testing.T) {
		g := testGate(subs, plans, fixedCounter{count: 0}, now)
		decision := g.Decide(context.Background(), adminActor(), OpCreateDashboard, Target{})
		require.True(t, decision.Allowed)
	})

	t.Run("unlimited plan", func(t *testing.T) {
		unlimited := &memoryPlans{byID: map[string]Plan{
			"plan_basic": {ID: "plan_basic", Name: "Enterprise", DashboardsAllowed: UnlimitedDashboards},
		}}
		g := testGate(subs, unlimited, fixedCounter{count: 5000}, now)
		decision := g.Decide(context.Background(), adminActor(), OpCreateDashboard, Target{})
		require.True(t, decision.Allowed)
	})

	t.Run("count failure fails closed", func(t *testing.T) {
		g := testGate(subs, plans, fixedCounter{err: context.DeadlineExceeded}, now)
		decision := g.Decide(context.Background(), adminActor(), OpCreateDashboard, Target{})
		require.False(t, decision.Allowed)
		require.Equal(t, ReasonPlanLimitReached, decision.Reason)
	})
}

func TestDecideTeamMemberSkipsSubscriptionCheck(t *testing.T) {
	// Team members keep working while the admin's subscription lapses;
	// only admins carry the billing gate.
	g := testGate(nil, nil, fixedCounter{}, time.Now())
	manager := &Actor{ID: "u4", Email: "manager@acme.test", Role: RoleManager, TenantID: "tenant_acme", DashboardID: "d1"}
	decision := g.Decide(context.Background(), manager, OpViewDashboards, Target{TenantID: "tenant_acme"})
	require.True(t, decision.Allowed)
}
