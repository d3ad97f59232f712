package authz

import "time"

// Subscription is the gate's view of a billing record. The stored Active
// flag caches a time-dependent predicate; MaterializeExpiry is the single
// place that corrects it.
type Subscription struct {
	ID        string
	Email     string
	PlanID    string
	StartDate time.Time
	EndDate   time.Time
	Active    bool
}

// Plan is the gate's view of a pricing tier.
type Plan struct {
	ID                string
	Name              string
	DashboardsAllowed int
}

// UnlimitedDashboards marks a plan without a dashboard cap.
const UnlimitedDashboards = -1
